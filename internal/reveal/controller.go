package reveal

const (
	DefaultThreshold = 0.1
	DefaultMargin    = 50
)

// Options tune when a target counts as visible.
type Options struct {
	// Threshold is the minimum visible fraction of a target, in [0, 1].
	Threshold float64
	// Margin grows the root on every side so targets reveal slightly before
	// they are on screen.
	Margin int
}

func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Margin: DefaultMargin}
}

func (o Options) normalized() Options {
	if o.Threshold < 0 {
		o.Threshold = 0
	}
	if o.Threshold > 1 {
		o.Threshold = 1
	}
	return o
}

// Target is anything the controller can watch.
type Target interface {
	Bounds() Rect
	Reveal()
}

// Container yields the marked descendants that ObserveAll watches.
type Container interface {
	Marked() []Target
}

// Event is queued once per target when it is revealed.
type Event struct {
	Target   Target
	Revealed bool
}

// Controller watches targets against a root rectangle. Each target is
// revealed at most once and then dropped. It is meant for a single event
// loop and is not safe for concurrent use.
type Controller struct {
	opts     Options
	watchers map[int]Target
	order    []int
	nextID   int
	queue    []Event
	closed   bool
}

// New builds a controller. The zero Options value reveals on any overlap.
func New(opts Options) *Controller {
	return &Controller{
		opts:     opts.normalized(),
		watchers: map[int]Target{},
	}
}

func (c *Controller) Options() Options {
	return c.opts
}

// Observe starts watching target. The returned func stops watching it and
// is safe to call more than once.
func (c *Controller) Observe(target Target) (unobserve func()) {
	if c.closed || target == nil {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.watchers[id] = target
	c.order = append(c.order, id)
	return func() { c.drop(id) }
}

// ObserveAll watches every marked descendant of container with the same
// one-shot rule. The returned func stops watching all of them.
func (c *Controller) ObserveAll(container Container) (unobserve func()) {
	if container == nil {
		return func() {}
	}
	var stops []func()
	for _, target := range container.Marked() {
		stops = append(stops, c.Observe(target))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

// Check reveals every watched target visible within root and returns how
// many were revealed. Revealed targets are no longer watched.
func (c *Controller) Check(root Rect) int {
	if c.closed {
		return 0
	}
	revealed := 0
	for _, id := range append([]int(nil), c.order...) {
		target, ok := c.watchers[id]
		if !ok {
			continue
		}
		if !Visible(c.opts, root, target.Bounds()) {
			continue
		}
		target.Reveal()
		c.drop(id)
		c.queue = append(c.queue, Event{Target: target, Revealed: true})
		revealed++
	}
	return revealed
}

// Drain hands queued reveal events to the renderer and empties the queue.
func (c *Controller) Drain() []Event {
	events := c.queue
	c.queue = nil
	return events
}

// Watching counts targets that have not been revealed or unobserved.
func (c *Controller) Watching() int {
	return len(c.watchers)
}

// Close stops watching everything. Later Observe calls are ignored.
func (c *Controller) Close() {
	c.closed = true
	c.watchers = map[int]Target{}
	c.order = nil
	c.queue = nil
}

func (c *Controller) drop(id int) {
	if _, ok := c.watchers[id]; !ok {
		return
	}
	delete(c.watchers, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
