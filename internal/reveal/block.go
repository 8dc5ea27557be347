package reveal

// Presentation is the visual state of a Block.
type Presentation int

const (
	Hidden Presentation = iota
	Revealed
)

func (p Presentation) String() string {
	if p == Revealed {
		return "revealed"
	}
	return "hidden"
}

// Block is a keyed rectangle of rendered output. It starts Hidden and flips
// to Revealed once; Reveal is idempotent.
type Block struct {
	Key  string
	Rect Rect

	presentation Presentation
}

func NewBlock(key string, rect Rect) *Block {
	return &Block{Key: key, Rect: rect}
}

func (b *Block) Bounds() Rect {
	return b.Rect
}

func (b *Block) Reveal() {
	b.presentation = Revealed
}

func (b *Block) Revealed() bool {
	return b.presentation == Revealed
}

func (b *Block) Presentation() Presentation {
	return b.presentation
}

// Deck is an ordered set of blocks, the usual Container.
type Deck []*Block

func (d Deck) Marked() []Target {
	targets := make([]Target, 0, len(d))
	for _, block := range d {
		if block != nil {
			targets = append(targets, block)
		}
	}
	return targets
}
