package stubserver

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/default.yaml
var defaultFixture []byte

// Fixture is the canned knowledge the stub answers from.
type Fixture struct {
	Fallback Entry   `yaml:"fallback"`
	Entries  []Entry `yaml:"entries"`
}

// Entry answers queries that mention its keywords. A non-zero Status makes
// the stub fail with that HTTP status instead.
type Entry struct {
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`
	Sources  []string `yaml:"sources"`
	Status   int      `yaml:"status"`
}

// DefaultFixture returns the built-in Maharashtra policy fixture.
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}

// LoadFixture reads a YAML fixture; an empty path means the default.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return DefaultFixture()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if strings.TrimSpace(fixture.Fallback.Answer) == "" && fixture.Fallback.Status == 0 {
		return nil, fmt.Errorf("parse fixture: fallback answer is required")
	}
	for i := range fixture.Entries {
		for j, keyword := range fixture.Entries[i].Keywords {
			fixture.Entries[i].Keywords[j] = strings.ToLower(strings.TrimSpace(keyword))
		}
	}
	return &fixture, nil
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Match picks the entry sharing the most keywords with query. Ties keep the
// earlier entry; no overlap yields the fallback.
func (f *Fixture) Match(query string) Entry {
	words := map[string]bool{}
	for _, word := range wordPattern.FindAllString(strings.ToLower(query), -1) {
		words[word] = true
	}
	best := f.Fallback
	bestScore := 0
	for _, entry := range f.Entries {
		score := 0
		for _, keyword := range entry.Keywords {
			if words[keyword] {
				score++
			}
		}
		if score > bestScore {
			best = entry
			bestScore = score
		}
	}
	return best
}
