// internal/card/card.go
//
// Lottery card generation.
//
// A card is one play: a "your number" and a set of unique "prize numbers",
// all drawn uniformly from [MinNumber, MaxNumber]. The card wins when your
// number is one of the prize numbers.
//
// Prize numbers are drawn by rejection sampling, which only terminates when
// the range holds at least PrizeCount distinct values; NewGenerator and
// PrizeNumbers refuse configurations that violate this.

package card

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMinNumber  = 1
	DefaultMaxNumber  = 10
	DefaultPrizeCount = 6
)

// Config holds the number range and prize count.
type Config struct {
	MinNumber  int `json:"minNumber"`
	MaxNumber  int `json:"maxNumber"`
	PrizeCount int `json:"prizeCount"`
}

// DefaultConfig returns the 1–10 range with six prize numbers.
func DefaultConfig() Config {
	return Config{MinNumber: DefaultMinNumber, MaxNumber: DefaultMaxNumber, PrizeCount: DefaultPrizeCount}
}

// RangeSize is the number of distinct values in [MinNumber, MaxNumber].
func (c Config) RangeSize() int { return c.MaxNumber - c.MinNumber + 1 }

// Validate reports a *ConfigurationError for unusable settings.
func (c Config) Validate() error {
	if c.RangeSize() < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("empty number range [%d, %d]", c.MinNumber, c.MaxNumber)}
	}
	if c.PrizeCount < 1 {
		return &ConfigurationError{Reason: fmt.Sprintf("prize count must be positive, got %d", c.PrizeCount)}
	}
	if c.PrizeCount > c.RangeSize() {
		return &ConfigurationError{Reason: fmt.Sprintf("prize count %d exceeds the %d numbers in [%d, %d]",
			c.PrizeCount, c.RangeSize(), c.MinNumber, c.MaxNumber)}
	}
	return nil
}

// ConfigurationError reports a generator configuration that cannot work.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string { return "card configuration: " + e.Reason }

// Card is a single issued lottery card. It is never persisted.
type Card struct {
	ID           string    `json:"id"`
	YourNumber   int       `json:"yourNumber"`
	PrizeNumbers []int     `json:"prizeNumbers"`
	IsWin        bool      `json:"isWin"`
	Revealed     bool      `json:"revealed"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// Generator issues cards. It has no state beyond its configuration; the
// random source is the process-wide math/rand generator.
type Generator struct {
	cfg Config
}

// NewGenerator validates cfg and returns a Generator for it.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Config returns the generator's configuration.
func (g *Generator) Config() Config { return g.cfg }

// RandomNumber returns a uniform value in [MinNumber, MaxNumber].
func (g *Generator) RandomNumber() int {
	return g.cfg.MinNumber + rand.Intn(g.cfg.RangeSize())
}

// PrizeNumbers draws count unique values from the range, in draw order.
func (g *Generator) PrizeNumbers(count int) ([]int, error) {
	if count < 0 || count > g.cfg.RangeSize() {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("cannot draw %d unique numbers from %d", count, g.cfg.RangeSize())}
	}
	seen := make(map[int]struct{}, count)
	out := make([]int, 0, count)
	for len(out) < count {
		n := g.RandomNumber()
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

// CheckWin reports whether your is one of prizes.
func CheckWin(your int, prizes []int) bool {
	return slices.Contains(prizes, your)
}

// New issues a fresh card.
func (g *Generator) New() Card {
	your := g.RandomNumber()
	// PrizeCount was validated by NewGenerator.
	prizes, _ := g.PrizeNumbers(g.cfg.PrizeCount)
	return Card{
		ID:           uuid.New().String(),
		YourNumber:   your,
		PrizeNumbers: prizes,
		IsWin:        CheckWin(your, prizes),
		IssuedAt:     time.Now().UTC(),
	}
}
