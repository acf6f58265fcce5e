package card_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/robalobadob/scratcher/internal/card"
)

func newGenerator(t *testing.T, cfg card.Config) *card.Generator {
	t.Helper()
	g, err := card.NewGenerator(cfg)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	return g
}

func TestRandomNumberInRange(t *testing.T) {
	t.Parallel()

	g := newGenerator(t, card.DefaultConfig())
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		n := g.RandomNumber()
		if n < card.DefaultMinNumber || n > card.DefaultMaxNumber {
			t.Fatalf("RandomNumber() = %d out of range", n)
		}
		seen[n] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected every value of 1..10 to appear, saw %d", len(seen))
	}
}

func TestPrizeNumbersUniqueAndInRange(t *testing.T) {
	t.Parallel()

	g := newGenerator(t, card.Config{MinNumber: 1, MaxNumber: 15, PrizeCount: 6})
	distinctSets := map[string]bool{}
	for i := 0; i < 200; i++ {
		prizes, err := g.PrizeNumbers(6)
		if err != nil {
			t.Fatalf("PrizeNumbers() error = %v", err)
		}
		if len(prizes) != 6 {
			t.Fatalf("expected 6 prizes, got %d", len(prizes))
		}
		sorted := slices.Clone(prizes)
		slices.Sort(sorted)
		if len(slices.Compact(slices.Clone(sorted))) != 6 {
			t.Fatalf("duplicate prize numbers: %v", prizes)
		}
		for _, p := range prizes {
			if p < 1 || p > 15 {
				t.Fatalf("prize %d out of range", p)
			}
		}
		key := ""
		for _, p := range sorted {
			key += string(rune('a' + p))
		}
		distinctSets[key] = true
	}
	if len(distinctSets) < 2 {
		t.Fatal("prize sets never vary")
	}
}

func TestPrizeNumbersWholeRange(t *testing.T) {
	t.Parallel()

	g := newGenerator(t, card.Config{MinNumber: 1, MaxNumber: 6, PrizeCount: 6})
	prizes, err := g.PrizeNumbers(6)
	if err != nil {
		t.Fatalf("PrizeNumbers() error = %v", err)
	}
	slices.Sort(prizes)
	if !slices.Equal(prizes, []int{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("expected the full range, got %v", prizes)
	}
	if c := g.New(); !c.IsWin {
		t.Fatal("a card whose prizes cover the whole range must win")
	}
}

func TestConfigurationGuards(t *testing.T) {
	t.Parallel()

	bad := []card.Config{
		{MinNumber: 1, MaxNumber: 5, PrizeCount: 6},
		{MinNumber: 10, MaxNumber: 1, PrizeCount: 1},
		{MinNumber: 1, MaxNumber: 10, PrizeCount: 0},
	}
	for _, cfg := range bad {
		_, err := card.NewGenerator(cfg)
		var cfgErr *card.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("NewGenerator(%+v) error = %v, want ConfigurationError", cfg, err)
		}
	}

	g := newGenerator(t, card.DefaultConfig())
	if _, err := g.PrizeNumbers(11); err == nil {
		t.Fatal("PrizeNumbers(11) over a 10-number range should fail fast")
	}
}

func TestCheckWin(t *testing.T) {
	t.Parallel()

	prizes := []int{2, 4, 6}
	for n := 0; n < 8; n++ {
		want := n == 2 || n == 4 || n == 6
		if got := card.CheckWin(n, prizes); got != want {
			t.Fatalf("CheckWin(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestNewCard(t *testing.T) {
	t.Parallel()

	g := newGenerator(t, card.DefaultConfig())
	a, b := g.New(), g.New()
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("card IDs must be unique: %q %q", a.ID, b.ID)
	}
	if a.IsWin != card.CheckWin(a.YourNumber, a.PrizeNumbers) {
		t.Fatal("IsWin disagrees with CheckWin")
	}
	if a.Revealed {
		t.Fatal("new card must not be revealed")
	}
}

func TestHistoryBounded(t *testing.T) {
	t.Parallel()

	h := card.NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(card.Card{ID: string(rune('0' + i))})
	}
	got := h.List()
	if len(got) != 3 || got[0].ID != "5" || got[2].ID != "3" {
		t.Fatalf("unexpected history %+v", got)
	}
	h.Clear()
	if h.Len() != 0 {
		t.Fatal("Clear() left cards behind")
	}
}

func TestHistoryListIsACopy(t *testing.T) {
	t.Parallel()

	h := card.NewHistory(2)
	h.Push(card.Card{ID: "a", PrizeNumbers: []int{1, 2, 3}})
	got := h.List()
	got[0].PrizeNumbers[0] = 99
	if again := h.List(); again[0].PrizeNumbers[0] != 1 {
		t.Fatalf("List() shares prize numbers with the history: %v", again[0].PrizeNumbers)
	}
}
