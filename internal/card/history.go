package card

// DefaultHistorySize is how many finished cards are kept for display.
const DefaultHistorySize = 15

// History is a bounded, most-recent-first list of finished cards.
// It is not safe for concurrent use; the owning session serialises access.
type History struct {
	max   int
	cards []Card
}

// NewHistory returns an empty history holding at most size cards
// (DefaultHistorySize if size <= 0).
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{max: size}
}

// Push records c as the most recent card, dropping the oldest beyond the cap.
func (h *History) Push(c Card) {
	h.cards = append([]Card{c}, h.cards...)
	if len(h.cards) > h.max {
		h.cards = h.cards[:h.max]
	}
}

// List returns a copy of the cards, most recent first.
func (h *History) List() []Card {
	out := make([]Card, len(h.cards))
	for i, c := range h.cards {
		c.PrizeNumbers = append([]int(nil), c.PrizeNumbers...)
		out[i] = c
	}
	return out
}

func (h *History) Len() int { return len(h.cards) }

func (h *History) Clear() { h.cards = nil }
