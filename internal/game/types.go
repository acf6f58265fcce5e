// internal/game/types.go
//
// Core type definitions for the scratch-card game controller.
// Defines:
//   - Phase: where a session is in its flow (invalid/playing/complete).
//   - Config: surface sizes, brush radius and history size.
//   - View / CardView / SurfaceView: what a client is allowed to see.
//   - ScratchResult: the outcome of one scratch or flush.

package game

import (
	"time"

	"github.com/robalobadob/scratcher/internal/card"
	"github.com/robalobadob/scratcher/internal/scratch"
)

// Phase is the coarse state of a session.
type Phase string

const (
	PhaseInvalid  Phase = "invalid"
	PhasePlaying  Phase = "playing"
	PhaseComplete Phase = "complete"
)

const (
	DefaultBrushRadius = 20

	defaultYourWidth   = 300
	defaultYourHeight  = 100
	defaultPrizeWidth  = 100
	defaultPrizeHeight = 80
)

// Surface kinds; surface 0 of every card is the player's number.
const (
	KindYour  = "your"
	KindPrize = "prize"
)

// Config tunes how cards are presented.
type Config struct {
	YourSurface  scratch.Options
	PrizeSurface scratch.Options
	BrushRadius  float64
	HistorySize  int
}

// DefaultConfig returns a 300×100 number surface, 100×80 prize surfaces, a
// 20px brush and a history of 15 cards.
func DefaultConfig() Config {
	your := scratch.DefaultOptions()
	your.Width, your.Height = defaultYourWidth, defaultYourHeight
	prize := scratch.DefaultOptions()
	prize.Width, prize.Height = defaultPrizeWidth, defaultPrizeHeight
	return Config{
		YourSurface:  your,
		PrizeSurface: prize,
		BrushRadius:  DefaultBrushRadius,
		HistorySize:  card.DefaultHistorySize,
	}
}

// SurfaceView describes one scratch surface. Value is nil until revealed.
type SurfaceView struct {
	Index    int           `json:"index"`
	Kind     string        `json:"kind"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	State    scratch.State `json:"state"`
	Coverage float64       `json:"coverage"`
	Value    *int          `json:"value,omitempty"`
}

// CardView is the current card. IsWin is only set once every surface has
// been revealed.
type CardView struct {
	ID       string        `json:"id"`
	Surfaces []SurfaceView `json:"surfaces"`
	Revealed bool          `json:"revealed"`
	IsWin    *bool         `json:"isWin,omitempty"`
	IssuedAt time.Time     `json:"issuedAt"`
}

// View is a snapshot of a session.
//
// Slots mirrors the message word by word with uncollected words blanked.
// Message is only filled in once the session is complete.
type View struct {
	Token      string      `json:"token"`
	Phase      Phase       `json:"phase"`
	TotalWords int         `json:"totalWords"`
	Collected  []string    `json:"collectedWords"`
	Remaining  int         `json:"remaining"`
	Slots      []string    `json:"slots"`
	Card       *CardView   `json:"card,omitempty"`
	History    []card.Card `json:"history"`
	Message    string      `json:"message,omitempty"`
	Muted      bool        `json:"muted"`
}

// ScratchResult reports what a scratch or flush changed.
type ScratchResult struct {
	Cleared   bool          `json:"cleared"` // coverage grew
	State     scratch.State `json:"state"`
	Resolved  bool          `json:"resolved"`  // the card finished on this call
	Won       bool          `json:"won"`
	Word      string        `json:"word,omitempty"`
	Completed bool          `json:"completed"` // the message finished on this call
	View      View          `json:"view"`
}
