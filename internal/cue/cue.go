// internal/cue/cue.go
//
// Feedback cues (scratch, win, lose, complete) for the client to turn into
// sound or animation.
//
// A Player is an owned service: the caller constructs it, hands it to the
// game session, and initialises it on the first user gesture. Until then,
// and while muted, Play drops cues.

package cue

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Cue names a feedback event.
type Cue string

const (
	Scratch  Cue = "scratch"
	Win      Cue = "win"
	Lose     Cue = "lose"
	Complete Cue = "complete"
)

// Sink receives cues from a Player.
type Sink interface {
	Play(c Cue)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Cue)

func (f SinkFunc) Play(c Cue) { f(c) }

// Player gates cue delivery on initialisation and mute state.
type Player struct {
	mu      sync.Mutex
	newSink func() (Sink, error)
	sink    Sink
	muted   bool
}

// NewPlayer returns an uninitialised player; newSink runs on the first Init.
func NewPlayer(newSink func() (Sink, error)) *Player {
	return &Player{newSink: newSink}
}

// Init creates the sink if it does not exist yet. A failed Init leaves the
// player silent and may be retried.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sink != nil || p.newSink == nil {
		return nil
	}
	s, err := p.newSink()
	if err != nil {
		log.Warn().Err(err).Msg("cue sink unavailable")
		return err
	}
	p.sink = s
	return nil
}

// Ready reports whether Init has succeeded.
func (p *Player) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink != nil
}

func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}

// ToggleMute flips the mute state and returns the new value.
func (p *Player) ToggleMute() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = !p.muted
	return p.muted
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Play delivers c to the sink unless the player is muted or uninitialised.
func (p *Player) Play(c Cue) {
	p.mu.Lock()
	s, muted := p.sink, p.muted
	p.mu.Unlock()
	if s == nil || muted {
		return
	}
	s.Play(c)
}
