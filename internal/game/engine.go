// internal/game/engine.go
//
// Game controller for a single player on a single link.
// Responsibilities:
//   - Resolve a token into its message and the distinct words to collect.
//   - Load or create progress before any card is issued.
//   - Issue cards, route scratches to their surfaces, resolve finished cards.
//   - Append the first uncollected word (message order) on every win and
//     switch to the completion view exactly once.
//
// Notes:
//   - A Session is shared by concurrent HTTP handlers; every exported method
//     takes the session lock.
//   - Cards are never persisted; only the progress record is.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/card"
	"github.com/robalobadob/scratcher/internal/codec"
	"github.com/robalobadob/scratcher/internal/cue"
	"github.com/robalobadob/scratcher/internal/progress"
	"github.com/robalobadob/scratcher/internal/scratch"
	"github.com/robalobadob/scratcher/internal/words"
)

var (
	ErrInvalidLink = errors.New("invalid link")
	ErrComplete    = errors.New("message already complete")
	ErrNoCard      = errors.New("no card in play")
	ErrBadSurface  = errors.New("no such surface")
)

// CardSource issues cards; *card.Generator is the production source.
type CardSource interface {
	New() card.Card
}

// Deps are the collaborators a Session needs. Cues may be nil.
type Deps struct {
	Tracker *progress.Tracker
	Cards   CardSource
	Cues    *cue.Player
	Config  Config
}

// Session is one player's game on one link.
type Session struct {
	mu sync.Mutex

	token   string
	message string
	slots   []string // message words in order, duplicates kept
	words   []string // distinct words in message order

	tracker *progress.Tracker
	cards   CardSource
	cues    *cue.Player
	cfg     Config

	rec     progress.Record
	phase   Phase
	current *card.Card
	group   *scratch.Group
	history *card.History

	cardDone bool // set by the group's allRevealed callback
	resolved bool
}

// Open decodes token and prepares its session. An undecodable token fails
// with ErrInvalidLink before progress is read or written.
func Open(ctx context.Context, token string, deps Deps) (*Session, error) {
	msg, ok := codec.Decode(token)
	if !ok || strings.TrimSpace(msg) == "" {
		return nil, fmt.Errorf("%w: %q does not decode to a message", ErrInvalidLink, token)
	}
	if deps.Tracker == nil || deps.Cards == nil {
		return nil, errors.New("game: tracker and card source are required")
	}
	cues := deps.Cues
	if cues == nil {
		cues = cue.NewPlayer(nil)
	}
	cfg := deps.Config
	if cfg.BrushRadius <= 0 {
		cfg.BrushRadius = DefaultBrushRadius
	}

	slots := words.Split(msg)
	s := &Session{
		token:   token,
		message: msg,
		slots:   slots,
		words:   words.Distinct(slots),
		tracker: deps.Tracker,
		cards:   deps.Cards,
		cues:    cues,
		cfg:     cfg,
		history: card.NewHistory(cfg.HistorySize),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(ctx)
	log.Debug().Str("token", token).Int("words", len(s.words)).Str("phase", string(s.phase)).Msg("session opened")
	return s, nil
}

// start loads progress and either shows the finished message or deals a card.
func (s *Session) start(ctx context.Context) {
	s.rec = s.tracker.GetOrCreate(ctx, s.token, len(s.words))
	if s.rec.IsComplete || s.nextWord() == "" {
		s.phase = PhaseComplete
		return
	}
	s.phase = PhasePlaying
	s.deal()
}

// deal replaces the current card, moving the old one onto the history.
func (s *Session) deal() {
	if s.current != nil {
		prev := *s.current
		prev.Revealed = s.resolved
		s.history.Push(prev)
	}
	c := s.cards.New()
	s.current = &c
	s.cardDone, s.resolved = false, false

	opts := make([]scratch.Options, 0, 1+len(c.PrizeNumbers))
	opts = append(opts, s.cfg.YourSurface)
	for range c.PrizeNumbers {
		opts = append(opts, s.cfg.PrizeSurface)
	}
	s.group = scratch.NewGroup(func() { s.cardDone = true }, opts...)
}

// nextWord is the first message word not yet collected, or "".
func (s *Session) nextWord() string {
	for _, w := range s.words {
		if !s.rec.Has(w) {
			return w
		}
	}
	return ""
}

// Token returns the link token the session was opened with.
func (s *Session) Token() string { return s.token }

// Cues returns the session's cue player.
func (s *Session) Cues() *cue.Player { return s.cues }

// Phase returns the session phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// NewCard deals a fresh card. It fails with ErrComplete once every word has
// been collected.
func (s *Session) NewCard() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseComplete {
		return s.view(), ErrComplete
	}
	s.deal()
	return s.view(), nil
}

// Scratch clears a brush disc on surface i of the current card. radius <= 0
// uses the configured brush.
func (s *Session) Scratch(ctx context.Context, i int, x, y, radius float64) (ScratchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	surf, err := s.surface(i)
	if err != nil {
		return ScratchResult{View: s.view()}, err
	}
	if radius <= 0 {
		radius = s.cfg.BrushRadius
	}
	before := surf.Coverage()
	surf.Clear(x, y, radius)
	res := ScratchResult{Cleared: surf.Coverage() > before}
	if res.Cleared {
		s.cues.Play(cue.Scratch)
	}
	return s.settle(ctx, surf, res), nil
}

// Flush runs a coverage check on surface i, as at the end of a stroke.
func (s *Session) Flush(ctx context.Context, i int) (ScratchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	surf, err := s.surface(i)
	if err != nil {
		return ScratchResult{View: s.view()}, err
	}
	surf.Check()
	return s.settle(ctx, surf, ScratchResult{}), nil
}

func (s *Session) surface(i int) (*scratch.Surface, error) {
	if s.phase == PhaseComplete {
		return nil, ErrComplete
	}
	if s.current == nil {
		return nil, ErrNoCard
	}
	surf := s.group.Surface(i)
	if surf == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadSurface, i)
	}
	return surf, nil
}

// settle resolves the card if its last surface just revealed.
func (s *Session) settle(ctx context.Context, surf *scratch.Surface, res ScratchResult) ScratchResult {
	res.State = surf.State()
	if s.cardDone && !s.resolved {
		res.Resolved = true
		res.Won, res.Word, res.Completed = s.resolve(ctx)
	}
	res.View = s.view()
	return res
}

func (s *Session) resolve(ctx context.Context) (won bool, word string, completed bool) {
	s.resolved = true
	s.current.Revealed = true
	if !s.current.IsWin {
		s.cues.Play(cue.Lose)
		return false, "", false
	}

	word = s.nextWord()
	if word == "" {
		return true, "", false
	}
	s.rec = s.tracker.AddWord(ctx, s.rec, word)
	s.cues.Play(cue.Win)
	log.Info().Str("token", s.token).Str("word", word).Int("collected", len(s.rec.CollectedWords)).Int("total", s.rec.TotalWords).Msg("word unlocked")

	if s.rec.IsComplete && s.phase != PhaseComplete {
		s.phase = PhaseComplete
		s.cues.Play(cue.Complete)
		log.Info().Str("token", s.token).Msg("message complete")
		return true, word, true
	}
	return true, word, false
}

// Reset destroys the stored progress and starts over with a fresh record
// and a new card.
func (s *Session) Reset(ctx context.Context) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset(ctx, s.token)
	s.history.Clear()
	s.current, s.group = nil, nil
	s.start(ctx)
	return s.view()
}

// SetMuted mutes or unmutes the session's cues.
func (s *Session) SetMuted(muted bool) View {
	s.cues.SetMuted(muted)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// ToggleMute flips the session's mute state.
func (s *Session) ToggleMute() View {
	s.cues.ToggleMute()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	v := View{
		Token:      s.token,
		Phase:      s.phase,
		TotalWords: s.rec.TotalWords,
		Collected:  append([]string{}, s.rec.CollectedWords...),
		Remaining:  s.rec.Remaining(),
		Slots:      make([]string, len(s.slots)),
		History:    s.history.List(),
		Muted:      s.cues.Muted(),
	}
	for i, w := range s.slots {
		if s.phase == PhaseComplete || s.rec.Has(w) {
			v.Slots[i] = w
		}
	}
	if s.phase == PhaseComplete {
		v.Message = s.message
	}
	if s.current != nil && s.group != nil {
		v.Card = s.cardView()
	}
	return v
}

func (s *Session) cardView() *CardView {
	c := s.current
	cv := &CardView{ID: c.ID, Revealed: s.resolved, IssuedAt: c.IssuedAt}
	for i := 0; i < s.group.Len(); i++ {
		surf := s.group.Surface(i)
		o := surf.Options()
		sv := SurfaceView{
			Index:    i,
			Kind:     KindPrize,
			Width:    o.Width,
			Height:   o.Height,
			State:    surf.State(),
			Coverage: surf.Coverage(),
		}
		value := c.YourNumber
		if i == 0 {
			sv.Kind = KindYour
		} else {
			value = c.PrizeNumbers[i-1]
		}
		if surf.Revealed() {
			sv.Value = &value
		}
		cv.Surfaces = append(cv.Surfaces, sv)
	}
	if s.resolved {
		win := c.IsWin
		cv.IsWin = &win
	}
	return cv
}
