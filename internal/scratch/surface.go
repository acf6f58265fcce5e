// internal/scratch/surface.go
//
// Scratch surface: a rectangle covered by an opaque layer that is erased one
// brush disc at a time.
//
// Responsibilities:
//   - Track which parts of the layer are cleared on a boolean grid of
//     CellSize×CellSize cells (a cell is cleared once its centre falls inside
//     a brush disc).
//   - Measure coverage as cleared cells / total cells, every CheckEvery
//     clears and on explicit Check calls.
//   - Reveal once coverage reaches Threshold: the whole layer is discarded
//     and the reveal callback runs exactly once.
//
// State machine: hidden → scratching → revealed (terminal). Coverage only
// ever grows, so scratching the same spot over and over never reveals.

package scratch

import "math"

// State is the lifecycle position of a Surface.
type State string

const (
	StateHidden     State = "hidden"
	StateScratching State = "scratching"
	StateRevealed   State = "revealed"
)

const (
	DefaultWidth      = 300
	DefaultHeight     = 200
	DefaultCellSize   = 4
	DefaultThreshold  = 0.4
	DefaultCheckEvery = 1
)

// Options sizes a surface and tunes its reveal rule.
type Options struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	CellSize   float64 `json:"cellSize"`
	Threshold  float64 `json:"threshold"`  // fraction of area in (0, 1]
	CheckEvery int     `json:"checkEvery"` // clears between coverage checks
}

// DefaultOptions returns a 300×200 surface revealing at 40% coverage.
func DefaultOptions() Options {
	return Options{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		CellSize:   DefaultCellSize,
		Threshold:  DefaultThreshold,
		CheckEvery: DefaultCheckEvery,
	}
}

// normalized replaces unusable fields with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if !(o.Width > 0) {
		o.Width = d.Width
	}
	if !(o.Height > 0) {
		o.Height = d.Height
	}
	if !(o.CellSize > 0) {
		o.CellSize = d.CellSize
	}
	if !(o.Threshold > 0) || o.Threshold > 1 {
		o.Threshold = d.Threshold
	}
	if o.CheckEvery <= 0 {
		o.CheckEvery = d.CheckEvery
	}
	return o
}

// Surface is one scratchable region. It is not safe for concurrent use.
type Surface struct {
	opts     Options
	cols     int
	rows     int
	cells    []bool
	cleared  int
	clears   int
	state    State
	onReveal func()
}

// NewSurface builds a hidden surface. onReveal may be nil.
func NewSurface(opts Options, onReveal func()) *Surface {
	opts = opts.normalized()
	cols := int(math.Ceil(opts.Width / opts.CellSize))
	rows := int(math.Ceil(opts.Height / opts.CellSize))
	return &Surface{
		opts:     opts,
		cols:     cols,
		rows:     rows,
		cells:    make([]bool, cols*rows),
		state:    StateHidden,
		onReveal: onReveal,
	}
}

func (s *Surface) Options() Options { return s.opts }
func (s *Surface) State() State     { return s.state }
func (s *Surface) Revealed() bool   { return s.state == StateRevealed }

// Coverage returns the cleared fraction of the layer in [0, 1].
func (s *Surface) Coverage() float64 {
	if len(s.cells) == 0 {
		return 1
	}
	return float64(s.cleared) / float64(len(s.cells))
}

// Clear erases a disc of radius centred on (x, y) and reports whether this
// call revealed the surface. It does nothing once the surface is revealed.
func (s *Surface) Clear(x, y, radius float64) bool {
	if s.state == StateRevealed {
		return false
	}
	if !finite(x) || !finite(y) || !finite(radius) || radius <= 0 {
		return false
	}
	s.state = StateScratching

	cs := s.opts.CellSize
	c0 := cellIndex((x-radius)/cs, s.cols)
	c1 := cellIndex((x+radius)/cs, s.cols)
	r0 := cellIndex((y-radius)/cs, s.rows)
	r1 := cellIndex((y+radius)/cs, s.rows)
	r2 := radius * radius

	for row := r0; row <= r1; row++ {
		cy := (float64(row) + 0.5) * cs
		for col := c0; col <= c1; col++ {
			i := row*s.cols + col
			if s.cells[i] {
				continue
			}
			cx := (float64(col) + 0.5) * cs
			if dx, dy := cx-x, cy-y; dx*dx+dy*dy <= r2 {
				s.cells[i] = true
				s.cleared++
			}
		}
	}

	s.clears++
	if s.clears%s.opts.CheckEvery != 0 {
		return false
	}
	return s.Check()
}

// Check compares coverage with the threshold and reveals if it is reached.
// It reports whether this call revealed the surface.
func (s *Surface) Check() bool {
	if s.state == StateRevealed || s.Coverage() < s.opts.Threshold {
		return false
	}
	s.reveal()
	return true
}

// Reveal discards the layer regardless of coverage. Calling it on a revealed
// surface is a no-op.
func (s *Surface) Reveal() {
	if s.state != StateRevealed {
		s.reveal()
	}
}

func (s *Surface) reveal() {
	for i := range s.cells {
		s.cells[i] = true
	}
	s.cleared = len(s.cells)
	s.state = StateRevealed
	if s.onReveal != nil {
		s.onReveal()
	}
}

// cellIndex floors f and clamps it to [0, n-1]. Clamping happens before the
// int conversion so huge coordinates stay in range.
func cellIndex(f float64, n int) int {
	return int(math.Max(0, math.Min(float64(n-1), math.Floor(f))))
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
