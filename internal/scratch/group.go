package scratch

// Group is a card made of several surfaces. It fires allRevealed exactly
// once, when every surface has revealed, whatever the order.
type Group struct {
	surfaces    []*Surface
	revealed    int
	done        bool
	allRevealed func()
}

// NewGroup creates one surface per entry of opts. allRevealed may be nil.
func NewGroup(allRevealed func(), opts ...Options) *Group {
	g := &Group{allRevealed: allRevealed}
	g.surfaces = make([]*Surface, len(opts))
	for i, o := range opts {
		g.surfaces[i] = NewSurface(o, g.surfaceRevealed)
	}
	return g
}

func (g *Group) surfaceRevealed() {
	g.revealed++
	if g.revealed == len(g.surfaces) && !g.done {
		g.done = true
		if g.allRevealed != nil {
			g.allRevealed()
		}
	}
}

// Surface returns the i-th surface, or nil when i is out of range.
func (g *Group) Surface(i int) *Surface {
	if i < 0 || i >= len(g.surfaces) {
		return nil
	}
	return g.surfaces[i]
}

func (g *Group) Len() int      { return len(g.surfaces) }
func (g *Group) Revealed() int { return g.revealed }
func (g *Group) Done() bool    { return g.done }
