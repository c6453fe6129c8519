package history

// PanScale is how far the strip scrolls per unit of pointer travel.
const PanScale = 2

// Pan tracks a horizontal drag over the card strip.
//
// The zero value is a released gesture.
type Pan struct {
	engaged      bool
	originX      int
	originScroll int
}

// Press starts a drag at pointer x with the strip scrolled to scroll.
func (p *Pan) Press(x, scroll int) {
	p.engaged = true
	p.originX = x
	p.originScroll = scroll
}

// Move returns the scroll offset for pointer x and whether a drag is active.
// Dragging right scrolls back toward the start; the offset never goes below 0.
func (p *Pan) Move(x int) (int, bool) {
	if !p.engaged {
		return 0, false
	}
	offset := p.originScroll - (x-p.originX)*PanScale
	if offset < 0 {
		offset = 0
	}
	return offset, true
}

// Release ends the drag on pointer up.
func (p *Pan) Release() { *p = Pan{} }

// Leave ends the drag when the pointer leaves the strip.
func (p *Pan) Leave() { *p = Pan{} }

func (p *Pan) Engaged() bool { return p.engaged }
