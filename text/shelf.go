package text

// shelfPacker packs rectangles into horizontal shelves. Each shelf is as tall
// as the tallest cell placed on it; cells go left to right until the shelf is
// full, then a new shelf opens below. The packer's height can grow, which
// only adds room below the existing shelves.
type shelfPacker struct {
	width, height int
	padding       int
	shelves       []shelf
	usedArea      int
}

type shelf struct {
	y, height, x int
}

func newShelfPacker(width, height, padding int) *shelfPacker {
	return &shelfPacker{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// allocate reserves a w×h cell and returns its top-left corner, or false when
// the packer is full at its current height.
func (p *shelfPacker) allocate(w, h int) (x, y int, ok bool) {
	pw, ph := w+p.padding, h+p.padding
	if p.padding+pw > p.width {
		return -1, -1, false
	}
	for i := range p.shelves {
		s := &p.shelves[i]
		if s.x+pw > p.width {
			continue
		}
		if h > s.height {
			// Only the last shelf can grow taller.
			if i != len(p.shelves)-1 || s.y+ph > p.height {
				continue
			}
			s.height = h
		}
		x, y = s.x, s.y
		s.x += pw
		p.usedArea += w * h
		return x, y, true
	}

	y = p.padding
	if n := len(p.shelves); n > 0 {
		last := p.shelves[n-1]
		y = last.y + last.height + p.padding
	}
	if y+ph > p.height {
		return -1, -1, false
	}
	p.shelves = append(p.shelves, shelf{y: y, height: h, x: p.padding + pw})
	p.usedArea += w * h
	return p.padding, y, true
}

// grow raises the packer height. Existing cells keep their positions.
func (p *shelfPacker) grow(height int) {
	if height > p.height {
		p.height = height
	}
}

func (p *shelfPacker) utilization() float64 {
	if p.width <= 0 || p.height <= 0 {
		return 0
	}
	return float64(p.usedArea) / float64(p.width*p.height)
}
