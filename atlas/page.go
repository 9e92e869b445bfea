package atlas

import (
	"image"
	"sort"
)

// classStep rounds shelf heights so items of similar height share shelves.
const classStep = 8

func heightClass(h int) int {
	return (h + classStep - 1) &^ (classStep - 1)
}

// span is a free horizontal run on the shelf starting at y.
type span struct {
	y, x, w int
}

// page packs items into one square texture. Shelves are grouped by height
// class; each class keeps its free spans sorted by width so a fit is found
// with one binary search.
type page struct {
	size  int
	nextY int
	free  map[int][]span
	items int
	used  int
}

func newPage(size int) *page {
	return &page{size: size, free: make(map[int][]span)}
}

// alloc reserves a w x h cell (padding already included). It reports false
// when the page has no room.
func (p *page) alloc(w, h int) (image.Rectangle, bool) {
	class := heightClass(h)
	spans := p.free[class]
	i := sort.Search(len(spans), func(i int) bool { return spans[i].w >= w })
	if i == len(spans) {
		if p.nextY+class > p.size {
			return image.Rectangle{}, false
		}
		p.insert(class, span{y: p.nextY, x: 0, w: p.size})
		p.nextY += class
		spans = p.free[class]
		i = sort.Search(len(spans), func(i int) bool { return spans[i].w >= w })
	}

	sp := spans[i]
	p.free[class] = append(spans[:i], spans[i+1:]...)
	if rest := sp.w - w; rest > 0 {
		p.insert(class, span{y: sp.y, x: sp.x + w, w: rest})
	}
	p.items++
	p.used += w * h
	return image.Rect(sp.x, sp.y, sp.x+w, sp.y+h), true
}

// release returns a cell allocated by alloc. The freed run is merged with
// free neighbours on its shelf, and fully free shelves at the top of the
// page are dropped so any height class can reuse them.
func (p *page) release(r image.Rectangle) {
	p.items--
	p.used -= r.Dx() * r.Dy()
	if p.items <= 0 {
		p.reset()
		return
	}
	class := heightClass(r.Dy())
	sp := span{y: r.Min.Y, x: r.Min.X, w: r.Dx()}
	spans := p.free[class][:0]
	for _, n := range p.free[class] {
		switch {
		case n.y == sp.y && n.x+n.w == sp.x:
			sp.x, sp.w = n.x, sp.w+n.w
		case n.y == sp.y && sp.x+sp.w == n.x:
			sp.w += n.w
		default:
			spans = append(spans, n)
		}
	}
	p.free[class] = spans
	if sp.x == 0 && sp.w == p.size && sp.y+class == p.nextY {
		p.nextY = sp.y
		p.dropFreeShelves()
		return
	}
	p.insert(class, sp)
}

// dropFreeShelves lowers nextY past every fully free shelf on top.
func (p *page) dropFreeShelves() {
	for {
		found := false
		for class, spans := range p.free {
			for i, sp := range spans {
				if sp.x == 0 && sp.w == p.size && sp.y+class == p.nextY {
					p.free[class] = append(spans[:i], spans[i+1:]...)
					p.nextY = sp.y
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return
		}
	}
}

func (p *page) insert(class int, sp span) {
	spans := p.free[class]
	i := sort.Search(len(spans), func(i int) bool { return spans[i].w >= sp.w })
	spans = append(spans, span{})
	copy(spans[i+1:], spans[i:])
	spans[i] = sp
	p.free[class] = spans
}

func (p *page) reset() {
	p.nextY = 0
	p.items = 0
	p.used = 0
	clear(p.free)
}
