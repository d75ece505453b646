package force

import "math"

// maxQuadDepth bounds subdivision for points that differ by a few ulps;
// such points share a leaf and are treated as coincident.
const maxQuadDepth = 48

// quad is a node of a point-region quadtree over bodies. A leaf holds one
// or more bodies at (nearly) the same position; an internal node holds up
// to four children indexed by quadrant (bit 0: right half, bit 1: bottom).
type quad struct {
	children [4]*quad
	bodies   []*Body

	// Aggregates filled by accumulate.
	value  float64
	cx, cy float64
}

func (q *quad) leaf() bool { return q.children == [4]*quad{} }

// quadtree is a square region [x0, x0+size) x [y0, y0+size) and its root.
type quadtree struct {
	x0, y0, size float64
	root         *quad
}

// newQuadtree builds a tree covering every finite body.
func newQuadtree(bodies []*Body) *quadtree {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range bodies {
		minX, maxX = math.Min(minX, b.X), math.Max(maxX, b.X)
		minY, maxY = math.Min(minY, b.Y), math.Max(maxY, b.Y)
	}
	t := &quadtree{}
	if len(bodies) == 0 || math.IsInf(minX, 0) {
		return t
	}
	size := math.Max(maxX-minX, maxY-minY)
	if size <= 0 {
		size = 1
	}
	// Pad so the max edge falls strictly inside the half-open square.
	size = math.Nextafter(size*1.0000001, math.Inf(1))
	t.x0, t.y0, t.size = minX, minY, size
	for _, b := range bodies {
		t.insert(b)
	}
	return t
}

func (t *quadtree) insert(b *Body) {
	if t.root == nil {
		t.root = &quad{bodies: []*Body{b}}
		return
	}
	q := t.root
	x0, y0, size := t.x0, t.y0, t.size
	for depth := 0; ; depth++ {
		if q.leaf() {
			other := q.bodies[0]
			if (other.X == b.X && other.Y == b.Y) || depth >= maxQuadDepth {
				q.bodies = append(q.bodies, b)
				return
			}
			// Split: push the existing bodies one level down.
			existing := q.bodies
			q.bodies = nil
			half := size / 2
			i := quadrant(other.X, other.Y, x0, y0, half)
			q.children[i] = &quad{bodies: existing}
		}
		half := size / 2
		i := quadrant(b.X, b.Y, x0, y0, half)
		if i&1 != 0 {
			x0 += half
		}
		if i&2 != 0 {
			y0 += half
		}
		size = half
		if q.children[i] == nil {
			q.children[i] = &quad{bodies: []*Body{b}}
			return
		}
		q = q.children[i]
	}
}

func quadrant(x, y, x0, y0, half float64) int {
	i := 0
	if x >= x0+half {
		i |= 1
	}
	if y >= y0+half {
		i |= 2
	}
	return i
}

// visit walks the tree in pre-order. fn receives the node and its square;
// returning true skips the node's children.
func (t *quadtree) visit(fn func(q *quad, x0, y0, size float64) bool) {
	if t.root == nil {
		return
	}
	var walk func(q *quad, x0, y0, size float64)
	walk = func(q *quad, x0, y0, size float64) {
		if fn(q, x0, y0, size) {
			return
		}
		half := size / 2
		for i, c := range q.children {
			if c == nil {
				continue
			}
			cx, cy := x0, y0
			if i&1 != 0 {
				cx += half
			}
			if i&2 != 0 {
				cy += half
			}
			walk(c, cx, cy, half)
		}
	}
	walk(t.root, t.x0, t.y0, t.size)
}

// visitAfter walks the tree in post-order.
func (t *quadtree) visitAfter(fn func(q *quad)) {
	if t.root == nil {
		return
	}
	var walk func(q *quad)
	walk = func(q *quad) {
		for _, c := range q.children {
			if c != nil {
				walk(c)
			}
		}
		fn(q)
	}
	walk(t.root)
}

// count returns the number of bodies stored in the tree.
func (t *quadtree) count() int {
	n := 0
	t.visitAfter(func(q *quad) { n += len(q.bodies) })
	return n
}
