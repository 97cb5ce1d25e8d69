// Package cursor provides a bidirectional cursor over a one-pass, lazily
// generated sequence. Elements are pulled from the source only when a
// cursor operation needs them, and each element is pulled at most once;
// moving backwards replays the buffer.
package cursor

// Source is a one-pass sequence. Next returns false once exhausted.
type Source[T any] interface {
	Next() (T, bool)
}

// SourceFunc adapts a function to a Source.
type SourceFunc[T any] func() (T, bool)

// Next calls f.
func (f SourceFunc[T]) Next() (T, bool) {
	return f()
}

// cell holds a realized element and its memoized view.
type cell[T, V any] struct {
	raw    T
	view   V
	viewed bool
}

// Cursor is a position over a growing buffer of realized elements. The
// transform maps realized elements to the values callers see; it runs at
// most once per element.
type Cursor[T, V any] struct {
	src       Source[T]
	transform func(T) V
	buf       []*cell[T, V]
	index     int
	exhausted bool
}

// New creates a cursor positioned before the first element.
func New[T, V any](src Source[T], transform func(T) V) *Cursor[T, V] {
	return &Cursor[T, V]{
		src:       src,
		transform: transform,
		index:     -1,
	}
}

// Index returns the current position; -1 before the first element.
func (c *Cursor[T, V]) Index() int {
	return c.index
}

// Len returns how many elements have been realized so far.
func (c *Cursor[T, V]) Len() int {
	return len(c.buf)
}

// Exhausted reports whether the source has reported its end.
func (c *Cursor[T, V]) Exhausted() bool {
	return c.exhausted
}

// Current returns the element at the current position without moving.
func (c *Cursor[T, V]) Current() (V, bool) {
	if c.index < 0 || c.index >= len(c.buf) {
		var zero V
		return zero, false
	}
	return c.view(c.index), true
}

// First moves to the first element, pulling it if needed.
func (c *Cursor[T, V]) First() (V, bool) {
	return c.moveTo(0)
}

// Last drains the source and moves to the final element. The source must
// be finite.
func (c *Cursor[T, V]) Last() (V, bool) {
	for c.pull() {
	}
	return c.moveTo(len(c.buf) - 1)
}

// Prev moves back one element. It never pulls: earlier elements are
// always realized.
func (c *Cursor[T, V]) Prev() (V, bool) {
	i := c.index - 1
	if i < 0 || i >= len(c.buf) {
		var zero V
		return zero, false
	}
	c.index = i
	return c.view(i), true
}

// Next moves forward one element, pulling it if needed.
func (c *Cursor[T, V]) Next() (V, bool) {
	return c.moveTo(c.index + 1)
}

// Prepare returns the element after the current one without moving.
// Repeated calls return the same element and pull nothing new.
func (c *Cursor[T, V]) Prepare() (V, bool) {
	i := c.index + 1
	if !c.ensure(i) {
		var zero V
		return zero, false
	}
	return c.view(i), true
}

// Peek returns up to count elements starting at Index()+offset, without
// moving. Fewer are returned near the end of the sequence.
func (c *Cursor[T, V]) Peek(count, offset int) []V {
	if count <= 0 {
		return nil
	}
	start := max(c.index+offset, 0)
	out := make([]V, 0, count)
	for i := start; i < start+count; i++ {
		if !c.ensure(i) {
			break
		}
		out = append(out, c.view(i))
	}
	return out
}

// Find moves to the first element satisfying pred. Realized elements are
// tested first, then the source is pulled one element at a time. On a
// miss the cursor does not move, but every pulled element stays buffered.
func (c *Cursor[T, V]) Find(pred func(T) bool) (V, bool) {
	for i, cl := range c.buf {
		if pred(cl.raw) {
			c.index = i
			return c.view(i), true
		}
	}
	for c.pull() {
		i := len(c.buf) - 1
		if pred(c.buf[i].raw) {
			c.index = i
			return c.view(i), true
		}
	}
	var zero V
	return zero, false
}

func (c *Cursor[T, V]) moveTo(i int) (V, bool) {
	if i < 0 || !c.ensure(i) {
		var zero V
		return zero, false
	}
	c.index = i
	return c.view(i), true
}

// ensure pulls until index i is realized or the source ends.
func (c *Cursor[T, V]) ensure(i int) bool {
	for i >= len(c.buf) {
		if !c.pull() {
			return false
		}
	}
	return i >= 0
}

// pull realizes one more element.
func (c *Cursor[T, V]) pull() bool {
	if c.exhausted {
		return false
	}
	v, ok := c.src.Next()
	if !ok {
		c.exhausted = true
		return false
	}
	c.buf = append(c.buf, &cell[T, V]{raw: v})
	return true
}

func (c *Cursor[T, V]) view(i int) V {
	cl := c.buf[i]
	if !cl.viewed {
		cl.view = c.transform(cl.raw)
		cl.viewed = true
	}
	return cl.view
}
