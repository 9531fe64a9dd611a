package surface

// Pool hands out scratch buffers for double-buffered copies. It is owned by
// the composition root and is not safe for concurrent use.
//
//	buf := pool.Acquire(w, h)
//	defer pool.Release(buf)
type Pool[T any] struct {
	alloc func(width, height int) T
	size  func(T) (int, int)
	free  []T
	inUse int
}

// NewPool creates a pool from an allocator and a size accessor.
func NewPool[T any](alloc func(width, height int) T, size func(T) (int, int)) *Pool[T] {
	return &Pool[T]{alloc: alloc, size: size}
}

// Acquire returns a free buffer of the exact size, allocating one if needed.
func (p *Pool[T]) Acquire(width, height int) T {
	for i, buf := range p.free {
		if w, h := p.size(buf); w == width && h == height {
			last := len(p.free) - 1
			p.free[i] = p.free[last]
			p.free = p.free[:last]
			p.inUse++
			return buf
		}
	}
	p.inUse++
	return p.alloc(width, height)
}

// Release returns a buffer to the pool.
func (p *Pool[T]) Release(buf T) {
	p.free = append(p.free, buf)
	if p.inUse > 0 {
		p.inUse--
	}
}

// Free returns the number of idle buffers.
func (p *Pool[T]) Free() int {
	return len(p.free)
}

// InUse returns the number of acquired, unreleased buffers.
func (p *Pool[T]) InUse() int {
	return p.inUse
}

// Drain drops every idle buffer, e.g. after a resize made them useless.
func (p *Pool[T]) Drain() {
	p.free = p.free[:0]
}
