package physac

import "fmt"

type bodySlot struct {
	body       Body
	generation uint32
	alive      bool
}

// BodyPool is a fixed-capacity store of bodies addressed by generation-counted handles.
// Slots never move, so pointers into the pool stay valid until the slot is freed.
type BodyPool struct {
	slots []bodySlot
	free  []uint32 // stack; the most recently freed slot is reused first
	order []uint32 // live slots in creation order
}

func NewBodyPool(capacity int) *BodyPool {
	p := &BodyPool{
		slots: make([]bodySlot, capacity),
		free:  make([]uint32, 0, capacity),
		order: make([]uint32, 0, capacity),
	}
	for i := range p.slots {
		p.slots[i].generation = 1
	}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, uint32(i))
	}
	return p
}

func (p *BodyPool) Capacity() int {
	return len(p.slots)
}

func (p *BodyPool) Len() int {
	return len(p.order)
}

func (p *BodyPool) Available() int {
	return len(p.free)
}

func (p *BodyPool) insert(body Body) (Handle, error) {
	if len(p.free) == 0 {
		return Handle{}, fmt.Errorf("%w: capacity %d reached", ErrPoolExhausted, len(p.slots))
	}
	index := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	s := &p.slots[index]
	h := Handle{Index: index, Generation: s.generation}
	body.ID = h
	s.body = body
	s.alive = true
	p.order = append(p.order, index)
	return h, nil
}

func (p *BodyPool) lookup(h Handle) *Body {
	if h.Generation == 0 || int(h.Index) >= len(p.slots) {
		return nil
	}
	s := &p.slots[h.Index]
	if !s.alive || s.generation != h.Generation {
		return nil
	}
	return &s.body
}

// Get returns a copy of the body behind h.
func (p *BodyPool) Get(h Handle) (Body, bool) {
	b := p.lookup(h)
	if b == nil {
		return Body{}, false
	}
	return *b, true
}

func (p *BodyPool) remove(h Handle) error {
	if p.lookup(h) == nil {
		return fmt.Errorf("%w: handle %s", ErrNotFound, h)
	}
	p.release(h.Index)

	for i, idx := range p.order {
		if idx == h.Index {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

func (p *BodyPool) release(index uint32) {
	s := &p.slots[index]
	s.alive = false
	s.body = Body{}
	s.generation++
	if s.generation == 0 {
		s.generation = 1
	}
	p.free = append(p.free, index)
}

// clear frees every live body, newest first, so the free stack hands slots out in
// ascending order again.
func (p *BodyPool) clear() {
	for i := len(p.order) - 1; i >= 0; i-- {
		p.release(p.order[i])
	}
	p.order = p.order[:0]
}

// At returns the handle of the i-th live body in creation order.
func (p *BodyPool) At(i int) (Handle, bool) {
	if i < 0 || i >= len(p.order) {
		return Handle{}, false
	}
	return p.slots[p.order[i]].body.ID, true
}

func (p *BodyPool) at(i int) *Body {
	return &p.slots[p.order[i]].body
}
