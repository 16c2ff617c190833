package policy

import "container/list"

// insertionOrder implements the Policy interface using a First In First Out
// strategy. The list order equals creation order: reads never move a key, and
// overwrites re-insert at the tail because the replacement entry carries a
// fresh creation time. Equal timestamps keep their original sequence, so the
// ordering is stable.
type insertionOrder struct {
	elems map[string]*list.Element
	order *list.List // front = oldest by creation
}

// NewInsertionOrder creates an insertion-order (FIFO) policy.
func NewInsertionOrder() Policy {
	return &insertionOrder{
		elems: make(map[string]*list.Element),
		order: list.New(),
	}
}

// OnGet is a no-op; reads do not affect insertion order.
func (p *insertionOrder) OnGet(string) {}

// OnSet records a write. An overwrite counts as a new insertion.
func (p *insertionOrder) OnSet(key string) {
	if e, ok := p.elems[key]; ok {
		p.order.MoveToBack(e)
		return
	}
	p.elems[key] = p.order.PushBack(key)
}

// OnDelete drops the key.
func (p *insertionOrder) OnDelete(key string) {
	if e, ok := p.elems[key]; ok {
		p.order.Remove(e)
		delete(p.elems, key)
	}
}

// OnClear resets the insertion order.
func (p *insertionOrder) OnClear() {
	p.elems = make(map[string]*list.Element)
	p.order.Init()
}

// Evict removes and returns the oldest key by creation.
func (p *insertionOrder) Evict() (string, bool) {
	e := p.order.Front()
	if e == nil {
		return "", false
	}
	key := e.Value.(string)
	p.order.Remove(e)
	delete(p.elems, key)
	return key, true
}

// Size returns the number of tracked keys.
func (p *insertionOrder) Size() int {
	return p.order.Len()
}
