package policy

import "container/list"

// recency implements the Policy interface using a Least Recently Used
// strategy: reads and writes move a key to the tail of the access order, and
// the head is evicted first.
type recency struct {
	elems map[string]*list.Element
	order *list.List // front = least recently touched
}

// NewRecency creates a recency (LRU) policy.
func NewRecency() Policy {
	return &recency{
		elems: make(map[string]*list.Element),
		order: list.New(),
	}
}

// OnGet moves the key to the most recently touched position.
func (p *recency) OnGet(key string) {
	if e, ok := p.elems[key]; ok {
		p.order.MoveToBack(e)
	}
}

// OnSet records a write, inserting the key or refreshing its position.
func (p *recency) OnSet(key string) {
	if e, ok := p.elems[key]; ok {
		p.order.MoveToBack(e)
		return
	}
	p.elems[key] = p.order.PushBack(key)
}

// OnDelete drops the key from the access order.
func (p *recency) OnDelete(key string) {
	if e, ok := p.elems[key]; ok {
		p.order.Remove(e)
		delete(p.elems, key)
	}
}

// OnClear resets the access order.
func (p *recency) OnClear() {
	p.elems = make(map[string]*list.Element)
	p.order.Init()
}

// Evict removes and returns the least recently touched key.
func (p *recency) Evict() (string, bool) {
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
func (p *recency) Size() int {
	return p.order.Len()
}
