package persist

import (
	"cmp"
	"slices"
	"strings"
)

// pendingSet holds the services that still have participants to load,
// ordered by scope depth and then path. Ancestors therefore always sort
// before their descendants.
type pendingSet struct {
	items []*Service
	index map[*Service]struct{}
}

func newPendingSet() *pendingSet {
	return &pendingSet{index: make(map[*Service]struct{})}
}

func compareServices(a, b *Service) int {
	if c := cmp.Compare(a.depth, b.depth); c != 0 {
		return c
	}
	return strings.Compare(a.path, b.path)
}

func (p *pendingSet) add(s *Service) {
	if _, ok := p.index[s]; ok {
		return
	}
	p.index[s] = struct{}{}
	i, _ := slices.BinarySearchFunc(p.items, s, compareServices)
	p.items = slices.Insert(p.items, i, s)
}

func (p *pendingSet) first() (*Service, bool) {
	if len(p.items) == 0 {
		return nil, false
	}
	return p.items[0], true
}

func (p *pendingSet) remove(s *Service) {
	if _, ok := p.index[s]; !ok {
		return
	}
	delete(p.index, s)
	i := slices.Index(p.items, s)
	if i >= 0 {
		p.items = slices.Delete(p.items, i, i+1)
	}
}

func (p *pendingSet) clear() {
	p.items = nil
	p.index = make(map[*Service]struct{})
}
