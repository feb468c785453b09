package selection

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/riskibarqy/whereismatch/internal/domain/catalog"
)

// Change is delivered to subscribers after every mutation.
type Change struct {
	Dimension catalog.Dimension
	Selected  []int64
}

// Set is the multi-select state of one filter dimension: a universe of items
// and the subset of ids the user picked. Selected ids may reference items
// outside the current universe until a pruning refresh removes them.
type Set struct {
	dim catalog.Dimension

	mu        sync.RWMutex
	items     []catalog.Item
	selected  map[int64]struct{}
	listeners map[int]func(Change)
	nextID    int
}

func NewSet(dim catalog.Dimension) *Set {
	return &Set{
		dim:       dim,
		selected:  make(map[int64]struct{}),
		listeners: make(map[int]func(Change)),
	}
}

func (s *Set) Dimension() catalog.Dimension {
	return s.dim
}

// SetItems replaces the universe. An empty selection is seeded from
// restoreIDs; pruneMissing then drops ids that are not in items.
func (s *Set) SetItems(items []catalog.Item, pruneMissing bool, restoreIDs []int64) {
	s.mu.Lock()
	s.items = slices.Clone(items)
	if len(s.selected) == 0 {
		for _, id := range restoreIDs {
			s.selected[id] = struct{}{}
		}
	}
	if pruneMissing {
		present := make(map[int64]struct{}, len(items))
		for _, item := range items {
			present[item.ID] = struct{}{}
		}
		for id := range s.selected {
			if _, ok := present[id]; !ok {
				delete(s.selected, id)
			}
		}
	}
	change, listeners := s.changeLocked()
	s.mu.Unlock()

	notify(listeners, change)
}

// Toggle flips membership of id.
func (s *Set) Toggle(id int64) {
	s.mu.Lock()
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
	} else {
		s.selected[id] = struct{}{}
	}
	change, listeners := s.changeLocked()
	s.mu.Unlock()

	notify(listeners, change)
}

// SelectIfAbsent adds id and never removes it. It reports whether the id was
// newly added; subscribers are notified either way.
func (s *Set) SelectIfAbsent(id int64) bool {
	s.mu.Lock()
	_, had := s.selected[id]
	s.selected[id] = struct{}{}
	change, listeners := s.changeLocked()
	s.mu.Unlock()

	notify(listeners, change)
	return !had
}

// Clear empties the selection.
func (s *Set) Clear() {
	s.mu.Lock()
	clear(s.selected)
	change, listeners := s.changeLocked()
	s.mu.Unlock()

	notify(listeners, change)
}

// Selected reports whether id is picked.
func (s *Set) Selected(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the picked ids ascending.
func (s *Set) SelectedIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIDsLocked()
}

// SelectedItems returns picked items in universe order.
func (s *Set) SelectedItems() []catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Item, 0, len(s.selected))
	for _, item := range s.items {
		if _, ok := s.selected[item.ID]; ok {
			out = append(out, item)
		}
	}
	return out
}

func (s *Set) Items() []catalog.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// VisibleItems yields the items whose name contains the trimmed search term,
// ignoring case, in universe order. The universe is captured when the
// sequence is created and every iteration starts from the beginning.
func (s *Set) VisibleItems(search string) iter.Seq[catalog.Item] {
	items := s.Items()
	needle := strings.ToLower(strings.TrimSpace(search))

	return func(yield func(catalog.Item) bool) {
		for _, item := range items {
			if needle != "" && !strings.Contains(strings.ToLower(item.Name), needle) {
				continue
			}
			if !yield(item) {
				return
			}
		}
	}
}

// SoleVisible returns the only visible item for search, if exactly one
// matches.
func (s *Set) SoleVisible(search string) (catalog.Item, bool) {
	var (
		found catalog.Item
		count int
	)
	for item := range s.VisibleItems(search) {
		found = item
		count++
		if count > 1 {
			return catalog.Item{}, false
		}
	}
	return found, count == 1
}

// Subscribe registers fn for change notifications and returns its cancel
// function. Listeners run synchronously on the mutating goroutine, once per
// mutation, in registration order.
func (s *Set) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Set) selectedIDsLocked() []int64 {
	out := make([]int64, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (s *Set) changeLocked() (Change, []func(Change)) {
	listeners := make([]func(Change), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	return Change{Dimension: s.dim, Selected: s.selectedIDsLocked()}, listeners
}

func notify(listeners []func(Change), change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}
