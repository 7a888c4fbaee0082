package registry

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrNoSuchElement is returned for names that are not registered.
var ErrNoSuchElement = errors.New("no such element")

type entry[T any] struct {
	name            string
	item            T
	caseInsensitive bool
	live            bool
}

// Holder maps names to ids and ids to items. Ids are dense and never handed
// to a different name, even after the original name is unregistered.
//
// A Holder is not safe for concurrent mutation. Readers may share a Holder
// that is no longer being written to.
type Holder[T any] struct {
	ids map[string]int
	// folded lists the live case-insensitive ids per lower-cased name, in
	// registration order.
	folded  map[string][]int
	entries []entry[T]
}

// NewHolder creates an empty holder.
func NewHolder[T any]() *Holder[T] {
	return &Holder[T]{
		ids:    make(map[string]int),
		folded: make(map[string][]int),
	}
}

// Put registers item under name and returns its id. A name seen before,
// including a retired one, gets its original id back.
func (h *Holder[T]) Put(name string, item T, caseInsensitive bool) int {
	id, seen := h.ids[name]
	if !seen {
		id = len(h.entries)
		h.ids[name] = id
		h.entries = append(h.entries, entry[T]{})
	}

	if prev := h.entries[id]; prev.live && prev.caseInsensitive {
		h.unfold(id, prev.name)
	}
	h.entries[id] = entry[T]{name: name, item: item, caseInsensitive: caseInsensitive, live: true}
	if caseInsensitive {
		key := strings.ToLower(name)
		h.folded[key] = append(h.folded[key], id)
	}
	return id
}

func (h *Holder[T]) unfold(id int, name string) {
	key := strings.ToLower(name)
	ids := slices.DeleteFunc(h.folded[key], func(other int) bool { return other == id })
	if len(ids) == 0 {
		delete(h.folded, key)
		return
	}
	h.folded[key] = ids
}

// Get looks name up by exact case first, then case-insensitively among
// entries registered that way.
func (h *Holder[T]) Get(name string) (T, bool) {
	id, ok := h.lookup(name)
	if !ok {
		var zero T
		return zero, false
	}
	return h.entries[id].item, true
}

// GetByID returns the live item with the given id.
func (h *Holder[T]) GetByID(id int) (T, bool) {
	if id < 0 || id >= len(h.entries) || !h.entries[id].live {
		var zero T
		return zero, false
	}
	return h.entries[id].item, true
}

// IDOf returns the id of name. Unknown names fail with ErrNoSuchElement.
func (h *Holder[T]) IDOf(name string) (int, error) {
	id, ok := h.lookup(name)
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrNoSuchElement, name)
	}
	return id, nil
}

func (h *Holder[T]) lookup(name string) (int, bool) {
	if id, ok := h.ids[name]; ok && h.entries[id].live {
		return id, true
	}
	for _, id := range h.folded[strings.ToLower(name)] {
		if e := h.entries[id]; e.live && e.caseInsensitive {
			return id, true
		}
	}
	return -1, false
}

// Unregister retires name. Putting the same name again reuses its id.
func (h *Holder[T]) Unregister(name string) {
	id, ok := h.ids[name]
	if !ok || !h.entries[id].live {
		return
	}
	h.retire(id)
}

func (h *Holder[T]) retire(id int) {
	e := h.entries[id]
	if e.caseInsensitive {
		h.unfold(id, e.name)
	}
	h.entries[id] = entry[T]{name: e.name}
}

// Tombstone returns a copy of h in which only the ids in keep stay
// resolvable. Every other name is retired but keeps its id for when it is
// put again. h itself is not modified.
func (h *Holder[T]) Tombstone(keep map[int]bool) *Holder[T] {
	out := h.Clone()
	for id, e := range out.entries {
		if e.live && !keep[id] {
			out.retire(id)
		}
	}
	return out
}

// Clone returns an independent copy of h.
func (h *Holder[T]) Clone() *Holder[T] {
	folded := make(map[string][]int, len(h.folded))
	for key, ids := range h.folded {
		folded[key] = slices.Clone(ids)
	}
	return &Holder[T]{
		ids:     maps.Clone(h.ids),
		folded:  folded,
		entries: append([]entry[T](nil), h.entries...),
	}
}

// All returns the live items in id order.
func (h *Holder[T]) All() []T {
	var out []T
	for _, e := range h.entries {
		if e.live {
			out = append(out, e.item)
		}
	}
	return out
}

// Names returns the live names in id order.
func (h *Holder[T]) Names() []string {
	var out []string
	for _, e := range h.entries {
		if e.live {
			out = append(out, e.name)
		}
	}
	return out
}

// Len is the number of live entries.
func (h *Holder[T]) Len() int {
	n := 0
	for _, e := range h.entries {
		if e.live {
			n++
		}
	}
	return n
}
