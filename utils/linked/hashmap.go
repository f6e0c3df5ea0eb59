package linked

// Hashmap is a map that also preserves insertion order, backing a history
// Cache's per-key instance table: TRANSIENT_LOCAL replay and oldest-
// instance eviction both need to walk instances in the order they were
// first admitted, which a bare Go map cannot give.
type Hashmap[K comparable, V any] struct {
	m    map[K]*hashmapEntry[K, V]
	list *List[*hashmapEntry[K, V]]
}

type hashmapEntry[K comparable, V any] struct {
	key   K
	value V
	node  *ListNode[*hashmapEntry[K, V]]
}

// NewHashmap returns an empty ordered map.
func NewHashmap[K comparable, V any]() *Hashmap[K, V] {
	return &Hashmap[K, V]{
		m:    make(map[K]*hashmapEntry[K, V]),
		list: NewList[*hashmapEntry[K, V]](),
	}
}

// Put inserts key at the back of the insertion order, or updates its value
// in place if key is already present (its position does not move).
func (h *Hashmap[K, V]) Put(key K, value V) {
	if entry, exists := h.m[key]; exists {
		entry.value = value
		return
	}

	entry := &hashmapEntry[K, V]{
		key:   key,
		value: value,
	}
	entry.node = h.list.PushBack(entry)
	h.m[key] = entry
}

// Get returns key's value and whether it was present.
func (h *Hashmap[K, V]) Get(key K) (V, bool) {
	if entry, exists := h.m[key]; exists {
		return entry.value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of entries.
func (h *Hashmap[K, V]) Len() int {
	return h.list.Len()
}

// HashmapIterator walks a Hashmap in insertion order.
type HashmapIterator[K comparable, V any] struct {
	current *ListNode[*hashmapEntry[K, V]]
	key     K
	value   V
}

// NewIterator returns an iterator positioned before the oldest entry.
func (h *Hashmap[K, V]) NewIterator() *HashmapIterator[K, V] {
	return &HashmapIterator[K, V]{
		current: h.list.Front(),
	}
}

// Next advances the iterator, reporting whether an entry was available.
func (it *HashmapIterator[K, V]) Next() bool {
	if it.current == nil {
		return false
	}
	entry := it.current.Value
	it.key = entry.key
	it.value = entry.value
	it.current = it.current.Next
	return true
}

// Value returns the entry the last call to Next advanced onto.
func (it *HashmapIterator[K, V]) Value() V {
	return it.value
}
