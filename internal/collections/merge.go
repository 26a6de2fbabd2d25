// Package collections holds small generic slice helpers.
package collections

// Identifiable is anything keyed by a string ID
type Identifiable interface {
	GetID() string
}

// MergeByID replaces the element of items with the same ID as item, or
// appends item when none matches. The order of the other elements is kept.
func MergeByID[T Identifiable](items []T, item T) []T {
	id := item.GetID()
	for i := range items {
		if items[i].GetID() == id {
			out := make([]T, len(items))
			copy(out, items)
			out[i] = item
			return out
		}
	}
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

// RemoveByID returns items without the element whose ID is id
func RemoveByID[T Identifiable](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.GetID() != id {
			out = append(out, it)
		}
	}
	return out
}

// IndexByID maps IDs to elements
func IndexByID[T Identifiable](items []T) map[string]T {
	idx := make(map[string]T, len(items))
	for _, it := range items {
		idx[it.GetID()] = it
	}
	return idx
}
