package deepcopy

import "github.com/elliotchance/orderedmap/v3"

// Copier is implemented by values that know how to clone themselves.
type Copier[T any] interface {
	DeepCopy() T
}

func Slice[T any](orig []T) []T {
	if orig == nil {
		return nil
	}
	c := make([]T, len(orig))
	for i, v := range orig {
		if copyable, ok := any(v).(Copier[T]); ok {
			c[i] = copyable.DeepCopy()
		} else {
			c[i] = v
		}
	}
	return c
}

func Map[K comparable, V any](orig map[K]V) map[K]V {
	if orig == nil {
		return nil
	}
	c := make(map[K]V, len(orig))
	for k, v := range orig {
		if copyable, ok := any(v).(Copier[V]); ok {
			c[k] = copyable.DeepCopy()
		} else {
			c[k] = v
		}
	}
	return c
}

func OrderedMap[K comparable, V any](orig *orderedmap.OrderedMap[K, V]) *orderedmap.OrderedMap[K, V] {
	c := orderedmap.NewOrderedMap[K, V]()
	if orig == nil || orig.Len() == 0 {
		return c
	}
	for pair := orig.Front(); pair != nil; pair = pair.Next() {
		if copyable, ok := any(pair.Value).(Copier[V]); ok {
			c.Set(pair.Key, copyable.DeepCopy())
		} else {
			c.Set(pair.Key, pair.Value)
		}
	}
	return c
}
