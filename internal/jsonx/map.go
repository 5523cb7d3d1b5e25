package jsonx

// MapObjects converts every object element of arr with fn.
// Non-object elements and elements fn rejects are dropped; the result is never nil.
func MapObjects[T any](arr Node, fn func(Node) (T, bool)) []T {
	elems := arr.Array()
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		if !e.IsObject() {
			continue
		}
		if rec, ok := fn(e); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Required fetches string fields that must all be present for a record to be kept.
func Required(obj Node, keys ...string) ([]string, bool) {
	vals := make([]string, len(keys))
	for i, k := range keys {
		s, ok := obj.Get(k).Text()
		if !ok {
			return nil, false
		}
		vals[i] = s
	}
	return vals, true
}
