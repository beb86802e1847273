package cmp

func SliceEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for nth, va := range a {
		if va != b[nth] {
			return false
		}
	}
	return true
}

func SliceEqWith[T any, U any](a []T, b []U, pred func(a T, b U) bool) bool {
	if len(a) != len(b) {
		return false
	}

	for nth := range a {
		if !pred(a[nth], b[nth]) {
			return false
		}
	}

	return true
}

// Check two slices have same contents, ignoring ordering.
//
// Example
//
//	SliceContentEq(
//		[]int{1, 2, 3},
//		[]int{3, 1, 2},
//	)  // => true
//
//	SliceContentEq(
//		[]int{1, 2, 2},
//		[]int{1, 1, 2},
//	)  // => false. multiplicity matters.
func SliceContentEq[T comparable](a []T, b []T) bool {
	if len(a) != len(b) {
		return false
	}

	rest := make(map[T]int, len(a))
	for _, va := range a {
		rest[va] += 1
	}
	for _, vb := range b {
		rest[vb] -= 1
		if rest[vb] < 0 {
			return false
		}
	}
	return true
}
