package diff

import (
	"cmp"
	"maps"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// ValuesMissingInSecond returns the values of first that second lacks, in the
// order of first.
func ValuesMissingInSecond[T comparable](first, second []T) []T {
	present := mapset.NewThreadUnsafeSet(second...)
	out := []T{}
	for _, v := range first {
		if !present.Contains(v) {
			out = append(out, v)
		}
	}
	return out
}

// ValuesNewInSecond returns the values of second that first lacks, in the
// order of second.
func ValuesNewInSecond[T comparable](first, second []T) []T {
	return ValuesMissingInSecond(second, first)
}

// ValueDifferences is the result of ComputeDifferencesInSecond.
type ValueDifferences[T comparable] struct {
	New     []T
	Missing []T
}

func ComputeDifferencesInSecond[T comparable](first, second []T) ValueDifferences[T] {
	return ValueDifferences[T]{
		New:     ValuesNewInSecond(first, second),
		Missing: ValuesMissingInSecond(first, second),
	}
}

// KeysMissingInSecond returns the keys of first that second lacks, sorted.
func KeysMissingInSecond[K cmp.Ordered, A, B any](first map[K]A, second map[K]B) []K {
	out := []K{}
	for k := range first {
		if _, ok := second[k]; !ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// DifferencesInCommonKeys returns the entries of second whose key is in
// first with a different value.
func DifferencesInCommonKeys[K comparable, V comparable](first, second map[K]V) map[K]V {
	out := make(map[K]V)
	for k, v := range second {
		if fv, ok := first[k]; ok && fv != v {
			out[k] = v
		}
	}
	return out
}

// KeyDifferences classifies the entries of two maps by key.
type KeyDifferences[K comparable, V any] struct {
	New       map[K]V
	Missing   map[K]V
	Changed   map[K]V
	Unchanged map[K]V
}

// ComputeKeyDifferencesInSecond reports what changed going from first to
// second. New, Changed and Unchanged hold values of second, Missing values of
// first.
func ComputeKeyDifferencesInSecond[K comparable, V comparable](first, second map[K]V) KeyDifferences[K, V] {
	out := KeyDifferences[K, V]{
		New:       make(map[K]V),
		Missing:   make(map[K]V),
		Changed:   make(map[K]V),
		Unchanged: make(map[K]V),
	}
	for k, v := range second {
		fv, ok := first[k]
		switch {
		case !ok:
			out.New[k] = v
		case fv != v:
			out.Changed[k] = v
		default:
			out.Unchanged[k] = v
		}
	}
	for k, v := range first {
		if _, ok := second[k]; !ok {
			out.Missing[k] = v
		}
	}
	return out
}

// ChangedKeys is ComputeKeyDifferencesInSecond reduced to sorted key lists.
type ChangedKeys[K cmp.Ordered] struct {
	New       []K
	Missing   []K
	Changed   []K
	Unchanged []K
}

func ComputeChangedKeysInSecond[K cmp.Ordered, V comparable](first, second map[K]V) ChangedKeys[K] {
	d := ComputeKeyDifferencesInSecond(first, second)
	return ChangedKeys[K]{
		New:       sortedKeys(d.New),
		Missing:   sortedKeys(d.Missing),
		Changed:   sortedKeys(d.Changed),
		Unchanged: sortedKeys(d.Unchanged),
	}
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	return slices.Sorted(maps.Keys(m))
}
