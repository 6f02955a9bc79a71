package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueDifferences(t *testing.T) {
	tests := []struct {
		name        string
		first       []int
		second      []int
		wantNew     []int
		wantMissing []int
	}{
		{"disjoint", []int{1, 2}, []int{3, 4}, []int{3, 4}, []int{1, 2}},
		{"overlap", []int{1, 2, 3}, []int{2, 3, 4}, []int{4}, []int{1}},
		{"equal", []int{1, 2}, []int{2, 1}, []int{}, []int{}},
		{"empty first", nil, []int{1}, []int{1}, []int{}},
		{"keeps order", []int{9, 1, 5}, []int{5, 7, 0}, []int{7, 0}, []int{9, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantNew, ValuesNewInSecond(tt.first, tt.second))
			assert.Equal(t, tt.wantMissing, ValuesMissingInSecond(tt.first, tt.second))

			got := ComputeDifferencesInSecond(tt.first, tt.second)
			assert.Equal(t, ValueDifferences[int]{New: tt.wantNew, Missing: tt.wantMissing}, got)
		})
	}
}

func TestKeyDifferences(t *testing.T) {
	first := map[string]int{"a": 1, "b": 2, "c": 3}
	second := map[string]int{"b": 2, "c": 4, "d": 5}

	assert.Equal(t, []string{"a"}, KeysMissingInSecond(first, second))
	assert.Equal(t, []string{"d"}, KeysMissingInSecond(second, first))
	assert.Equal(t, map[string]int{"c": 4}, DifferencesInCommonKeys(first, second))

	d := ComputeKeyDifferencesInSecond(first, second)
	assert.Equal(t, map[string]int{"d": 5}, d.New)
	assert.Equal(t, map[string]int{"a": 1}, d.Missing)
	assert.Equal(t, map[string]int{"c": 4}, d.Changed)
	assert.Equal(t, map[string]int{"b": 2}, d.Unchanged)

	keys := ComputeChangedKeysInSecond(first, second)
	assert.Equal(t, ChangedKeys[string]{
		New:       []string{"d"},
		Missing:   []string{"a"},
		Changed:   []string{"c"},
		Unchanged: []string{"b"},
	}, keys)
}

func TestKeyDifferences_Empty(t *testing.T) {
	keys := ComputeChangedKeysInSecond(map[int]string{}, map[int]string{})
	assert.Empty(t, keys.New)
	assert.Empty(t, keys.Missing)
	assert.Empty(t, keys.Changed)
	assert.Empty(t, keys.Unchanged)

	assert.Equal(t, []int{1, 2, 3}, KeysMissingInSecond(map[int]bool{3: true, 1: true, 2: false}, map[int]string{}))
}
