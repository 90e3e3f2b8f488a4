package liststate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleSortBinaryFlip(t *testing.T) {
	s := FilterState{Page: 3, Limit: 10, SortBy: "id", SortOrder: Desc}

	s = s.ToggleSort("id")
	assert.Equal(t, "id", s.SortBy)
	assert.Equal(t, Asc, s.SortOrder)
	assert.Equal(t, 1, s.Page)

	s = s.ToggleSort("id")
	assert.Equal(t, Desc, s.SortOrder)

	s = s.ToggleSort("id").ToggleSort("name")
	assert.Equal(t, "name", s.SortBy)
	assert.Equal(t, Desc, s.SortOrder)
}

func TestToggleSortNewFieldFromAsc(t *testing.T) {
	s := FilterState{Page: 7, Limit: 10, SortBy: "id", SortOrder: Asc}.ToggleSort("name")

	assert.Equal(t, FilterState{Page: 1, Limit: 10, SortBy: "name", SortOrder: Desc, Filters: map[string]any{}}, s)
}
