package liststate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseState() FilterState {
	return FilterState{
		Page:      4,
		Limit:     10,
		SortBy:    "id",
		SortOrder: Desc,
		Filters:   map[string]any{"search": "a", "isActive": All, "groupId": All},
	}
}

func TestUpdateFilterResetsPage(t *testing.T) {
	next := baseState().Update("search", "b")

	assert.Equal(t, 1, next.Page)
	assert.Equal(t, "b", next.Filters["search"])
}

func TestUpdatePageKeepsOtherFields(t *testing.T) {
	start := baseState().Update("search", "b")

	next := start.Update(KeyPage, 4)

	assert.Equal(t, 4, next.Page)
	assert.Equal(t, "b", next.Filters["search"])
	assert.Equal(t, start.Limit, next.Limit)
	assert.Equal(t, start.SortBy, next.SortBy)
	assert.Equal(t, start.SortOrder, next.SortOrder)
}

func TestUpdateSameValueStillResetsPage(t *testing.T) {
	next := baseState().Update("search", "a")

	assert.Equal(t, 1, next.Page)
}

func TestUpdateReservedKeys(t *testing.T) {
	s := baseState()

	assert.Equal(t, 25, s.Update(KeyLimit, "25").Limit)
	assert.Equal(t, 1, s.Update(KeyLimit, "25").Page)
	assert.Equal(t, 10, s.Update(KeyLimit, "lots").Limit, "unparseable limit keeps the prior value")
	assert.Equal(t, 10, s.Update(KeyLimit, -3).Limit)
	assert.Equal(t, Asc, s.Update(KeySortOrder, "ASC").SortOrder)
	assert.Equal(t, Desc, s.Update(KeySortOrder, "sideways").SortOrder)
	assert.Equal(t, "name", s.Update(KeySortBy, "name").SortBy)
	assert.Equal(t, 4, s.Update(KeyPage, "zero").Page)
	assert.Equal(t, 4, s.Update(KeyPage, 0).Page)
}

func TestUpdateDoesNotMutateReceiver(t *testing.T) {
	s := baseState()
	_ = s.Update("search", "changed")

	assert.Equal(t, "a", s.Filters["search"])
	assert.Equal(t, 4, s.Page)
}

func TestResetRestoresDefaults(t *testing.T) {
	defaults := FilterState{Limit: 10, SortBy: "createdAt", SortOrder: Desc, Filters: map[string]any{"search": "", "isActive": All}}

	changed := Reset(defaults).Update("search", "shoes").Update(KeyPage, 3).ToggleSort("name")
	back := Reset(defaults)

	assert.False(t, changed.Equal(back))
	assert.Equal(t, 1, back.Page)
	assert.Equal(t, "createdAt", back.SortBy)
	assert.Equal(t, Desc, back.SortOrder)
	assert.Equal(t, "", back.Filters["search"])
	assert.Equal(t, "", defaults.Filters["search"], "defaults must not be shared with derived states")
}

func TestQueryOmitsAllAndEmpty(t *testing.T) {
	s := FilterState{
		Page:      2,
		Limit:     10,
		SortBy:    "name",
		SortOrder: Asc,
		Filters: map[string]any{
			"search":     "",
			"isActive":   All,
			"isFeatured": true,
			"type":       "select",
			"groupId":    "  ",
			"status":     false,
		},
	}

	q := s.Query()

	for _, key := range []string{"search", "isActive", "groupId"} {
		_, ok := q[key]
		assert.False(t, ok, "query must not carry %s", key)
	}
	assert.Equal(t, "2", q.Get(KeyPage))
	assert.Equal(t, "10", q.Get(KeyLimit))
	assert.Equal(t, "name", q.Get(KeySortBy))
	assert.Equal(t, "asc", q.Get(KeySortOrder))
	assert.Equal(t, "true", q.Get("isFeatured"))
	assert.Equal(t, "false", q.Get("status"))
	assert.Equal(t, "select", q.Get("type"))
}

func TestQueryOmitsAllForEveryFilterField(t *testing.T) {
	s := FilterState{Page: 1, Limit: 10, Filters: map[string]any{}}
	for _, key := range []string{"isActive", "isFeatured", "status", "type", "rating", "role"} {
		s = s.Update(key, All)
	}

	q := s.Query()

	assert.Len(t, q, 3, "only page, limit and sortOrder survive: %v", q)
}

func TestEqual(t *testing.T) {
	a := baseState()
	b := baseState()
	assert.True(t, a.Equal(b))

	b.Filters["search"] = "z"
	assert.False(t, a.Equal(b))

	c := baseState()
	c.Filters["extra"] = ""
	assert.False(t, a.Equal(c))
}
