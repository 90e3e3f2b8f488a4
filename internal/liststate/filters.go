package liststate

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// All is the UI placeholder meaning "no filter applied". It never reaches
// the backend query.
const All = "all"

// Reserved filter keys.
const (
	KeyPage      = "page"
	KeyLimit     = "limit"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc in any case.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	}
	return "", false
}

// FilterState is the complete filter/sort/page state of one list view.
// Values in Filters are strings, bools or All.
type FilterState struct {
	Page      int            `json:"page" yaml:"page"`
	Limit     int            `json:"limit" yaml:"limit"`
	SortBy    string         `json:"sortBy" yaml:"sortBy"`
	SortOrder SortOrder      `json:"sortOrder" yaml:"sortOrder"`
	Filters   map[string]any `json:"filters" yaml:"filters"`
}

// Clone returns a deep copy with page/limit/order clamped to valid values.
func (s FilterState) Clone() FilterState {
	out := s
	out.Filters = make(map[string]any, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = normalizeValue(v)
	}
	if out.Page < 1 {
		out.Page = 1
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	if _, ok := ParseSortOrder(string(out.SortOrder)); !ok {
		out.SortOrder = Desc
	}
	return out
}

// Update applies one filter change. Setting page touches nothing else; any
// other key also resets page to 1.
func (s FilterState) Update(key string, value any) FilterState {
	next := s.Clone()
	switch key {
	case KeyPage:
		if n, ok := toPositiveInt(value); ok {
			next.Page = n
		}
		return next
	case KeyLimit:
		if n, ok := toPositiveInt(value); ok {
			next.Limit = n
		}
	case KeySortBy:
		next.SortBy = strings.TrimSpace(fmt.Sprint(value))
	case KeySortOrder:
		if o, ok := ParseSortOrder(fmt.Sprint(value)); ok {
			next.SortOrder = o
		}
	default:
		next.Filters[key] = normalizeValue(value)
	}
	next.Page = 1
	return next
}

// Reset restores the view defaults.
func Reset(defaults FilterState) FilterState {
	return defaults.Clone()
}

// Equal compares two states by value.
func (s FilterState) Equal(o FilterState) bool {
	if s.Page != o.Page || s.Limit != o.Limit || s.SortBy != o.SortBy || s.SortOrder != o.SortOrder {
		return false
	}
	if len(s.Filters) != len(o.Filters) {
		return false
	}
	for k, v := range s.Filters {
		ov, ok := o.Filters[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Query builds the backend query parameters. Filters holding "" or All are
// omitted.
func (s FilterState) Query() url.Values {
	q := url.Values{}
	q.Set(KeyPage, strconv.Itoa(s.Page))
	q.Set(KeyLimit, strconv.Itoa(s.Limit))
	if s.SortBy != "" {
		q.Set(KeySortBy, s.SortBy)
	}
	if s.SortOrder != "" {
		q.Set(KeySortOrder, string(s.SortOrder))
	}

	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := queryValue(s.Filters[k]); ok {
			q.Set(k, v)
		}
	}
	return q
}

func queryValue(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		t = strings.TrimSpace(t)
		if t == "" || t == All {
			return "", false
		}
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	default:
		s := strings.TrimSpace(fmt.Sprint(t))
		if s == "" || s == All {
			return "", false
		}
		return s, true
	}
}

// normalizeValue keeps filter values comparable: strings, bools, and
// anything else as its string form.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func toPositiveInt(v any) (int, bool) {
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case float64:
		n = int(t)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		parsed, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(t)))
		if err != nil {
			return 0, false
		}
		n = parsed
	}
	if n < 1 {
		return 0, false
	}
	return n, true
}
