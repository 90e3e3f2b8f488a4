package liststate

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// DefaultLimit is the page size used when a view or a response gives none.
const DefaultLimit = 10

// Meta is the canonical pagination metadata of one list page.
type Meta struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Result is one normalized list page.
type Result[T any] struct {
	Items []T  `json:"items"`
	Meta  Meta `json:"meta"`
}

// Shape identifies which pagination envelope a list response used.
type Shape int

const (
	// ShapeBare is a bare array or {data} without paging info.
	ShapeBare Shape = iota
	// ShapeNested is {data, meta:{currentPage,...}}.
	ShapeNested
	// ShapeFlat is {data, total, page, limit, totalPages}.
	ShapeFlat
)

func (s Shape) String() string {
	switch s {
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	default:
		return "bare"
	}
}

type envelope interface {
	shape() Shape
	data() json.RawMessage
	meta(limit int, count int) Meta
}

type nestedEnvelope struct {
	items                                             json.RawMessage
	currentPage, totalPages, totalItems, itemsPerPage *int
}

func (e nestedEnvelope) shape() Shape          { return ShapeNested }
func (e nestedEnvelope) data() json.RawMessage { return e.items }
func (e nestedEnvelope) meta(limit, _ int) Meta {
	return Meta{
		CurrentPage:  intOr(e.currentPage, 1),
		TotalPages:   intOr(e.totalPages, 1),
		TotalItems:   intOr(e.totalItems, 0),
		ItemsPerPage: intOr(e.itemsPerPage, limit),
	}
}

type flatEnvelope struct {
	items                         json.RawMessage
	total, page, limit, totalPage int
}

func (e flatEnvelope) shape() Shape          { return ShapeFlat }
func (e flatEnvelope) data() json.RawMessage { return e.items }
func (e flatEnvelope) meta(_, _ int) Meta {
	return Meta{
		CurrentPage:  e.page,
		TotalPages:   e.totalPage,
		TotalItems:   e.total,
		ItemsPerPage: e.limit,
	}
}

type bareEnvelope struct {
	items json.RawMessage
}

func (e bareEnvelope) shape() Shape          { return ShapeBare }
func (e bareEnvelope) data() json.RawMessage { return e.items }
func (e bareEnvelope) meta(limit, count int) Meta {
	return Meta{CurrentPage: 1, TotalPages: 1, TotalItems: count, ItemsPerPage: limit}
}

// Classify reports the envelope shape of a raw list response.
func Classify(raw []byte) Shape {
	return decodeEnvelope(raw).shape()
}

// Normalize reconciles a raw list response into a Result. It never fails:
// missing or malformed fields fall back to defaults and items that do not
// decode into T are skipped.
func Normalize[T any](raw []byte, requestedLimit int) Result[T] {
	if requestedLimit < 1 {
		requestedLimit = DefaultLimit
	}
	env := decodeEnvelope(raw)
	items := decodeItems[T](env.data())
	meta := env.meta(requestedLimit, len(items))
	return Result[T]{Items: items, Meta: sanitizeMeta(meta, requestedLimit)}
}

func decodeEnvelope(raw []byte) envelope {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return bareEnvelope{}
	}
	if trimmed[0] == '[' {
		return bareEnvelope{items: trimmed}
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &body); err != nil {
		return bareEnvelope{}
	}
	data := body["data"]

	if rawMeta, ok := body["meta"]; ok {
		var m map[string]json.RawMessage
		if json.Unmarshal(rawMeta, &m) == nil && hasKeys(m, "currentPage") {
			return nestedEnvelope{
				items:        data,
				currentPage:  numberField(m, "currentPage"),
				totalPages:   numberField(m, "totalPages"),
				totalItems:   numberField(m, "totalItems"),
				itemsPerPage: numberField(m, "itemsPerPage"),
			}
		}
	}

	if hasKeys(body, "total", "page", "limit", "totalPages") {
		return flatEnvelope{
			items:     data,
			total:     intOr(numberField(body, "total"), 0),
			page:      intOr(numberField(body, "page"), 1),
			limit:     intOr(numberField(body, "limit"), 0),
			totalPage: intOr(numberField(body, "totalPages"), 1),
		}
	}

	return bareEnvelope{items: data}
}

func decodeItems[T any](raw json.RawMessage) []T {
	out := []T{}
	if len(raw) == 0 {
		return out
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out
	}
	for _, el := range elems {
		var item T
		if err := json.Unmarshal(el, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

// hasKeys reports whether every key is present. A present but malformed value
// still selects the shape; the field alone falls back to its default.
func hasKeys(m map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// numberField returns nil when the key is absent, null or not numeric.
// Numeric strings ("3") are accepted since some endpoints quote them.
func numberField(m map[string]json.RawMessage, key string) *int {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func sanitizeMeta(m Meta, limit int) Meta {
	if m.CurrentPage < 1 {
		m.CurrentPage = 1
	}
	if m.TotalPages < 1 {
		m.TotalPages = 1
	}
	if m.TotalItems < 0 {
		m.TotalItems = 0
	}
	if m.ItemsPerPage < 1 {
		m.ItemsPerPage = limit
	}
	return m
}
