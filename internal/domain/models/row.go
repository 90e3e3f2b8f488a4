package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Row is an untyped record for views configured without a dedicated model.
type Row map[string]any

func (r Row) RecordID() string { return rowString(r["id"]) }

func (r Row) RecordLabel() string {
	return firstNonEmpty(rowString(r["name"]), rowString(r["title"]), rowString(r["code"]), rowString(r["email"]), r.RecordID())
}

func rowString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
