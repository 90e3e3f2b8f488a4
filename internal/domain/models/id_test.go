package models

import (
	"encoding/json"
	"testing"
)

func TestFlexIDAcceptsNumbersAndStrings(t *testing.T) {
	var brands []Brand
	raw := []byte(`[{"id":7,"name":"Nike"},{"id":"b-2","name":"Puma"},{"id":null,"slug":"anon"}]`)
	if err := json.Unmarshal(raw, &brands); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if brands[0].RecordID() != "7" {
		t.Fatalf("numeric id decoded as %q", brands[0].RecordID())
	}
	if brands[1].RecordID() != "b-2" {
		t.Fatalf("string id decoded as %q", brands[1].RecordID())
	}
	if brands[2].RecordLabel() != "anon" {
		t.Fatalf("label fallback got %q", brands[2].RecordLabel())
	}
}

func TestFlexIDMarshalKeepsNumbers(t *testing.T) {
	out, err := json.Marshal(map[string]FlexID{"a": "12", "b": "x1"})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(out) != `{"a":12,"b":"x1"}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestRecordLabels(t *testing.T) {
	c := Customer{ID: "3", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if got := c.RecordLabel(); got != "Ada Lovelace" {
		t.Fatalf("customer label got %q", got)
	}
	if got := (Customer{ID: "4", Email: "x@example.com"}).RecordLabel(); got != "x@example.com" {
		t.Fatalf("customer email fallback got %q", got)
	}
	if got := (Review{ID: "9"}).RecordLabel(); got != "review #9" {
		t.Fatalf("review label got %q", got)
	}
}

func TestRowRecord(t *testing.T) {
	var rows []Row
	if err := json.Unmarshal([]byte(`[{"id":1000000,"title":"Spring sale"},{"id":"x","code":"ZZ"}]`), &rows); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if rows[0].RecordID() != "1000000" || rows[0].RecordLabel() != "Spring sale" {
		t.Fatalf("unexpected first row %q %q", rows[0].RecordID(), rows[0].RecordLabel())
	}
	if rows[1].RecordLabel() != "ZZ" {
		t.Fatalf("unexpected second label %q", rows[1].RecordLabel())
	}
}
