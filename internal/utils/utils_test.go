package utils

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFormatCount(t *testing.T) {
	cases := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for in, want := range cases {
		if got := FormatCount(in); got != want {
			t.Fatalf("FormatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitListAndTruncate(t *testing.T) {
	got := SplitList(" Admin, owner;;staff\n")
	if len(got) != 3 || got[0] != "admin" || got[2] != "staff" {
		t.Fatalf("unexpected split result %v", got)
	}
	if Truncate("abcdefghij", 6) != "abc..." {
		t.Fatalf("unexpected truncate %q", Truncate("abcdefghij", 6))
	}
	if Truncate("short", 10) != "short" {
		t.Fatalf("short strings must stay untouched")
	}
}

func TestLogEventFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	SetLogger(zap.New(core))
	defer SetLogger(nil)

	LogEvent(" rid-1 ", "views", "mount", "view mounted", zap.String("entity", "brands"))
	LogError("rid-2", "views", "delete", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["module"] != "VIEWS" || ctx["request_id"] != "rid-1" || ctx["entity"] != "brands" {
		t.Fatalf("unexpected fields %v", ctx)
	}
	if entries[1].Level != zap.ErrorLevel {
		t.Fatalf("expected error level, got %s", entries[1].Level)
	}
}
