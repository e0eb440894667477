package crm

import (
	"strings"
	"testing"
)

func TestQuoteID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"0068b00001abcDEF", "'0068b00001abcDEF'"},
		{"", "''"},
		{"o'brien", `'o\'brien'`},
		{`a\b`, `'a\\b'`},
	}
	for _, tc := range cases {
		if got := QuoteID(tc.in); got != tc.want {
			t.Fatalf("QuoteID(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestIDList(t *testing.T) {
	got := IDList([]string{"a", "b", "c"})
	if got != "'a','b','c'" {
		t.Fatalf("IDList = %s", got)
	}
	if got := IDList(nil); got != "" {
		t.Fatalf("IDList(nil) = %q", got)
	}
}

func TestBatchIDs(t *testing.T) {
	ids := make([]string, 450)
	for i := range ids {
		ids[i] = "x"
	}
	batches := BatchIDs(ids, 200)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}
	for i, want := range []int{200, 200, 50} {
		if len(batches[i]) != want {
			t.Fatalf("batch %d has %d ids, want %d", i, len(batches[i]), want)
		}
	}

	if got := BatchIDs(nil, 200); got != nil {
		t.Fatalf("BatchIDs(nil) = %v", got)
	}
	if got := BatchIDs(ids[:5], 0); len(got) != 1 || len(got[0]) != 5 {
		t.Fatalf("size<=0 should produce one batch, got %v", got)
	}
}

func TestExpandIDs(t *testing.T) {
	q := expandIDs("SELECT Id FROM Task WHERE WhatId IN ({ids})", []string{"006A", "006B"})
	want := "SELECT Id FROM Task WHERE WhatId IN ('006A','006B')"
	if q != want {
		t.Fatalf("expandIDs = %s, want %s", q, want)
	}
	if strings.Contains(q, idsPlaceholder) {
		t.Fatal("placeholder left unexpanded")
	}
}
