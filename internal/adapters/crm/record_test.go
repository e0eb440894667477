package crm

import (
	"encoding/json"
	"testing"
)

func decodeRecord(t *testing.T, raw string) Record {
	t.Helper()
	var r Record
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return r
}

func TestRecordGetStringNestedPath(t *testing.T) {
	r := decodeRecord(t, `{
		"Id": "006A",
		"Owner": {"Email": "owner@example.com", "Name": "Dana Owner"},
		"Account": {"Name": null}
	}`)

	if got := r.GetString("Id"); got != "006A" {
		t.Fatalf("Id = %q", got)
	}
	if got := r.GetString("Owner", "Email"); got != "owner@example.com" {
		t.Fatalf("Owner.Email = %q", got)
	}
	// null leaf
	if got := r.GetString("Account", "Name"); got != "" {
		t.Fatalf("null leaf returned %q", got)
	}
	// absent intermediate
	if got := r.GetString("Account", "Parent", "Name"); got != "" {
		t.Fatalf("absent path returned %q", got)
	}
	// leaf is not a string
	if got := r.GetString("Owner"); got != "" {
		t.Fatalf("map leaf returned %q", got)
	}
}

func TestRecordGetFloat(t *testing.T) {
	r := decodeRecord(t, `{"Amount": 15000.5, "Probability": null}`)

	if v, ok := r.GetFloat("Amount"); !ok || v != 15000.5 {
		t.Fatalf("Amount = %v ok=%v", v, ok)
	}
	if _, ok := r.GetFloat("Probability"); ok {
		t.Fatal("null currency should report not ok")
	}
	if _, ok := r.GetFloat("Missing"); ok {
		t.Fatal("missing field should report not ok")
	}
}

func TestRecordGetRecord(t *testing.T) {
	r := decodeRecord(t, `{"Owner": {"Email": "o@example.com"}, "Account": null}`)

	if got := r.GetRecord("Owner").GetString("Email"); got != "o@example.com" {
		t.Fatalf("Owner.Email via GetRecord = %q", got)
	}
	// null aggregates collapse to an empty record, never a panic
	if got := r.GetRecord("Account").GetString("Name"); got != "" {
		t.Fatalf("null record leaf = %q", got)
	}
	if got := r.GetRecord("Missing").GetString("Name"); got != "" {
		t.Fatalf("missing record leaf = %q", got)
	}
}
