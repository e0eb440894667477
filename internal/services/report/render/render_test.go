package render

import (
	"strings"
	"testing"

	"oppwatch/internal/services/report/domain"
)

func amount(v float64) *float64 { return &v }

func sampleRows() []domain.Row {
	return []domain.Row{
		{
			Opp: domain.Opportunity{
				ID: "006AAA", Name: "Stale Deal", Stage: "Prospecting",
				Amount:  amount(1250000),
				Account: domain.AccountRef{Name: "Acme", Email: "buyer@acme.test"},
			},
			Stats: domain.TouchStats{Count: 0, Stale: true},
		},
		{
			Opp: domain.Opportunity{
				ID: "006BBB", Name: "Hot Deal", Stage: "Negotiation",
				Account: domain.AccountRef{Name: "Globex"},
			},
			Stats: domain.TouchStats{Count: 6, LastTouch: "2026-08-20T10:00:00.000+00:00"},
		},
	}
}

func TestRenderSubjectAndSections(t *testing.T) {
	r := New()
	subject, html, text, err := r.Render(sampleRows(), "August 26, 2026", "https://eu1.example.test", "Dana")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Weekly Opportunity Report - August 26, 2026 (2 opportunities)" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{
		"Hi Dana,",
		"Needs Attention",
		"Active Opportunities",
		"https://eu1.example.test/lightning/r/Opportunity/006AAA/view",
		"$1,250,000",
		"Never",
		"2026-08-20",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q", want)
		}
	}
	if !strings.Contains(text, "Stale Deal") || !strings.Contains(text, "6 touches") {
		t.Fatalf("text alternative incomplete:\n%s", text)
	}
}

func TestRenderEmptyState(t *testing.T) {
	r := New()
	subject, html, _, err := r.Render(nil, "August 26, 2026", "https://eu1.example.test", "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(subject, "(0 opportunities)") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(html, "no open opportunities") {
		t.Fatal("empty state body missing")
	}
	if strings.Contains(html, "<table") {
		t.Fatal("empty report should carry no table")
	}
	if !strings.Contains(html, "Hi there,") {
		t.Fatal("blank owner name should fall back to a generic greeting")
	}
}

func TestRenderNullAmountAndEscaping(t *testing.T) {
	rows := []domain.Row{{
		Opp: domain.Opportunity{
			ID: "006CCC", Name: "Deal <script>alert(1)</script>",
			Account: domain.AccountRef{Name: "O'Brien & Sons"},
		},
		Stats: domain.TouchStats{Count: 1, LastTouch: "2026-08-01T00:00:00.000+00:00"},
	}}
	r := New()
	_, html, _, err := r.Render(rows, "August 26, 2026", "https://eu1.example.test", "Dana")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "N/A") {
		t.Fatal("nil amount should render as N/A")
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("record content must be escaped")
	}
	if !strings.Contains(html, "O&#39;Brien &amp; Sons") {
		t.Fatal("entity escaping missing for account name")
	}
}
