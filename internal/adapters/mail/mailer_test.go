package mail

import (
	"context"
	"testing"
)

func TestDryRunRecordsWithoutSending(t *testing.T) {
	d := NewDryRun()
	msg := Message{
		To:       []string{"owner@example.com"},
		CC:       []string{"boss@example.com"},
		Subject:  "Weekly Opportunity Report",
		TextBody: "plain",
		HTMLBody: "<p>html</p>",
	}
	if err := d.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := d.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(d.Sent) != 2 {
		t.Fatalf("recorded %d messages, want 2", len(d.Sent))
	}
	if d.Sent[0].To[0] != "owner@example.com" || d.Sent[0].Subject != "Weekly Opportunity Report" {
		t.Fatalf("recorded message mangled: %+v", d.Sent[0])
	}
}
