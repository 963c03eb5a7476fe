package observability

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestBuildAuditEventIncludesRequiredFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.Header.Set("X-Request-Id", "req-test-1")
	req.RemoteAddr = "127.0.0.1:12345"

	ev := BuildAuditEvent(req, AuditInput{
		EventName:   "auth.login",
		ActorUserID: "user-1",
		TargetType:  "user",
		TargetID:    "user-1",
		Action:      "login",
		Outcome:     "success",
		Reason:      "credentials_valid",
	})

	if ev.EventVersion != 1 {
		t.Fatalf("expected event version 1, got %d", ev.EventVersion)
	}
	if ev.ActorIP != "127.0.0.1" {
		t.Fatalf("unexpected actor ip: %s", ev.ActorIP)
	}
	if ev.RequestID != "req-test-1" {
		t.Fatalf("unexpected request id: %s", ev.RequestID)
	}
	if _, err := time.Parse(time.RFC3339, ev.TS); err != nil {
		t.Fatalf("expected RFC3339 ts, got %q err=%v", ev.TS, err)
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("expected valid event, got %v", err)
	}
}

func TestBuildAuditEventDefaultsAnonymousActor(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/register", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	ev := BuildAuditEvent(req, AuditInput{EventName: "auth.register", TargetType: "user", Action: "register", Outcome: "rejected"})
	if ev.ActorUserID != "anonymous" || ev.TargetID != "-" || ev.RequestID != "-" {
		t.Fatalf("unexpected defaults: %+v", ev)
	}
	if ev.ActorIP != "203.0.113.9" {
		t.Fatalf("expected first forwarded hop, got %s", ev.ActorIP)
	}
}

func TestAuditEventValidateRejectsMissingEventName(t *testing.T) {
	ev := AuditEvent{
		EventVersion: 1,
		TargetType:   "user",
		Action:       "login",
		Outcome:      "success",
		TS:           time.Now().UTC().Format(time.RFC3339),
	}
	if err := ev.Validate(); err == nil {
		t.Fatal("expected validation error for missing event_name")
	}
}
