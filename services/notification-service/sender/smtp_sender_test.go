package sender

import (
	"strings"
	"testing"
)

func TestNewSMTPSender_RequiresRelaySettings(t *testing.T) {
	cases := []SMTPConfig{
		{},
		{Host: "smtp.example.com"},
		{Host: "smtp.example.com", Port: "587"},
		{Host: "smtp.example.com", Port: "587", Username: "alerts"},
	}
	for _, cfg := range cases {
		if _, err := NewSMTPSender(cfg); err == nil {
			t.Errorf("expected error for config %+v", cfg)
		}
	}
}

func TestNewSMTPSender_DefaultsFromIdentity(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{
		Host: "smtp.example.com", Port: "587",
		Username: "alerts@aurelia.example", Password: "secret",
	})
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}

	msg := string(s.message("ops@aurelia.example", "Low stock", "<p>hi</p>"))
	if !strings.Contains(msg, "From: AURELIA Stock Alerts <alerts@aurelia.example>") {
		t.Errorf("missing branded From header:\n%s", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/html") {
		t.Errorf("missing html content type:\n%s", msg)
	}
}

func TestNewSMTPSender_CustomFromIdentity(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{
		Host: "smtp.example.com", Port: "587",
		Username: "relay-user", Password: "secret",
		FromAddress: "noreply@aurelia.example", FromName: "AURELIA",
	})
	if err != nil {
		t.Fatalf("NewSMTPSender: %v", err)
	}
	if s.from != "noreply@aurelia.example" {
		t.Errorf("from = %q, want noreply@aurelia.example", s.from)
	}
	if !strings.Contains(string(s.message("x@y", "s", "b")), "From: AURELIA <noreply@aurelia.example>") {
		t.Error("custom From identity not used")
	}
}
