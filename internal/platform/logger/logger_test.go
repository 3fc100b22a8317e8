package logger

import "testing"

func TestSanitizeKVsRedactsSecretsAndHashesHolders(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"tenant", "acme",
		"assigned_email", "alice@x.com",
		"holder", "alice@x.com",
		"password", "hunter2",
		"dangling",
	})
	if len(got) != 9 {
		t.Fatalf("len: want=9 got=%d", len(got))
	}
	if got[1] != "acme" {
		t.Fatalf("tenant: want=acme got=%v", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("assigned_email: want=[REDACTED] got=%v", got[3])
	}
	h, _ := got[5].(string)
	if len(h) != len("hash:")+12 {
		t.Fatalf("holder: want hashed value got=%v", got[5])
	}
	if got[7] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", got[7])
	}
	if got[8] != "dangling" {
		t.Fatalf("odd trailing key should survive, got=%v", got[8])
	}
}

func TestNewTestModeIsSilent(t *testing.T) {
	l, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("should not panic", "k", "v")
	l.With("repo", "X").Debug("nested")
}
