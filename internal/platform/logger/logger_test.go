package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	l := &Logger{redact: true, salt: "pepper"}

	out := l.sanitizeKVs([]interface{}{
		"access_token", "abc",
		"user_id", "user-1",
		"description", "morning routine",
		"dangling",
	})
	if len(out) != 7 {
		t.Fatalf("len: want=%d got=%d", 7, len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("access_token: want=%q got=%v", "[REDACTED]", out[1])
	}
	hashed, ok := out[3].(string)
	if !ok || len(hashed) != len("hash:")+12 || hashed[:5] != "hash:" {
		t.Fatalf("user_id: unexpected hash %v", out[3])
	}
	if out[5] != "morning routine" {
		t.Fatalf("description: want passthrough, got %v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key: got %v", out[6])
	}
}

func TestSanitizeKVsDisabled(t *testing.T) {
	l := &Logger{redact: false}
	in := []interface{}{"access_token", "abc"}
	out := l.sanitizeKVs(in)
	if out[1] != "abc" {
		t.Fatalf("redaction disabled: want=%q got=%v", "abc", out[1])
	}
}

func TestHashValueStableForSalt(t *testing.T) {
	a := &Logger{redact: true, salt: "s1"}
	b := &Logger{redact: true, salt: "s2"}
	if a.hashValue("u") != a.hashValue("u") {
		t.Fatalf("hash not stable")
	}
	if a.hashValue("u") == b.hashValue("u") {
		t.Fatalf("salt ignored")
	}
}
