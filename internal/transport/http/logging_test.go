package http

import (
	"strings"
	"testing"
)

func TestSummarizeBodyRedactsCredentials(t *testing.T) {
	body := []byte(`{"email":"traveler@example.com","password":"wanderlust42"}`)
	summary := summarizeBody(body, "application/json")

	data, ok := summary.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map summary, got %T", summary)
	}
	if data["email"] != "traveler@example.com" {
		t.Fatalf("email should pass through, got %v", data["email"])
	}
	if data["password"] != "redacted" {
		t.Fatalf("password should be redacted, got %v", data["password"])
	}
}

func TestSummarizeBodyMultipartAndBinary(t *testing.T) {
	if got := summarizeBody([]byte("ignored"), "multipart/form-data; boundary=x"); got != "multipart" {
		t.Fatalf("expected multipart marker, got %v", got)
	}
	if got := summarizeBody([]byte{0xff, 0xfe, 0x00}, "application/octet-stream"); got != "binary" {
		t.Fatalf("expected binary marker, got %v", got)
	}
	if got := summarizeBody(nil, "application/json"); got != nil {
		t.Fatalf("expected nil for empty body, got %v", got)
	}
}

func TestClampStringTruncatesLongBodies(t *testing.T) {
	long := strings.Repeat("a", maxLoggedBody+100)
	got := clampString(long)
	if len(got) >= len(long) {
		t.Fatalf("expected truncation, got %d bytes", len(got))
	}
	if !strings.HasSuffix(got, "...(truncated)") {
		t.Fatalf("expected truncation marker, got suffix %q", got[len(got)-20:])
	}
}
