package redis

import "testing"

func TestSessionKey(t *testing.T) {
	if got := sessionKey("3f1c"); got != "session:experience:3f1c" {
		t.Fatalf("key = %q", got)
	}
}
