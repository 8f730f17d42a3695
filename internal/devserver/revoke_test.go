package devserver

import (
	"testing"
	"time"
)

func TestRevocationsPrune(t *testing.T) {
	r := NewRevocations()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	r.Revoke("old", now.Add(-time.Minute))
	r.Revoke("live", now.Add(time.Hour))
	r.Revoke("", now.Add(time.Hour))
	if r.Len() != 2 {
		t.Fatalf("len=%d", r.Len())
	}
	if n := r.Prune(); n != 1 {
		t.Fatalf("pruned %d", n)
	}
	if r.Revoked("old") || !r.Revoked("live") {
		t.Fatalf("unexpected revocations after prune")
	}
}
