package procfs

import (
	"errors"
	"testing"
)

func TestLookupUserHandlesEmptyPasswordField(t *testing.T) {
	procFS, _, etcRoot := newFixtureFS(t)
	writeFixture(t, etcRoot, "passwd", "# local accounts\n\nguest::405:100:guest:/dev/null:/sbin/nologin\nbroken\n")

	name, err := procFS.LookupUser("405")
	if err != nil || name != "guest" {
		t.Fatalf("expected guest, got %q err=%v", name, err)
	}
}

func TestLookupUserWithoutTable(t *testing.T) {
	procFS, _, _ := newFixtureFS(t)
	if _, err := procFS.LookupUser("0"); !errors.Is(err, ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord, got %v", err)
	}
}
