package procfs

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// statLine builds a 25-field stat record with start time at field 22.
func statLine(comm string, utime, stime, start string) string {
	fields := []string{"321", "(" + comm + ")", "S", "1", "321", "321", "0", "-1", "4194560",
		"1200", "0", "3", "0", utime, stime, "4", "6", "20", "0", "1", "0", start, "22708224", "1355", "18446744073709551615"}
	return strings.Join(fields, " ") + "\n"
}

func TestProcessUpTime(t *testing.T) {
	procFS, procRoot, _ := newFixtureFS(t)
	writeFixture(t, procRoot, "uptime", "50.92 80.00\n")
	writeFixture(t, procRoot, "321/stat", statLine("bash", "10", "5", "1000"))

	st, err := procFS.Stat(321)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Len() != 25 {
		t.Fatalf("expected 25 fields, got %d", st.Len())
	}
	age, err := procFS.ProcessUpTime(321, 100)
	if err != nil {
		t.Fatalf("ProcessUpTime: %v", err)
	}
	if age != 40 {
		t.Fatalf("expected age 40, got %d", age)
	}
}

func TestProcessUpTimeRejectsShortRecord(t *testing.T) {
	procFS, procRoot, _ := newFixtureFS(t)
	writeFixture(t, procRoot, "uptime", "50 80\n")
	writeFixture(t, procRoot, "7/stat", "7 (short) S 1 7 7 0 -1 4194560 1200\n")

	if _, err := procFS.ProcessUpTime(7, 100); !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if _, err := procFS.ProcessUpTime(8, 100); !errors.Is(err, ErrMissingRecord) {
		t.Fatalf("expected ErrMissingRecord for vanished pid, got %v", err)
	}
}

func TestAgeClampsToZero(t *testing.T) {
	cases := []struct {
		uptime, start, hz, want uint64
	}{
		{50, 1000, 100, 40},
		{50, 5000, 100, 0},
		{50, 6000, 100, 0},
		{10, 250, 250, 9},
		{10, 100, 0, 9},
	}
	for _, tc := range cases {
		if got := Age(tc.uptime, tc.start, tc.hz); got != tc.want {
			t.Fatalf("Age(%d, %d, %d): expected %d, got %d", tc.uptime, tc.start, tc.hz, tc.want, got)
		}
	}
}

func TestStatCommWithSpaces(t *testing.T) {
	procFS, procRoot, _ := newFixtureFS(t)
	writeFixture(t, procRoot, "55/stat", statLine("Web Content (x)", "300", "200", "777"))

	st, err := procFS.Stat(55)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if st.Comm() != "Web Content (x)" {
		t.Fatalf("unexpected comm %q", st.Comm())
	}
	if st.State() != "S" {
		t.Fatalf("unexpected state %q", st.State())
	}
	start, err := st.StartTime()
	if err != nil || start != 777 {
		t.Fatalf("expected start 777, got %d err=%v", start, err)
	}
	ppid, err := st.PPID()
	if err != nil || ppid != 1 {
		t.Fatalf("expected ppid 1, got %d err=%v", ppid, err)
	}
	ticks, err := st.Ticks(false)
	if err != nil || ticks != 500 {
		t.Fatalf("expected 500 ticks, got %d err=%v", ticks, err)
	}
	withChildren, err := st.Ticks(true)
	if err != nil || withChildren != 510 {
		t.Fatalf("expected 510 ticks with children, got %d err=%v", withChildren, err)
	}
}

func TestCommand(t *testing.T) {
	procFS, procRoot, _ := newFixtureFS(t)
	writeFixture(t, procRoot, "12/cmdline", "/usr/bin/python3\x00-m\x00http.server\x00")

	if got := procFS.Command(12); got != "/usr/bin/python3\x00-m\x00http.server\x00" {
		t.Fatalf("expected verbatim command, got %q", got)
	}
	if got := procFS.Command(13); got != "" {
		t.Fatalf("expected empty command for vanished pid, got %q", got)
	}
}

func TestRamAndUid(t *testing.T) {
	procFS, procRoot, _ := newFixtureFS(t)
	writeFixture(t, procRoot, "12/status", "Name:\tpython3\nUid:\t1000\t1000\t1000\t1000\nVmSize:\t    2048 kB\n")
	writeFixture(t, procRoot, "2/status", "Name:\tkthreadd\nUid:\t0\t0\t0\t0\n")

	mb, err := procFS.Ram(12)
	if err != nil || math.Abs(mb-2) > 1e-9 {
		t.Fatalf("expected 2 MB, got %f err=%v", mb, err)
	}
	uid, err := procFS.Uid(12)
	if err != nil || uid != "1000" {
		t.Fatalf("expected uid 1000, got %q err=%v", uid, err)
	}
	if _, err := procFS.Ram(2); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound for kernel thread, got %v", err)
	}
}

func TestUser(t *testing.T) {
	procFS, procRoot, etcRoot := newFixtureFS(t)
	writeFixture(t, etcRoot, "passwd", "root:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000:Alice:/home/alice:/bin/zsh\nalias:x:1000:1000::/:/bin/false\n")
	writeFixture(t, procRoot, "100/status", "Uid:\t1000\t1000\t1000\t1000\n")
	writeFixture(t, procRoot, "200/status", "Uid:\t9999\t9999\t9999\t9999\n")

	user, err := procFS.User(100)
	if err != nil || user != "alice" {
		t.Fatalf("expected alice, got %q err=%v", user, err)
	}
	user, err = procFS.User(200)
	if err != nil || user != "" {
		t.Fatalf("expected empty user for unknown uid, got %q err=%v", user, err)
	}
}

func TestStatusFactsIgnoreKeyLikeNames(t *testing.T) {
	procFS, procRoot, etcRoot := newFixtureFS(t)
	writeFixture(t, etcRoot, "passwd", "root:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000:Alice:/home/alice:/bin/zsh\n")
	writeFixture(t, procRoot, "300/status", "Name:\tUid 0\nUmask:\t0022\nUid:\t1000\t1000\t1000\t1000\nVmSize:\t4096 kB\n")
	writeFixture(t, procRoot, "301/status", "Name:\tVmSize\nUid:\t1000\t1000\t1000\t1000\nVmSize:\t1024 kB\n")

	uid, err := procFS.Uid(300)
	if err != nil || uid != "1000" {
		t.Fatalf("expected uid 1000, got %q err=%v", uid, err)
	}
	user, err := procFS.User(300)
	if err != nil || user != "alice" {
		t.Fatalf("expected alice, got %q err=%v", user, err)
	}
	mb, err := procFS.Ram(301)
	if err != nil || math.Abs(mb-1) > 1e-9 {
		t.Fatalf("expected 1 MB, got %f err=%v", mb, err)
	}
}
