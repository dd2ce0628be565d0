package sqliteutil

import "testing"

func TestEnsurePragmas(t *testing.T) {
	testCases := []struct {
		description string
		dsn         string
		expect      string
	}{
		{description: "empty", dsn: "", expect: ""},
		{description: "memory", dsn: ":memory:", expect: ":memory:"},
		{description: "shared memory", dsn: "file:x?mode=memory&cache=shared", expect: "file:x?mode=memory&cache=shared"},
		{
			description: "plain file",
			dsn:         "file:/tmp/a.sqlite",
			expect:      "file:/tmp/a.sqlite?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		},
		{
			description: "keeps existing",
			dsn:         "file:/tmp/a.sqlite?_pragma=busy_timeout(10)",
			expect:      "file:/tmp/a.sqlite?_pragma=busy_timeout(10)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
		},
	}
	for _, tc := range testCases {
		if got := EnsurePragmas(tc.dsn, true, 5000); got != tc.expect {
			t.Fatalf("%s: got %q, want %q", tc.description, got, tc.expect)
		}
	}
}

func TestPragmas_Apply(t *testing.T) {
	got := Pragmas{Synchronous: "full"}.Apply("a.db")
	if got != "a.db?_pragma=synchronous(FULL)" {
		t.Fatalf("got %q", got)
	}
}
