package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("TEST_DUR_GO", "90s")
	t.Setenv("TEST_DUR_SECS", "15")
	t.Setenv("TEST_DUR_BAD", "soon")

	if got := Duration("TEST_DUR_GO", time.Minute); got != 90*time.Second {
		t.Fatalf("go duration: want=%v got=%v", 90*time.Second, got)
	}
	if got := Duration("TEST_DUR_SECS", time.Minute); got != 15*time.Second {
		t.Fatalf("seconds: want=%v got=%v", 15*time.Second, got)
	}
	if got := Duration("TEST_DUR_BAD", time.Minute); got != time.Minute {
		t.Fatalf("fallback: want=%v got=%v", time.Minute, got)
	}
}

func TestListAndBool(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ,c")
	got := List("TEST_LIST", nil)
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("List: got=%v", got)
	}
	t.Setenv("TEST_BOOL", "off")
	if Bool("TEST_BOOL", true) {
		t.Fatalf("Bool: want=false")
	}
	if !Bool("TEST_BOOL_UNSET", true) {
		t.Fatalf("Bool default: want=true")
	}
}
