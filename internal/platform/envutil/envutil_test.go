package envutil

import (
	"testing"
	"time"
)

func TestEnvHelpersFallBackOnMissingOrInvalid(t *testing.T) {
	t.Setenv("ENVUTIL_INT", "abc")
	t.Setenv("ENVUTIL_FLOAT", "")
	t.Setenv("ENVUTIL_BOOL", "maybe")

	if got := Int("ENVUTIL_INT", 7); got != 7 {
		t.Fatalf("Int: want=7 got=%d", got)
	}
	if got := Float("ENVUTIL_FLOAT", 0.7); got != 0.7 {
		t.Fatalf("Float: want=0.7 got=%v", got)
	}
	if got := Bool("ENVUTIL_BOOL", true); !got {
		t.Fatalf("Bool: want=true")
	}
	if got := String("ENVUTIL_MISSING", "def"); got != "def" {
		t.Fatalf("String: want=def got=%q", got)
	}
}

func TestDurationAcceptsSecondsAndGoSyntax(t *testing.T) {
	t.Setenv("ENVUTIL_DUR_A", "90")
	t.Setenv("ENVUTIL_DUR_B", "1m30s")
	if got := Duration("ENVUTIL_DUR_A", 0); got != 90*time.Second {
		t.Fatalf("Duration seconds: got=%v", got)
	}
	if got := Duration("ENVUTIL_DUR_B", 0); got != 90*time.Second {
		t.Fatalf("Duration go syntax: got=%v", got)
	}
}
