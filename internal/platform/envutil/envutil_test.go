package envutil

import (
	"testing"
	"time"
)

func TestDefaultsPreferEnvironment(t *testing.T) {
	t.Setenv("FP_TEST_PORT", "4000")
	d := Defaults{"FP_TEST_PORT": "3001", "FP_TEST_NAME": "fromfile"}

	if got := d.Int("FP_TEST_PORT", 1, nil); got != 4000 {
		t.Fatalf("Int: want=4000 got=%d", got)
	}
	if got := d.String("FP_TEST_NAME", "def", nil); got != "fromfile" {
		t.Fatalf("String: want=fromfile got=%q", got)
	}
	if got := d.String("FP_TEST_MISSING", "def", nil); got != "def" {
		t.Fatalf("String default: want=def got=%q", got)
	}
}

func TestDefaultsParsing(t *testing.T) {
	t.Setenv("FP_TEST_BAD_INT", "abc")
	t.Setenv("FP_TEST_BOOL", "yes")
	t.Setenv("FP_TEST_TTL", "90")
	t.Setenv("FP_TEST_RATIO", "0.25")

	if got := Int("FP_TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("Int invalid: want=7 got=%d", got)
	}
	if got := Defaults(nil).Bool("FP_TEST_BOOL", false); !got {
		t.Fatalf("Bool: want=true got=false")
	}
	if got := Defaults(nil).Seconds("FP_TEST_TTL", time.Minute, nil); got != 90*time.Second {
		t.Fatalf("Seconds: want=90s got=%s", got)
	}
	if got := Defaults(nil).Float("FP_TEST_RATIO", 1, nil); got != 0.25 {
		t.Fatalf("Float: want=0.25 got=%v", got)
	}
}
