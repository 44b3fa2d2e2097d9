package env

import "testing"

func TestGetFallsBackWhenBlank(t *testing.T) {
	t.Setenv("MERKO_TEST_VALUE", "  ")
	if got := Get("MERKO_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("MERKO_TEST_VALUE", "set")
	if got := Get("MERKO_TEST_VALUE", "fallback"); got != "set" {
		t.Fatalf("expected set, got %q", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("MERKO_TEST_FLAG", "1")
	if !Bool("MERKO_TEST_FLAG", false) {
		t.Fatal("expected true")
	}
	t.Setenv("MERKO_TEST_FLAG", "nope")
	if Bool("MERKO_TEST_FLAG", false) {
		t.Fatal("unparsable value should use fallback")
	}
}
