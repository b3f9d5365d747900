package relayserver

import "testing"

func TestFirstLabel(t *testing.T) {
	cases := map[string]string{
		"app1.example.com":     "app1",
		"app1.example.com:443": "app1",
		"localhost":            "localhost",
		"localhost:8080":       "localhost",
		"single":               "single",
	}
	for host, want := range cases {
		if got := firstLabel(host); got != want {
			t.Errorf("firstLabel(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestIsUnaddressed(t *testing.T) {
	cases := map[string]bool{
		"localhost": true,
		"":          true,
		"1app":      true,
		"9":         true,
		"app1":      false,
		"a9app":     false,
	}
	for label, want := range cases {
		if got := isUnaddressed(label); got != want {
			t.Errorf("isUnaddressed(%q) = %v, want %v", label, got, want)
		}
	}
}
