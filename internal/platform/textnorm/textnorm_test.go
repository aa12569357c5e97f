package textnorm

import "testing"

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  User@Example.COM  ": "user@example.com",
		"already@lower.io":     "already@lower.io",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFoldHost(t *testing.T) {
	cases := map[string]string{
		" ACME.TaskForge.IO ": "acme.taskforge.io",
		"acme.taskforge.io":   "acme.taskforge.io",
	}
	for in, want := range cases {
		if got := FoldHost(in); got != want {
			t.Errorf("FoldHost(%q) = %q, want %q", in, got, want)
		}
	}
}
