package main

import (
	"path/filepath"
	"testing"
)

func TestIsURL(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"http://example.com/x.md", true},
		{"https://example.com/x.md", true},
		{"ftp://example.com/x.md", false},
		{"README.md", false},
		{"./docs/readme.md", false},
		{"C:no-scheme", false},
	}
	for _, c := range cases {
		if got := isURL(c.in); got != c.want {
			t.Fatalf("isURL(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizePathIsAbsolute(t *testing.T) {
	got := normalizePath("some/relative/path.md")
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
}
