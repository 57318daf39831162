package exclusion_test

import (
	"testing"

	"codeanon/internal/exclusion"
)

func newSet() *exclusion.Set {
	return exclusion.New(
		[]string{"lib", "_macosx", ".git"},
		[]string{".java"},
		[]string{".jar", ".zip"},
	)
}

func TestDirMatchesSubstringsCaseInsensitively(t *testing.T) {
	s := newSet()
	cases := []struct {
		name string
		want bool
	}{
		{"lib", true},
		{"LIB", true},
		{"mylibs", true},
		{"__MACOSX", true},
		{".git", true},
		{"src", false},
		{"groupA", false},
	}
	for _, tc := range cases {
		if got := s.Dir(tc.name); got != tc.want {
			t.Fatalf("Dir(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFileCombinesSubstringsAndExtensions(t *testing.T) {
	s := newSet()
	cases := []struct {
		name string
		want bool
	}{
		{"Main.java", false},
		{"Sub.jar", false},
		{"archive.ZIP", false},
		{"notes.txt", true},
		{"App.class", true},
		{"report.docx", true},
		{"library.java", true}, // substring match beats extension
	}
	for _, tc := range cases {
		if got := s.File(tc.name); got != tc.want {
			t.Fatalf("File(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestKindPredicates(t *testing.T) {
	s := newSet()
	if !s.IsSource("Main.java") || s.IsSource("Sub.jar") {
		t.Fatal("IsSource misclassified")
	}
	if !s.IsArchive("Sub.jar") || !s.IsArchive("a.ZIP") || s.IsArchive("Main.java") {
		t.Fatal("IsArchive misclassified")
	}
}
