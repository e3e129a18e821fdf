package markdown

import (
	"strings"
	"testing"
)

func TestLinkTargets_InlineAndReference(t *testing.T) {
	t.Parallel()
	src := "See [Foo](Foo::bar) and [Baz][ref] for details.\n\n[ref]: crate::baz::Baz"
	got := LinkTargets(src)

	want := map[string]bool{"Foo::bar": true, "crate::baz::Baz": true}
	for _, target := range got {
		delete(want, target)
	}
	if len(want) != 0 {
		t.Errorf("missing targets %v in %v", want, got)
	}
}

func TestLinkTargets_Shortcuts(t *testing.T) {
	t.Parallel()
	src := "Returns a [`Widget`]. See also [Gadget] and [`Widget::new()`]."
	got := LinkTargets(src)

	for _, want := range []string{"`Widget`", "Gadget", "`Widget::new()`"} {
		found := false
		for _, target := range got {
			if target == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing shortcut %q in %v", want, got)
		}
	}
}

func TestLinkTargets_SkipsLinkText(t *testing.T) {
	t.Parallel()
	// "Foo" is link text, not a shortcut reference; only the
	// destination should surface.
	got := LinkTargets("See [Foo](some::dest).")
	for _, target := range got {
		if target == "Foo" {
			t.Errorf("link text captured as target: %v", got)
		}
	}
}

func TestLinkTargets_Dedupes(t *testing.T) {
	t.Parallel()
	got := LinkTargets("[`X`] then [`X`] again")
	count := 0
	for _, target := range got {
		if target == "`X`" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 occurrence, got %d in %v", count, got)
	}
}

func TestLinkTargets_Empty(t *testing.T) {
	t.Parallel()
	if got := LinkTargets(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestCleanPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"`Widget`", "Widget", true},
		{"Widget::new()", "Widget::new", true},
		{"`vec!`", "vec", true},
		{"crate::foo::Bar", "crate::foo::Bar", true},
		{"https://example.com/x", "", false},
		{"some prose", "", false},
		{"Widget#field", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := CleanPath(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CleanPath(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRewriteLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo](old/path) for details."
	got := RewriteLinks(src, map[string]string{"old/path": "cratedoc://crate/1.0/Foo"})
	want := "See [Foo](cratedoc://crate/1.0/Foo) for details."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_ReferenceStyleLinks(t *testing.T) {
	t.Parallel()
	src := "See [Foo][ref] for details.\n\n[ref]: old/path"
	got := RewriteLinks(src, map[string]string{"old/path": "cratedoc://new"})
	if !strings.Contains(got, "[ref]: cratedoc://new") {
		t.Errorf("reference link not rewritten: %q", got)
	}
}

func TestRewriteLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Hello [world](url)."
	if got := RewriteLinks(src, nil); got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestRewriteLinks_NoMatchingLinks(t *testing.T) {
	t.Parallel()
	src := "Check [this](keep-me) out."
	if got := RewriteLinks(src, map[string]string{"other": "cratedoc://x"}); got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestRewriteLinks_ProseUntouched(t *testing.T) {
	t.Parallel()
	src := "The string a-dest appears in prose and in [A](a-dest)."
	got := RewriteLinks(src, map[string]string{"a-dest": "cratedoc://a"})
	if !strings.Contains(got, "The string a-dest appears") {
		t.Errorf("prose was rewritten: %q", got)
	}
	if !strings.Contains(got, "(cratedoc://a)") {
		t.Errorf("link not rewritten: %q", got)
	}
}
