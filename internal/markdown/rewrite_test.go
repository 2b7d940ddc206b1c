package markdown

import "testing"

func TestStripWikiSyntax(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"link and embed", "See [[Note A]] and ![[Embed B]]", "See Note A and Embed B"},
		{"multiple on one line", "[[a]][[b]] ![[c.png]]", "ab c.png"},
		{"non greedy", "[[a]] text ]] [[b]]", "a text ]] b"},
		{"alias kept verbatim", "[[Page|Alias]]", "Page|Alias"},
		{"unterminated", "open [[link without close", "open [[link without close"},
		{"single brackets", "[md link](x.md) and ![img](a.png)", "[md link](x.md) and ![img](a.png)"},
		{"no newline inside", "[[line\nbreak]]", "[[line\nbreak]]"},
		{"empty target", "[[]]", ""},
		{"plain text", "nothing to do", "nothing to do"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripWikiSyntax(tc.in); got != tc.want {
				t.Fatalf("StripWikiSyntax(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestStripWikiSyntaxIsIdempotent(t *testing.T) {
	inputs := []string{
		"See [[Note A]] and ![[Embed B]]",
		"# Heading\n\n- [[x]]\n- ![[y]]\n",
		"already clean text",
		"broken [[ bracket",
	}
	for _, in := range inputs {
		once := StripWikiSyntax(in)
		if twice := StripWikiSyntax(once); twice != once {
			t.Fatalf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
