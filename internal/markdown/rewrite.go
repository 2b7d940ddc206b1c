package markdown

import "regexp"

var (
	embedPattern = regexp.MustCompile(`!\[\[(.*?)\]\]`)
	linkPattern  = regexp.MustCompile(`\[\[(.*?)\]\]`)
)

// StripWikiSyntax resolves `![[X]]` embeds and `[[X]]` links to their inner
// text X. Each form is replaced in a single non-greedy pass; embeds go first
// so the leading `!` is consumed with them. Unterminated brackets and text
// spanning a newline are left untouched.
func StripWikiSyntax(text string) string {
	text = embedPattern.ReplaceAllString(text, "${1}")
	return linkPattern.ReplaceAllString(text, "${1}")
}
