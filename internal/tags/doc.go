// Package tags holds the tag taxonomy for an export run: the curated tag
// registry read from the vault and the tag map built from note headers, and
// the index document rendered from both.
package tags
