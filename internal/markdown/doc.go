// Package markdown holds the note-level building blocks of the vault export:
// discovering notes under the vault root, stripping wiki link and embed
// syntax, reading tags from the YAML header block, and rendering notes to
// HTML for previews.
package markdown
