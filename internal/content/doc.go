// Package content converts the body of one MkDocs document into a Hugo page.
//
// The pipeline runs in a fixed order: stale front matter is stripped, leftover
// MkDocs markup is cleaned, image references are pointed at the Hugo asset root,
// include directives become readfile shortcodes and the new front matter is
// prepended. Tracking records are returned per document for the caller to merge.
package content
