// Package nav reconstructs the section/subsection/document hierarchy of an MkDocs
// site from the `nav:` block of its configuration.
//
// Only the restricted nav sublanguage is understood: sequence entries of the form
// `- Name:` (a heading), `- Name: path.md` (a leaf) and `- "path.md"` (a leaf whose
// title is derived from the filename), nested at most three levels deep. Every
// entry is assigned a weight so the Hugo output keeps the MkDocs ordering.
package nav
