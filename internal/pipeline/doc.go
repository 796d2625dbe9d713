// Package pipeline implements the markdown report layout stages:
//   - pipe table extraction from the source markdown
//   - markdown to HTML conversion via goldmark
//   - layout building (text, spacer and styled table blocks)
//   - rendering blocks into a standalone HTML document
//
// PDF generation is handled by the root dbcopilot package using headless
// Chrome (go-rod). The stages here only deal with document structure.
package pipeline
