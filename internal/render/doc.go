// Package render is the Markdown rendering collaborator of the pipeline.
//
// It covers:
//   - Markdown preprocessing (line normalization, ==highlight== syntax)
//   - Markdown to HTML conversion via goldmark, with an injectable
//     syntax-highlighting hook (goldmark-highlighting + chroma)
//   - CSS injection for standalone documents
//   - Heading extraction and numbered tables of contents
//
// Raw HTML is passed through by default so comment tags written in Markdown
// reach the output-resolve stage intact.
package render
