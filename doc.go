// Package mdpipe builds content from a dynamically growing set of Markdown
// items through an extensible four-stage transform chain.
//
// # Quick Start
//
// Create a pipeline, declare items, join, then flush:
//
//	p := mdpipe.New(
//	    mdpipe.WithFileStore(mdpipe.NewDirStore(os.DirFS("content"), "dist")),
//	)
//	if _, err := p.Add("index.md"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := p.Join(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := p.Flush(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Stages
//
// Every item runs the same ordered stages:
//
//  1. source: raw lines after front matter was split off
//  2. resolve: require, assets, then the import, insert and date tags
//  3. output: Markdown rendered to HTML (skipped for partial items)
//  4. output-resolve: html-import, html-insert and toc tags, then html-attr
//
// Register transforms with Use. Registration is copy-on-write: items and
// spawned pipelines keep the chain they captured.
//
// # Comment Tags
//
// Tags are HTML comments of the form
//
//	<!--{{name attr other=token quoted="a value"}}-->
//
// Unknown tags are left in place and reported by Warnings if they survive
// into the output.
//
// # Families
//
// Spawn creates a child pipeline that shares the item registry of its
// parent. Join waits until the pipeline and all of its descendants are
// quiescent, or returns the first error raised anywhere in the family.
// No stage runs before the first Join opens the family start gate.
package mdpipe
