package mdpipe

import (
	"fmt"

	"github.com/alnah/go-mdpipe/internal/tags"
)

// Warning is a non-fatal finding about one item.
type Warning struct {
	Path    string
	Message string
}

func (w Warning) String() string {
	return w.Path + ": " + w.Message
}

// Warnings collects data.warnings, front-matter parser warnings and comment
// tags left unreplaced in outputs, sorted by item path. Call it after Join.
//
// A file imported several times is reported once, under its own path, and
// not at all when it is also an item of its own.
func (p *Pipeline) Warnings() []Warning {
	var out []Warning
	imported := make(map[string]bool)
	for _, it := range p.Items() {
		select {
		case <-it.done:
		default:
			continue
		}
		where := it.path
		if len(it.importedBy) > 0 {
			if _, own := p.Lookup(it.file); own || imported[it.file] {
				continue
			}
			imported[it.file] = true
			where = it.file
		}
		for _, msg := range it.parseWarns {
			out = append(out, Warning{Path: where, Message: msg})
		}
		msgs, err := stringList(it.Data["warnings"])
		if err != nil {
			out = append(out, Warning{Path: where, Message: fmt.Sprintf("warnings: %v", err)})
		}
		for _, msg := range msgs {
			out = append(out, Warning{Path: where, Message: msg})
		}
		if o, ok := it.Output(); ok {
			for _, tag := range tags.Parse(o.Text) {
				out = append(out, Warning{Path: it.path, Message: fmt.Sprintf("unreplaced tag %s", tag.Raw)})
			}
		}
	}
	return out
}
