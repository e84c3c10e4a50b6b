// Package tags parses and substitutes comment-tag markers of the form
//
//	<!--{{ name flag key=token key2="quoted value" }}-->
//
// Substitution is a single left-to-right pass: each marker whose name has a
// registered handler is replaced by the handler's result, and the inserted
// text is never rescanned in the same pass. Markers without a handler are
// left in place so a later stage can consume them.
package tags

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// ErrInvalidReplacement indicates a handler returned a value that is not text.
var ErrInvalidReplacement = errors.New("invalid tag replacement")

// Precompiled patterns for marker scanning.
var (
	// Whole marker: 1=name, 2=attribute list.
	markerPattern = regexp.MustCompile(
		`<!--\{\{\s*([A-Za-z_][\w.\-]*)((?:\s+[A-Za-z_][\w.\-]*(?:=(?:"[^"]*"|[^\s"}]+))?)*)\s*\}\}-->`)

	// Single attribute: 1=name, 2=quoted value, 3=bare token.
	attrPattern = regexp.MustCompile(`([A-Za-z_][\w.\-]*)(?:=(?:"([^"]*)"|([^\s"}]+)))?`)
)

// Attr is one marker attribute in source order.
type Attr struct {
	Name  string
	Value string
}

// Attrs preserves attribute order and repeated names.
type Attrs []Attr

// Get returns the first value for name.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Value returns the first value for name, or fallback when absent.
func (a Attrs) Value(name, fallback string) string {
	if v, ok := a.Get(name); ok {
		return v
	}
	return fallback
}

// Has reports whether name appears at least once.
func (a Attrs) Has(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Tag is a parsed marker and its byte span in the scanned text.
type Tag struct {
	Name  string
	Attrs Attrs
	Raw   string
	Start int
	End   int
}

// Handler produces the replacement for a marker. Accepted results are
// string, []string (joined with newlines) and fmt.Stringer; anything else
// fails with ErrInvalidReplacement.
type Handler func(ctx context.Context, tag Tag) (any, error)

// Handlers maps marker names to handlers.
type Handlers map[string]Handler

// Merge returns a new map holding h overlaid with other.
func (h Handlers) Merge(other Handlers) Handlers {
	merged := make(Handlers, len(h)+len(other))
	for name, fn := range h {
		merged[name] = fn
	}
	for name, fn := range other {
		merged[name] = fn
	}
	return merged
}

// Parse returns every well-formed marker in text, in order.
func Parse(text string) []Tag {
	locs := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	found := make([]Tag, 0, len(locs))
	for _, loc := range locs {
		found = append(found, Tag{
			Name:  text[loc[2]:loc[3]],
			Attrs: parseAttrs(text[loc[4]:loc[5]]),
			Raw:   text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return found
}

// parseAttrs splits an attribute list. Bare attributes take their own name
// as value; quoted values are HTML-entity decoded.
func parseAttrs(list string) Attrs {
	matches := attrPattern.FindAllStringSubmatchIndex(list, -1)
	if len(matches) == 0 {
		return nil
	}

	attrs := make(Attrs, 0, len(matches))
	for _, m := range matches {
		name := list[m[2]:m[3]]
		switch {
		case m[4] >= 0:
			attrs = append(attrs, Attr{Name: name, Value: html.UnescapeString(list[m[4]:m[5]])})
		case m[6] >= 0:
			attrs = append(attrs, Attr{Name: name, Value: list[m[6]:m[7]]})
		default:
			attrs = append(attrs, Attr{Name: name, Value: name})
		}
	}
	return attrs
}

// Replace substitutes every marker in text that has a handler.
func Replace(ctx context.Context, text string, handlers Handlers) (string, error) {
	found := Parse(text)
	if len(found) == 0 || len(handlers) == 0 {
		return text, nil
	}

	var buf strings.Builder
	buf.Grow(len(text))
	last := 0

	for _, tag := range found {
		fn, ok := handlers[tag.Name]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		result, err := fn(ctx, tag)
		if err != nil {
			return "", fmt.Errorf("tag %q: %w", tag.Name, err)
		}
		replacement, err := ToText(result)
		if err != nil {
			return "", fmt.Errorf("tag %q: %w", tag.Name, err)
		}

		buf.WriteString(text[last:tag.Start])
		buf.WriteString(replacement)
		last = tag.End
	}

	buf.WriteString(text[last:])
	return buf.String(), nil
}

// ReplaceLines substitutes markers line by line. A replacement containing
// newlines is re-split so the result stays a sequence of single lines.
func ReplaceLines(ctx context.Context, lines []string, handlers Handlers) ([]string, error) {
	if len(handlers) == 0 {
		return lines, nil
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if !strings.Contains(line, "<!--{{") {
			out = append(out, line)
			continue
		}

		replaced, err := Replace(ctx, line, handlers)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.Split(replaced, "\n")...)
	}
	return out, nil
}

// ToText converts a handler result to replacement text.
func ToText(v any) (string, error) {
	switch r := v.(type) {
	case string:
		return r, nil
	case []string:
		return strings.Join(r, "\n"), nil
	case fmt.Stringer:
		return r.String(), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrInvalidReplacement, v)
	}
}
