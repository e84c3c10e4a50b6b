package tags

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// AttrTagName is the marker consumed by ApplyHTMLAttrs.
const AttrTagName = "html-attr"

// attrLookahead matches an html-attr marker followed by optional whitespace
// and the start of a tag. Captures: 1=attribute list, 2=whitespace.
var attrLookahead = regexp.MustCompile(
	`<!--\{\{\s*html-attr((?:\s+[A-Za-z_][\w.\-]*(?:=(?:"[^"]*"|[^\s"}]+))?)*)\s*\}\}-->(\s*)<`)

// ApplyHTMLAttrs moves the attributes of each html-attr marker onto the
// opening tag that immediately follows it. Markers not followed by an
// opening tag are left untouched.
//
// The id attribute replaces an existing id, class values are appended to the
// existing class list, and any other attribute is set or overwritten.
func ApplyHTMLAttrs(text string) string {
	if !strings.Contains(text, "html-attr") {
		return text
	}

	var buf strings.Builder
	buf.Grow(len(text))
	pos := 0

	for pos < len(text) {
		loc := attrLookahead.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}
		markerStart := pos + loc[0]
		tagStart := pos + loc[1] - 1 // the '<'

		rewritten, consumed, ok := rewriteOpeningTag(text[tagStart:], parseAttrs(text[pos+loc[2]:pos+loc[3]]))
		if !ok {
			// Not an opening tag: keep the marker and continue after it.
			buf.WriteString(text[pos:tagStart])
			pos = tagStart
			continue
		}

		buf.WriteString(text[pos:markerStart])
		buf.WriteString(text[pos+loc[4] : pos+loc[5]])
		buf.WriteString(rewritten)
		pos = tagStart + consumed
	}

	buf.WriteString(text[pos:])
	return buf.String()
}

// rewriteOpeningTag tokenizes the tag at the start of s and merges attrs
// into it. Returns the rendered tag and the number of bytes it replaced.
func rewriteOpeningTag(s string, attrs Attrs) (string, int, bool) {
	z := html.NewTokenizer(strings.NewReader(s))
	tt := z.Next()
	if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
		return "", 0, false
	}
	raw := len(z.Raw())
	tok := z.Token()

	var classes []string
	for _, a := range attrs {
		switch a.Name {
		case "class":
			classes = append(classes, strings.Fields(a.Value)...)
		default:
			tok.Attr = setAttr(tok.Attr, a.Name, a.Value)
		}
	}
	if len(classes) > 0 {
		tok.Attr = appendClasses(tok.Attr, classes)
	}

	return tok.String(), raw, true
}

func setAttr(attrs []html.Attribute, key, val string) []html.Attribute {
	for i := range attrs {
		if attrs[i].Key == key {
			attrs[i].Val = val
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: key, Val: val})
}

func appendClasses(attrs []html.Attribute, classes []string) []html.Attribute {
	for i := range attrs {
		if attrs[i].Key == "class" {
			existing := strings.Fields(attrs[i].Val)
			attrs[i].Val = strings.Join(append(existing, classes...), " ")
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
}
