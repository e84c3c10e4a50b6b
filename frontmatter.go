package mdpipe

import (
	"regexp"
	"strings"
)

// frontMatterDelim matches a delimiter line of three or more dashes.
var frontMatterDelim = regexp.MustCompile(`^-{3,}\s*$`)

// splitFrontMatter separates a leading front-matter block from the body.
// The block must open on the first line and be closed by a later delimiter
// line; otherwise every line is body.
func splitFrontMatter(lines []string) (raw string, body []string, ok bool) {
	if len(lines) == 0 || !frontMatterDelim.MatchString(lines[0]) {
		return "", lines, false
	}
	for i := 1; i < len(lines); i++ {
		if frontMatterDelim.MatchString(lines[i]) {
			return strings.Join(lines[1:i], "\n"), lines[i+1:], true
		}
	}
	return "", lines, false
}
