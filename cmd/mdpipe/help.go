package main

import (
	"fmt"
	"io"
)

// printUsage prints the help text.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "mdpipe - build Markdown content through a staged pipeline")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mdpipe [flags] <module>...")
	fmt.Fprintln(w, "  mdpipe [flags] <dest> <module>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  dest      Destination directory (default: output.dir from config, \"dist\")")
	fmt.Fprintln(w, "  module    Declaration module (.yaml, .yml or .hcl)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input:")
	fmt.Fprintln(w, "  -i, --input <dir>            Source root for items and assets (default: \".\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --standalone             Wrap outputs in a full HTML document")
	fmt.Fprintln(w, "      --hard-wraps             Render newlines as <br>")
	fmt.Fprintln(w, "      --no-highlight           Disable syntax highlighting")
	fmt.Fprintln(w, "      --highlight-style <name> Inline chroma style (default: CSS classes)")
	fmt.Fprintln(w, "      --line-numbers           Number highlighted code lines")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling (standalone only):")
	fmt.Fprintln(w, "      --style <name>           Stylesheet name (default: \"default\")")
	fmt.Fprintln(w, "      --asset-path <dir>       Directory searched for custom styles")
	fmt.Fprintln(w, "      --no-style               Do not inject a stylesheet")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>          Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet                  Only print errors")
	fmt.Fprintln(w, "  -v, --verbose                Debug logging")
	fmt.Fprintln(w, "      --log-level <level>      debug, info, warn, error")
	fmt.Fprintln(w, "      --log-format <format>    text, json")
	fmt.Fprintln(w, "      --version                Print version and exit")
	fmt.Fprintln(w, "  -h, --help                   Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0  success")
	fmt.Fprintln(w, "  1  unexpected error")
	fmt.Fprintln(w, "  2  invalid flags, config or module")
	fmt.Fprintln(w, "  3  missing file, escaping output or asset conflict")
}
