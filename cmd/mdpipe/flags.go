package main

import (
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdpipe/internal/config"
)

// commonFlags holds flags shared by every invocation.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logLevel  string
	logFormat string
}

// renderFlags holds Markdown rendering flags.
type renderFlags struct {
	standalone     bool
	hardWraps      bool
	noHighlight    bool
	highlightStyle string
	lineNumbers    bool
}

// assetFlags holds stylesheet flags.
type assetFlags struct {
	style     string
	assetPath string
	noStyle   bool
}

// buildFlags holds all flags of the build command.
type buildFlags struct {
	common  commonFlags
	input   string
	render  renderFlags
	assets  assetFlags
	version bool

	// changed records flags set on the command line, so only those
	// override config values.
	changed map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.BoolVar(&f.standalone, "standalone", false, "wrap outputs in a full HTML document")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "render newlines as <br>")
	fs.BoolVar(&f.noHighlight, "no-highlight", false, "disable syntax highlighting")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "inline chroma style (\"\" = CSS classes)")
	fs.BoolVar(&f.lineNumbers, "line-numbers", false, "number highlighted code lines")
}

// addAssetFlags adds stylesheet flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "stylesheet name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
	fs.BoolVar(&f.noStyle, "no-style", false, "do not inject a stylesheet")
}

// parseFlags parses build flags and returns positional args.
func parseFlags(args []string) (*buildFlags, []string, error) {
	fs := flag.NewFlagSet("mdpipe", flag.ContinueOnError)
	f := &buildFlags{changed: make(map[string]bool)}

	fs.StringVarP(&f.input, "input", "i", "", "source root for items and assets")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addAssetFlags(fs, &f.assets)

	// runMain prints usage itself.
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	return f, fs.Args(), nil
}

// mergeFlags applies explicitly set flags over cfg.
// -v and -q take precedence over --log-level.
func mergeFlags(f *buildFlags, cfg *config.Config) {
	if f.changed["input"] {
		cfg.Input.Root = f.input
	}
	if f.changed["standalone"] {
		cfg.Render.Standalone = f.render.standalone
	}
	if f.changed["hard-wraps"] {
		cfg.Render.HardWraps = f.render.hardWraps
	}
	if f.changed["no-highlight"] {
		cfg.Render.Highlight = !f.render.noHighlight
	}
	if f.changed["highlight-style"] {
		cfg.Render.HighlightStyle = f.render.highlightStyle
	}
	if f.changed["line-numbers"] {
		cfg.Render.LineNumbers = f.render.lineNumbers
	}
	if f.changed["style"] {
		cfg.Style.Name = f.assets.style
	}
	if f.changed["asset-path"] {
		cfg.Style.BasePath = f.assets.assetPath
	}
	if f.changed["log-level"] {
		cfg.Log.Level = f.common.logLevel
	}
	if f.changed["log-format"] {
		cfg.Log.Format = f.common.logFormat
	}

	switch {
	case f.common.verbose:
		cfg.Log.Level = "debug"
	case f.common.quiet:
		cfg.Log.Level = "error"
	}
}
