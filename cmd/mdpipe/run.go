package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mdpipe "github.com/alnah/go-mdpipe"
	"github.com/alnah/go-mdpipe/internal/assets"
	"github.com/alnah/go-mdpipe/internal/config"
	"github.com/alnah/go-mdpipe/internal/render"
)

// classHighlightStyle provides the highlight stylesheet when code is
// highlighted with CSS classes.
const classHighlightStyle = "github"

// loadConfig loads the --config file, or the defaults, and applies flags.
func loadConfig(f *buildFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.common.config != "" {
		loaded, err := config.LoadConfig(f.common.config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	mergeFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// looksLikeModule reports whether arg names a declaration module.
func looksLikeModule(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".yaml", ".yml", ".hcl":
		return true
	}
	return false
}

// splitArgs separates the optional destination from the modules.
// A first argument that is not a module is the destination.
func splitArgs(args []string, defaultDest string) (dest string, modules []string, err error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: no module given", ErrUsage)
	}
	if looksLikeModule(args[0]) {
		return defaultDest, args, nil
	}
	if len(args) == 1 {
		return "", nil, fmt.Errorf("%w: no module given after destination %q", ErrUsage, args[0])
	}
	return args[0], args[1:], nil
}

// run builds every module into one pipeline family and flushes it.
func run(ctx context.Context, args []string, cfg *config.Config, f *buildFlags, env *Environment) error {
	dest, modules, err := splitArgs(args, cfg.Output.Dir)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level, cfg.Log.Format, env.Stderr)
	p := mdpipe.New(
		mdpipe.WithFileStore(mdpipe.NewDirStore(os.DirFS(cfg.Input.Root), dest)),
		mdpipe.WithRenderer(render.NewGoldmarkWithOptions(cfg.Render.Options())),
		mdpipe.WithLogger(logger),
		mdpipe.WithClock(env.Now),
	)

	// Registered before modules load so spawned pipelines inherit it.
	if cfg.Render.Standalone && !f.assets.noStyle {
		css, err := stylesheet(cfg)
		if err != nil {
			return err
		}
		if err := p.Use(mdpipe.StageOutputResolve, injectCSS(css)); err != nil {
			return err
		}
	}

	for _, m := range modules {
		if err := p.LoadModule(ctx, m); err != nil {
			return err
		}
	}
	if err := p.Join(ctx); err != nil {
		return err
	}
	stats, err := p.Flush(ctx)
	if err != nil {
		return err
	}

	for _, w := range p.Warnings() {
		fmt.Fprintf(env.Stderr, "warning: %s\n", w)
	}
	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "wrote %d file(s), copied %d asset(s) to %s\n", stats.Written, stats.Copied, dest)
	}
	return nil
}

// stylesheet returns the CSS injected into standalone documents.
func stylesheet(cfg *config.Config) (string, error) {
	resolver, err := assets.NewAssetResolver(cfg.Style.BasePath)
	if err != nil {
		return "", err
	}
	name := cfg.Style.Name
	if name == "" {
		name = assets.DefaultStyleName
	}
	css, err := resolver.LoadStyle(name)
	if err != nil {
		return "", err
	}

	if cfg.Render.Highlight && cfg.Render.HighlightStyle == "" {
		hl, err := render.HighlightCSS(classHighlightStyle)
		if err != nil {
			return "", err
		}
		css += "\n" + hl
	}
	return css, nil
}

// injectCSS returns an output-resolve transform that embeds css.
func injectCSS(css string) mdpipe.Transform {
	injector := &render.CSSInjection{}
	return func(ctx context.Context, it *mdpipe.Item) error {
		out, ok := it.Output()
		if !ok {
			return nil
		}
		out.Text = injector.InjectCSS(ctx, out.Text, css)
		it.SetOutput(out)
		return nil
	}
}
