package mdpipe

import (
	"context"
	"fmt"
	"path"

	"github.com/alnah/go-mdpipe/internal/logfields"
	"github.com/alnah/go-mdpipe/internal/manifest"
)

// LoadModule applies a YAML or HCL declaration module to p. Items and
// assets are declared on p and nested pipeline blocks are spawned from it.
// Any failure is wrapped in ErrModuleLoad naming the module.
func (p *Pipeline) LoadModule(ctx context.Context, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := manifest.Load(file)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModuleLoad, file, err)
	}
	if err := p.apply(m); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModuleLoad, file, err)
	}
	p.logger.Debug("module loaded", logfields.Module(file), logfields.Count(len(m.Items)))
	return nil
}

func (p *Pipeline) apply(decl *manifest.Pipeline) error {
	for _, it := range decl.Items {
		opts := []ItemOption{WithData(it.Data)}
		if it.Text != nil {
			opts = append(opts, WithText(*it.Text))
		}
		if _, err := p.Add(it.Path, opts...); err != nil {
			return err
		}
	}
	for _, a := range decl.Assets {
		if err := p.AddAsset(Asset{Input: a.Input, Output: a.Output}); err != nil {
			return err
		}
	}
	for i := range decl.Pipelines {
		sub := &decl.Pipelines[i]
		child, err := p.Spawn(sub.Input, sub.Output, nil)
		if err != nil {
			return err
		}
		if err := child.apply(sub); err != nil {
			return fmt.Errorf("pipeline %s: %w", sub.Input, err)
		}
	}
	return nil
}

// AddAsset declares a file copy that belongs to no item. Paths are relative
// to p's input and output directories.
func (p *Pipeline) AddAsset(a Asset) error {
	if a.Input == "" || a.Output == "" {
		return fmt.Errorf("%w: both input and output are required", ErrInvalidAsset)
	}
	in, err := cleanRel(path.Join(p.input, a.Input))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}
	a, err = cleanAsset(Asset{Input: in, Output: path.Join(p.output, a.Output)})
	if err != nil {
		return err
	}
	fresh, err := p.fam.declareAsset(a)
	if err != nil || !fresh {
		return err
	}

	p.fam.mu.Lock()
	p.fam.loose = append(p.fam.loose, a)
	p.fam.mu.Unlock()
	return nil
}
