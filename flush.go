package mdpipe

import (
	"context"
	"fmt"
	"path"
	"slices"
	"time"

	"github.com/alnah/go-mdpipe/internal/logfields"
)

// FlushStats summarizes a flush.
type FlushStats struct {
	Written int
	Copied  int
}

// Flush writes every item output and copies every asset of the family
// through the FileStore, item assets first and pipeline assets last. It
// waits for every item, then fails with ErrConflictingAssetOutput before
// writing anything if two owners map to one output path. It stops at the
// first write error; files already written are left in place.
func (p *Pipeline) Flush(ctx context.Context) (FlushStats, error) {
	var stats FlushStats
	store := p.fam.store
	start := time.Now()

	items := p.Items()
	for _, it := range items {
		if err := it.Wait(ctx); err != nil {
			return stats, err
		}
	}

	p.fam.mu.Lock()
	loose := slices.Clone(p.fam.loose)
	p.fam.mu.Unlock()
	if err := checkOutputOwners(items, loose); err != nil {
		return stats, err
	}

	for _, it := range items {
		if out, ok := it.Output(); ok {
			if err := store.WriteText(ctx, out.Path, out.Text); err != nil {
				return stats, fmt.Errorf("%s: %w", it.path, err)
			}
			p.logger.Debug("output written", logfields.Item(it.path), logfields.Path(out.Path))
			stats.Written++
		}
		for _, a := range it.Assets() {
			if err := store.Copy(ctx, a.Input, a.Output); err != nil {
				return stats, fmt.Errorf("%s: %w", it.path, err)
			}
			stats.Copied++
		}
	}

	for _, a := range loose {
		if err := store.Copy(ctx, a.Input, a.Output); err != nil {
			return stats, err
		}
		stats.Copied++
	}

	p.logger.Info("flush complete",
		"written", stats.Written,
		"copied", stats.Copied,
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
	)
	return stats, nil
}

// outputOwner is the item or asset input that produces an output path.
type outputOwner struct {
	name  string
	asset bool
}

func (o outputOwner) String() string {
	if o.asset {
		return "asset " + o.name
	}
	return "item " + o.name
}

// checkOutputOwners reports the first output path claimed by two different
// owners. The same asset pair declared twice is a single owner.
func checkOutputOwners(items []*Item, loose []Asset) error {
	owners := make(map[string]outputOwner)
	claim := func(out string, o outputOwner) error {
		out = path.Clean(out)
		if prev, ok := owners[out]; ok && prev != o {
			return fmt.Errorf("%w: %s is produced by %s and %s", ErrConflictingAssetOutput, out, prev, o)
		}
		owners[out] = o
		return nil
	}

	for _, it := range items {
		if out, ok := it.Output(); ok {
			if err := claim(out.Path, outputOwner{name: it.path}); err != nil {
				return err
			}
		}
	}
	for _, it := range items {
		for _, a := range it.Assets() {
			if err := claim(a.Output, outputOwner{name: a.Input, asset: true}); err != nil {
				return err
			}
		}
	}
	for _, a := range loose {
		if err := claim(a.Output, outputOwner{name: a.Input, asset: true}); err != nil {
			return err
		}
	}
	return nil
}
