package mdpipe

import (
	"context"
	"fmt"
	"slices"

	"github.com/alnah/go-mdpipe/internal/logfields"
)

// Stage names one of the ordered processing phases of an item.
type Stage int

// Stages run in declaration order.
const (
	StageSource Stage = iota
	StageResolve
	StageOutput
	StageOutputResolve

	numStages
)

var stageNames = [numStages]string{"source", "resolve", "output", "output-resolve"}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

// ParseStage returns the stage for a name such as "resolve".
func ParseStage(name string) (Stage, error) {
	if i := slices.Index(stageNames[:], name); i >= 0 {
		return Stage(i), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStage, name)
}

// Transform is a stage callback. Transforms of one stage run sequentially
// in registration order.
type Transform func(ctx context.Context, it *Item) error

// chain is an immutable snapshot of the four transform lists.
// Use builds a new chain, so captured snapshots never change.
type chain struct {
	stages [numStages][]Transform
}

func (c *chain) with(stage Stage, fns ...Transform) *chain {
	next := &chain{}
	for i := range c.stages {
		next.stages[i] = slices.Clip(c.stages[i])
	}
	next.stages[stage] = append(next.stages[stage], fns...)
	return next
}

func (c *chain) list(stage Stage) []Transform {
	return c.stages[stage]
}

// runStages applies the chain to one item.
// data.inactive stops the chain before any stage and drops any output
// already rendered. data.partial stops it before the output stage, so
// partial items never get an output.
func (c *chain) runStages(ctx context.Context, it *Item) error {
	for stage := StageSource; stage < numStages; stage++ {
		if it.flag("inactive") {
			it.clearOutput()
			return nil
		}
		if stage == StageOutput && it.flag("partial") {
			return nil
		}
		if stage == StageOutputResolve {
			if _, ok := it.Output(); !ok {
				return nil
			}
		}

		it.logger.Debug("stage start", logfields.Stage(stage.String()))
		for _, fn := range c.list(stage) {
			if err := fn(ctx, it); err != nil {
				return fmt.Errorf("%s: %s stage: %w", it.path, stage, err)
			}
		}
	}

	if it.flag("inactive") {
		it.clearOutput()
		return nil
	}
	it.applyHTMLAttrs()
	return nil
}
