package mdpipe

import (
	"errors"

	"github.com/alnah/go-mdpipe/internal/tags"
)

// Sentinel errors for pipeline operations.
var (
	ErrDuplicateItemPath      = errors.New("duplicate item path")
	ErrInvalidAsset           = errors.New("invalid asset declaration")
	ErrConflictingAssetOutput = errors.New("conflicting asset output")
	ErrOutputPathEscapesRoot  = errors.New("output path escapes destination root")
	ErrMissingFile            = errors.New("file not found")
	ErrImportCycle            = errors.New("import cycle")
	ErrModuleLoad             = errors.New("module load failed")

	// ErrInvalidTagReplacement is returned when a tag callback produces
	// something other than text.
	ErrInvalidTagReplacement = tags.ErrInvalidReplacement

	// Declaration errors.
	ErrInvalidStage = errors.New("invalid stage")
	ErrInvalidPath  = errors.New("invalid item path")
)
