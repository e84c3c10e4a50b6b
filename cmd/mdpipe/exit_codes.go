package main

import (
	"errors"
	"os"

	mdpipe "github.com/alnah/go-mdpipe"
	"github.com/alnah/go-mdpipe/internal/assets"
	"github.com/alnah/go-mdpipe/internal/config"
	"github.com/alnah/go-mdpipe/internal/hints"
	"github.com/alnah/go-mdpipe/internal/manifest"
)

// ErrUsage indicates invalid arguments.
var ErrUsage = errors.New("invalid usage")

// Exit codes for the mdpipe CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Build completed
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or module
	ExitIO      = 3 // Missing file, escaping output, asset conflict
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, mdpipe.ErrMissingFile) ||
		errors.Is(err, mdpipe.ErrOutputPathEscapesRoot) ||
		errors.Is(err, mdpipe.ErrConflictingAssetOutput) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdpipe.ErrModuleLoad) ||
		errors.Is(err, mdpipe.ErrDuplicateItemPath) ||
		errors.Is(err, mdpipe.ErrInvalidAsset) ||
		errors.Is(err, mdpipe.ErrInvalidPath) ||
		errors.Is(err, mdpipe.ErrInvalidStage) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for known failures, or "".
func hintFor(err error, root string) string {
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, mdpipe.ErrMissingFile):
		return hints.ForMissingFile(root)
	case errors.Is(err, mdpipe.ErrOutputPathEscapesRoot):
		return hints.ForOutputEscape()
	case errors.Is(err, mdpipe.ErrConflictingAssetOutput):
		return hints.ForAssetConflict()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.Styles())
	case errors.Is(err, manifest.ErrUnsupportedFormat):
		return hints.ForModuleLoad()
	}
	return ""
}
