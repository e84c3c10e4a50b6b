// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-mdpipe/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	// Find a user config path (contains .config/go-mdpipe) to suggest
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-mdpipe") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForMissingFile returns hints when an item, import or asset file is absent.
func ForMissingFile(root string) string {
	if root == "" || root == "." {
		return format("paths in modules and front matter are relative to the current directory; use --input to change it")
	}
	return format("paths in modules and front matter are relative to " + root)
}

// ForOutputEscape returns hints for outputs that resolve outside the destination.
func ForOutputEscape() string {
	return format("data.output and asset outputs must stay inside the destination directory")
}

// ForAssetConflict returns hints for two inputs claiming the same output.
func ForAssetConflict() string {
	return formatHints([]string{"give one asset a distinct output path", "or declare the shared file once at pipeline level"})
}

// ForModuleLoad returns hints for module files that cannot be applied.
func ForModuleLoad() string {
	return format("modules must end in .yaml, .yml or .hcl")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
