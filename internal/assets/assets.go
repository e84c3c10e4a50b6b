package assets

// DefaultStyleName is the name of the built-in stylesheet.
const DefaultStyleName = "default"

var defaultLoader = NewEmbeddedLoader()

// Styles lists the embedded style names, sorted.
func Styles() []string {
	return defaultLoader.Styles()
}
