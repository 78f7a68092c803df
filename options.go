package gridsheet

// Options holds configuration for a Sheet.
type Options struct {
	numRows        int
	numCols        int
	customCommands map[string]CommandFactory
}

const (
	defaultNumRows = 1000
	defaultNumCols = 26
)

func defaultOptions() *Options {
	return &Options{
		numRows: defaultNumRows,
		numCols: defaultNumCols,
	}
}

// Option configures a Sheet.
type Option func(*Options)

// WithDimensions sets the sheet's logical row and column counts
// (default: 1000x26).
func WithDimensions(rows, cols int) Option {
	return func(o *Options) {
		o.numRows = rows
		o.numCols = cols
	}
}

// WithCommand registers a custom command factory under the given name.
func WithCommand(name string, factory CommandFactory) Option {
	return func(o *Options) {
		if o.customCommands == nil {
			o.customCommands = make(map[string]CommandFactory)
		}
		o.customCommands[name] = factory
	}
}
