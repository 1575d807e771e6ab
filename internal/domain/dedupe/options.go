package dedupe

// Option configures a Deduper.
type Option func(*window)

// WithMaxSize bounds the remembered ids. Zero or less means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		w.maxSize = maxSize
	}
}
