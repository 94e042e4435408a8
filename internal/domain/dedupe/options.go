package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*rotatingDeduper)

// WithMaxSize caps how many IDs stay tracked across both generations.
// A non-positive value disables rotation entirely; nothing is ever
// forgotten then, so only tests and short-lived tools should use it.
func WithMaxSize(maxSize int) Option {
	return func(d *rotatingDeduper) {
		d.maxSize = maxSize
	}
}
