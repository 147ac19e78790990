package catalog

// Option configures a MemoryStore at construction time. Options receive and
// return the initial map capacity.
type Option func(capacity int) int

// WithInitialCapacity pre-sizes the catalog map.
func WithInitialCapacity(n int) Option {
	return func(capacity int) int {
		if n > 0 {
			return n
		}
		return capacity
	}
}
