package cache

type Options struct {
	// Capacity is the maximum number of cached partitions.
	Capacity int
}

var DefaultOptions = Options{
	Capacity: 128,
}

type Option func(*Options)

func WithCapacity(n int) Option {
	return func(o *Options) {
		o.Capacity = n
	}
}
