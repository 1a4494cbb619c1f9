package membuf

import "github.com/fagongzi/membuf/mem"

// Option buffer option
type Option func(*options)

type options struct {
	alloc mem.Allocator
}

// WithAllocator set the host allocator the buffer allocates, resizes and
// frees its region with. Defaults to mem.Default.
func WithAllocator(alloc mem.Allocator) Option {
	return func(opts *options) {
		opts.alloc = alloc
	}
}

func newOptions(opts ...Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	o.adjust()
	return o
}

func (o *options) adjust() {
	if o.alloc == nil {
		o.alloc = mem.Default
	}
}
