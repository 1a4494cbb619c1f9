// Package mem defines the host allocator interface the buffer handles
// are built on, with implementations backed by the Go heap, anonymous
// mmap, and a size-class pool, plus an accounting wrapper for tests.
package mem
