// Package membuf provides low-level typed heap buffers for building
// containers such as dynamic arrays, hash tables and ropes, so they
// never have to reimplement allocation arithmetic, zero-sized-type
// handling, capacity-overflow checks or out-of-memory handling.
//
// A buffer is a raw region sized to hold Capacity elements of its
// element type. membuf manages only the region: elements are never
// constructed or destroyed, their contents are whatever the caller puts
// there.
//
// Two handles are provided. Buf is copyable and non-owning: copies alias
// the same region and the caller owes exactly one Deallocate across all
// of them. UniqueBuf owns its region exclusively, resizes safely, and
// releases the region exactly once, on Close or when the handle becomes
// unreachable.
//
// Allocation faults are fatal. Capacity overflow and out of memory both
// panic instead of returning an error, because containers built on this
// primitive have no way to recover from either; TryAllocate exists for
// the rare caller that does.
//
// Memory comes from a mem.Allocator, selected per buffer with
// WithAllocator. The default serves from the Go heap; mmap-backed and
// pooling allocators live in the mem package.
package membuf
