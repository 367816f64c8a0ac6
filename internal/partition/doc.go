// Package partition discovers a remote resource's size and splits it
// into disjoint byte-range download tasks.
//
// The size comes from a HEAD request's Content-Length header; without
// it no chunk sizes can be computed, so a missing or unparsable header
// is fatal to the whole job. The computed ranges are contiguous,
// pairwise disjoint, and cover [0, contentLength) exactly, which is
// what lets workers write their payloads into a shared buffer without
// locking.
package partition
