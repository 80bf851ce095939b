// Package task provides the background processing machinery: a bounded
// in-memory queue with a worker pool, and the single-shot task that drives
// one reading through its lifecycle. Queued work is drained on shutdown
// rather than abandoned.
package task
