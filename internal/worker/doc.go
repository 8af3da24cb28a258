// Package worker runs blocking calls off the caller's goroutine.
//
// Network-bound operations against the utility backend must not stall
// lifecycle processing, so the controller hands them to an Executor.
// The Executor bounds concurrency with a semaphore and drains cleanly
// on Close.
package worker
