// Package render implements sample-accurate event interleaving for
// kernel.Kernel implementations.
//
// The [Scheduler] splits each render quantum at event timestamps and
// calls the kernel once per segment, so a parameter change stamped at
// sample T affects sample T onward and nothing before it. The
// [Renderer] adds a sample clock and a lock-free [Queue] so control
// goroutines can post timestamped events without touching kernel state
// directly.
package render
