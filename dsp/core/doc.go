// Package core holds small numeric and buffer helpers shared by the render
// core, plus the ProcessorConfig used by hosts.
package core
