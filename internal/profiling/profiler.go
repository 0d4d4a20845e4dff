// Package profiling captures CPU, heap, and execution-trace profiles
// for a single CLI invocation. Profiles start in the root command's
// pre-run hook and stop in its post-run hook, bracketing exactly one
// search or serve run.
package profiling

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
)

// Profiler starts and stops the runtime profilers for one invocation.
type Profiler struct{}

// NewProfiler creates an idle Profiler.
func NewProfiler() *Profiler {
	return &Profiler{}
}

// StartCPU begins CPU profiling into path. The returned stop function
// flushes and closes the profile; skipping it loses the data.
func (p *Profiler) StartCPU(path string) (stop func(), err error) {
	return startInto(path, "CPU profile", pprof.StartCPUProfile, pprof.StopCPUProfile)
}

// StartTrace begins execution tracing into path. The returned stop
// function ends the trace and closes the file.
func (p *Profiler) StartTrace(path string) (stop func(), err error) {
	return startInto(path, "trace", trace.Start, trace.Stop)
}

// WriteHeap writes a point-in-time heap profile to path. A GC runs
// first so the snapshot reflects live objects, not garbage.
func (p *Profiler) WriteHeap(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heap profile file: %w", err)
	}
	defer func() { _ = f.Close() }()

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write heap profile: %w", err)
	}
	return nil
}

// startInto opens path and hands it to begin. The stop function runs
// end before closing the file, in that order, so the profiler flushes
// into an open descriptor.
func startInto(path, what string, begin func(io.Writer) error, end func()) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s file: %w", what, err)
	}
	if err := begin(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to start %s: %w", what, err)
	}
	return func() {
		end()
		_ = f.Close()
	}, nil
}
