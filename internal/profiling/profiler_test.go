package profiling

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// burn gives the profilers something to sample.
func burn() int {
	sum := 0
	for i := 0; i < 1_000_000; i++ {
		sum += i
	}
	return sum
}

func TestProfiler_StartCPU_WritesProfile(t *testing.T) {
	// Given: a CPU profile destination
	path := filepath.Join(t.TempDir(), "cpu.prof")

	// When: profiling a burst of work
	p := NewProfiler()
	stop, err := p.StartCPU(path)
	require.NoError(t, err)
	_ = burn()
	stop()

	// Then: the profile file exists and is non-empty
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestProfiler_StartTrace_WritesTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.out")

	p := NewProfiler()
	stop, err := p.StartTrace(path)
	require.NoError(t, err)
	_ = burn()
	stop()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestProfiler_WriteHeap_WritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.prof")

	p := NewProfiler()
	require.NoError(t, p.WriteHeap(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestProfiler_UnwritablePathFails(t *testing.T) {
	p := NewProfiler()

	_, err := p.StartCPU("/no/such/dir/cpu.prof")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create CPU profile file")

	err = p.WriteHeap("/no/such/dir/heap.prof")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create heap profile file")
}
