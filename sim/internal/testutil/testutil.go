// Package testutil provides shared test helpers for the MLFQ simulator.
// It has no dependency on sim/ so that sim's own tests can import it.
package testutil

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// Int64Ptr returns a pointer to v, for optional record fields.
func Int64Ptr(v int64) *int64 { return &v }

// WriteTempFile writes content to a file named name in a fresh temp dir and
// returns its path.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
