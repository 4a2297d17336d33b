//go:build !linux

package cmd

import "runtime"

// platformChecks reports the absence of a native backend on non-Linux
// platforms; the null backend still works there.
func platformChecks(backend string) []CheckResult {
	if backend == "null" {
		return nil
	}
	return []CheckResult{{
		Name:   "native device backend",
		OK:     false,
		Detail: "no uinput on " + runtime.GOOS + "; use --device null",
	}}
}
