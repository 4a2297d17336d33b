package cmd

import "golang.org/x/sys/unix"

const uinputNode = "/dev/uinput"

// platformChecks verifies the uinput prerequisites: the device node must
// exist (uinput module loaded or built in) and the process must be allowed
// to write to it. The null backend needs neither.
func platformChecks(backend string) []CheckResult {
	if backend == "null" {
		return nil
	}

	exists := CheckResult{Name: uinputNode + " present"}
	if !fileExists(uinputNode) {
		exists.Detail = "node missing; load the uinput kernel module (modprobe uinput)"
		return []CheckResult{exists}
	}
	exists.OK = true

	writable := CheckResult{Name: uinputNode + " writable"}
	if err := unix.Access(uinputNode, unix.W_OK); err != nil {
		writable.Detail = "no write access (" + err.Error() + "); add a udev rule or run in the input group"
	} else {
		writable.OK = true
	}
	return []CheckResult{exists, writable}
}
