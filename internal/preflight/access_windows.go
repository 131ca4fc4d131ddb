//go:build windows

package preflight

import "os"

// checkWritable probes with a temporary file since ACLs are not visible
// through mode bits on Windows.
func checkWritable(path string) error {
	f, err := os.CreateTemp(path, ".setupdialog-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
