//go:build windows

package daemon

import "os"

func processExists(pid int) bool {
	if pid <= 0 {
		return false
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

func writeFileAtomic(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
