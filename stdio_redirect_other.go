//go:build !unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// Without dup2 only Go-level writes through os.Stdout/os.Stderr are captured;
// runtime panics still go to the original stderr.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("stdio log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("stdio log: %w", err)
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
