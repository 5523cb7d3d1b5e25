package update

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DiagnosticSink keeps a copy of the raw extracted block. Writes are best
// effort: the pipeline logs a failure and carries on.
type DiagnosticSink interface {
	WriteDiagnostic(name string, data []byte) error
}

var ErrNoDir = errors.New("diagnostics directory not configured")

// FileSink writes under <Dir>/logs.
type FileSink struct {
	Dir string
}

func (s FileSink) WriteDiagnostic(name string, data []byte) error {
	if s.Dir == "" {
		return ErrNoDir
	}
	dir := filepath.Join(s.Dir, "logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
