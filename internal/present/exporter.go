package present

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Exporter delivers an exported payload under a suggested file name.
type Exporter interface {
	Export(name string, payload []byte) error
}

// FileExporter writes exports into Dir (the working directory when empty).
type FileExporter struct {
	Dir string
	// Path, when set, overrides Dir and the suggested name.
	Path string
}

// Target returns the file path an export named name would be written to.
func (e FileExporter) Target(name string) string {
	if e.Path != "" {
		return e.Path
	}
	return filepath.Join(e.Dir, name)
}

// Export writes payload through a temporary file in the target directory.
// The temporary file is removed on every path.
func (e FileExporter) Export(name string, payload []byte) error {
	target := e.Target(name)
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, target)
}

// WriterExporter streams exports to W, typically stdout.
type WriterExporter struct {
	W io.Writer
}

// Export writes payload followed by a newline.
func (e WriterExporter) Export(_ string, payload []byte) error {
	if e.W == nil {
		return fmt.Errorf("no writer")
	}
	if _, err := e.W.Write(payload); err != nil {
		return err
	}
	_, err := io.WriteString(e.W, "\n")
	return err
}
