package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/clanstats/pkg/metrics"
)

// Write encodes doc as indented JSON into <outputDir>/<name>.json. The file
// is replaced atomically so readers never see a partial document.
func (e *Exporter) Write(name string, doc any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("%w: encode %s: %v", ErrWriteReport, name, err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	path := filepath.Join(e.outputDir, name+".json")
	tmp, err := os.CreateTemp(e.outputDir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteReport, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteReport, err)
	}

	metrics.RecordReportWritten(name)
	return path, nil
}
