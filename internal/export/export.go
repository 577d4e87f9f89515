package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jdelaire/notebot/core/note"
)

// Document is the exported form of one user's notes in one chat.
type Document struct {
	UserID     int64       `json:"user_id" yaml:"user_id"`
	ChatID     int64       `json:"chat_id" yaml:"chat_id"`
	ExportedAt time.Time   `json:"exported_at" yaml:"exported_at"`
	Notes      []note.Note `json:"notes" yaml:"notes"`
}

// Exporter writes a Document in one format.
type Exporter interface {
	Export(doc Document, w io.Writer) error
	Extension() string
}

// NewExporter returns the exporter for format.
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: yaml, json)", format)
	}
}

// YAMLExporter writes documents as YAML.
type YAMLExporter struct{}

func (e *YAMLExporter) Export(doc Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		_ = enc.Close()
		return err
	}
	// Close flushes the final document.
	return enc.Close()
}

func (e *YAMLExporter) Extension() string { return "yaml" }

// JSONExporter writes documents as indented JSON.
type JSONExporter struct{}

func (e *JSONExporter) Export(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

func (e *JSONExporter) Extension() string { return "json" }

// WriteFile exports doc to path atomically: it writes a temp file next to
// path, syncs it and renames it into place.
func WriteFile(path string, e Exporter, doc Document) (retErr error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	tmp := path + ".tmp"
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmp)
		}
	}()

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open temp export file: %w", err)
	}

	if err := e.Export(doc, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp export file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("fsync temp export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp export file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp export file: %w", err)
	}
	return nil
}
