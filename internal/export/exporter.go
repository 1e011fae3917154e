package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NissesSenap/gridplane/internal/render"
	"github.com/NissesSenap/gridplane/internal/storage"
)

// Exporter renders stored presets to SVG files
type Exporter struct {
	storage storage.Store
	dir     string
}

// New creates an Exporter writing into dir
func New(store storage.Store, dir string) *Exporter {
	return &Exporter{storage: store, dir: dir}
}

// ExportPreset renders the named preset as an empty plane and returns the
// path of the written file.
func (e *Exporter) ExportPreset(ctx context.Context, name string) (string, error) {
	preset, err := e.storage.GetPreset(ctx, name)
	if err != nil {
		return "", err
	}

	if err := preset.Config.Validate(); err != nil {
		return "", fmt.Errorf("preset %s: %w", name, err)
	}

	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(e.dir, fileName(name))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if _, err := render.Initialize(f, preset.Config, nil); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

// fileName turns a preset name into a safe file name.
//
// Examples:
//   - "linear" -> "linear.svg"
//   - "grade 8/slopes" -> "grade-8-slopes.svg"
//   - "" -> "preset.svg"
func fileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '-'
	}, strings.TrimSpace(name))
	clean = strings.Trim(clean, ".-")
	if clean == "" {
		clean = "preset"
	}
	return clean + ".svg"
}
