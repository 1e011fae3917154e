package storage

import (
	"context"
	"errors"
	"time"

	"github.com/NissesSenap/gridplane/internal/plane"
)

var ErrPresetNotFound = errors.New("preset not found")

// Store defines the interface for preset storage.
// Placed points are never stored, only plane configurations.
type Store interface {
	SavePreset(ctx context.Context, preset *Preset) error
	GetPreset(ctx context.Context, name string) (*Preset, error)
	ListPresets(ctx context.Context) ([]*Preset, error)
	DeletePreset(ctx context.Context, name string) error

	// Lifecycle
	Close() error
}

// Preset is a named plane configuration
type Preset struct {
	Name      string
	Config    plane.Config
	UpdatedAt time.Time
}
