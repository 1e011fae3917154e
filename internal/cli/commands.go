package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NissesSenap/gridplane/internal/config"
	"github.com/NissesSenap/gridplane/internal/export"
	"github.com/NissesSenap/gridplane/internal/plane"
	"github.com/NissesSenap/gridplane/internal/render"
	"github.com/NissesSenap/gridplane/internal/server"
	"github.com/NissesSenap/gridplane/internal/storage"
)

// Version is set at build time with -ldflags "-X ...cli.Version=..."
var Version = "dev"

func (c *CLI) stdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

func openStore(cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLite(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset storage: %w", err)
	}
	return store, nil
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(server.Options{
		Addr:            cfg.Server.Addr,
		Graph:           cfg.Graph,
		Store:           store,
		MaxSessions:     cfg.Server.MaxSessions,
		EventsPerSecond: cfg.RateLimits.EventsPerSecond,
		Burst:           cfg.RateLimits.Burst,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
	})
	return srv.Start(cli.Context())
}

func (c *RenderCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	base := cfg.Graph
	if c.Preset != "" {
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		preset, err := store.GetPreset(cli.Context(), c.Preset)
		if err != nil {
			return err
		}
		base = preset.Config
	}

	overrides, err := readOverrides(c.Config)
	if err != nil {
		return err
	}

	clicks := make([]plane.Point, 0, len(c.Point))
	for _, raw := range c.Point {
		pt, err := parsePoint(raw)
		if err != nil {
			return err
		}
		clicks = append(clicks, pt)
	}

	// Rendered into memory so a failed render leaves no partial file behind.
	var buf bytes.Buffer
	p, err := render.Initialize(&buf, base, overrides, clicks...)
	if err != nil {
		return err
	}

	if c.Output == "-" {
		_, err := buf.WriteTo(cli.stdout())
		return err
	}
	if err := os.WriteFile(c.Output, buf.Bytes(), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout(), "Wrote %s with %d points\n", c.Output, p.Len())
	return nil
}

func (c *ExportCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	names := c.Presets
	if len(names) == 0 {
		presets, err := store.ListPresets(cli.Context())
		if err != nil {
			return err
		}
		for _, p := range presets {
			names = append(names, p.Name)
		}
	}

	pool := export.NewPool(names, cfg.RateLimits.RendersPerSecond, cfg.RateLimits.MaxConcurrent)
	err = pool.ExportAll(cli.Context(), export.New(store, c.Dir))
	for name, path := range pool.Written() {
		fmt.Fprintf(cli.stdout(), "%s -> %s\n", name, path)
	}
	return err
}

func (c *PresetSaveCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	overrides, err := readOverrides(c.Config)
	if err != nil {
		return err
	}
	graph := overrides.Merge(cfg.Graph)
	if err := graph.Validate(); err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.SavePreset(cli.Context(), &storage.Preset{Name: c.Name, Config: graph}); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout(), "Saved preset %s\n", c.Name)
	return nil
}

func (c *PresetListCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	presets, err := store.ListPresets(cli.Context())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cli.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tGRID\tSIZE\tPOINTS\tUPDATED")
	for _, p := range presets {
		fmt.Fprintf(tw, "%s\t%s\t%gx%g\t%d-%d\t%s\n",
			p.Name, p.Config.GridType, p.Config.Width, p.Config.Height,
			p.Config.PointRules.MinimumPoints, p.Config.PointRules.MaximumPoints,
			p.UpdatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func (c *PresetShowCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	preset, err := store.GetPreset(cli.Context(), c.Name)
	if err != nil {
		return err
	}
	return yaml.NewEncoder(cli.stdout()).Encode(preset.Config)
}

func (c *PresetDeleteCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeletePreset(cli.Context(), c.Name); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout(), "Deleted preset %s\n", c.Name)
	return nil
}

func (c *ConfigShowCmd) Run(cli *CLI) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return yaml.NewEncoder(cli.stdout()).Encode(cfg)
}

func (c *ConfigInitCmd) Run(cli *CLI) error {
	path := config.ConfigPath()
	if _, err := os.Stat(path); err == nil && !c.Force {
		return fmt.Errorf("config file %s already exists, use --force to overwrite", path)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout(), "Wrote %s\n", path)
	return nil
}

func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Fprintf(cli.stdout(), "gridplane version: %s\n", Version)
	return nil
}

// readOverrides decodes a YAML overrides file; an empty path means none.
func readOverrides(path string) (*plane.Overrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var o plane.Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &o, nil
}

var errBadPoint = errors.New("point must be X,Y")

// parsePoint parses a "X,Y" pixel position
func parsePoint(raw string) (plane.Point, error) {
	xs, ys, ok := strings.Cut(raw, ",")
	if !ok {
		return plane.Point{}, fmt.Errorf("%w: %q", errBadPoint, raw)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return plane.Point{}, fmt.Errorf("%w: %q", errBadPoint, raw)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return plane.Point{}, fmt.Errorf("%w: %q", errBadPoint, raw)
	}
	return plane.Point{X: x, Y: y}, nil
}
