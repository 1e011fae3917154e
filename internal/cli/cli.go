package cli

import (
	"context"
	"io"

	"github.com/alecthomas/kong"
)

// CLI is the main CLI structure with embedded context
type CLI struct {
	ctx context.Context // Store context for commands to use
	out io.Writer       // stdout when nil

	Serve   ServeCmd   `cmd:"serve" help:"Serve interactive coordinate planes over HTTP"`
	Render  RenderCmd  `cmd:"render" help:"Render a single plane to SVG"`
	Export  ExportCmd  `cmd:"export" help:"Render stored presets to SVG files"`
	Preset  PresetCmd  `cmd:"preset" help:"Manage stored plane presets"`
	Config  ConfigCmd  `cmd:"config" help:"Manage configuration"`
	Version VersionCmd `cmd:"version" help:"Show version"`
}

// Context returns the CLI's context for use by commands.
// This allows commands to access the context without directly accessing
// the unexported ctx field.
func (c *CLI) Context() context.Context {
	return c.ctx
}

type ServeCmd struct {
	Addr string `help:"Listen address, overrides the configured one" placeholder:"HOST:PORT"`
}

type RenderCmd struct {
	Preset string   `help:"Start from a stored preset instead of the configured graph"`
	Config string   `help:"YAML file with plane overrides"`
	Point  []string `help:"Replay a click at pixel X,Y (repeatable)" placeholder:"X,Y" sep:"none"`
	Output string   `help:"Output file path, - for stdout" short:"o" default:"plane.svg"`
}

type ExportCmd struct {
	Presets []string `arg:"" optional:"" help:"Presets to export, all when omitted"`
	Dir     string   `help:"Output directory" default:"."`
}

type PresetCmd struct {
	Save   PresetSaveCmd   `cmd:"" help:"Save a preset from a YAML overrides file"`
	List   PresetListCmd   `cmd:"" help:"List stored presets"`
	Show   PresetShowCmd   `cmd:"" help:"Print a preset as YAML"`
	Delete PresetDeleteCmd `cmd:"" help:"Delete a preset"`
}

type PresetSaveCmd struct {
	Name   string `arg:"" help:"Preset name"`
	Config string `help:"YAML file with plane overrides"`
}

type PresetListCmd struct{}

type PresetShowCmd struct {
	Name string `arg:"" help:"Preset name"`
}

type PresetDeleteCmd struct {
	Name string `arg:"" help:"Preset name"`
}

type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"Print the effective configuration"`
	Init ConfigInitCmd `cmd:"" help:"Write the effective configuration to the config file"`
}

type ConfigShowCmd struct{}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file"`
}

type VersionCmd struct{}

// ExecuteWithContext executes the CLI with a context that can be cancelled
func ExecuteWithContext(ctx context.Context) error {
	cli := &CLI{ctx: ctx}
	kongCtx := kong.Parse(cli,
		kong.Name("gridplane"),
		kong.Description("Interactive Cartesian coordinate planes with grid-snapped points."),
		kong.UsageOnError(),
	)

	// Bind CLI instance so commands can access the context
	return kongCtx.Run(cli)
}

// Execute executes the CLI with a background context (for backwards compatibility)
func Execute() error {
	return ExecuteWithContext(context.Background())
}
