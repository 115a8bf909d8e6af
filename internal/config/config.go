// Package config loads nvgrid settings from a TOML file under the user's XDG
// config directory and maps them onto renderer tunables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"charm.land/log/v2"
	"github.com/adrg/xdg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml/v2"

	"nvgrid/internal/render"
	"nvgrid/internal/style"
)

// Config is the on-disk configuration. Every field has a default; the file
// only needs the keys the user wants to change.
type Config struct {
	Font     Font     `toml:"font"`
	Renderer Renderer `toml:"renderer"`
	Neovim   Neovim   `toml:"neovim"`
	Log      Log      `toml:"log"`
}

// Font sets the cell geometry used by the software backend. A real font
// rasterizer would derive these from font metrics.
type Font struct {
	CellWidth  int `toml:"cell_width"`
	CellHeight int `toml:"cell_height"`
}

// Renderer holds the compositor tunables.
type Renderer struct {
	// Transparency is the default background opacity, 0..1.
	Transparency float32 `toml:"transparency"`
	// BackgroundColor is a hex color ("#1e1e2e") used until the remote
	// editor reports its own default colors.
	BackgroundColor string `toml:"background_color"`

	PositionAnimationLength float32 `toml:"position_animation_length"`

	FloatingShadow      bool    `toml:"floating_shadow"`
	FloatingZHeight     float32 `toml:"floating_z_height"`
	LightAngleDegrees   float32 `toml:"light_angle_degrees"`
	FloatingBlur        bool    `toml:"floating_blur"`
	FloatingBlurAmountX float32 `toml:"floating_blur_amount_x"`
	FloatingBlurAmountY float32 `toml:"floating_blur_amount_y"`
}

// Neovim selects how to reach the remote editor.
type Neovim struct {
	// Address of a running instance; empty spawns a child process.
	Address string `toml:"address"`
	// Command is the binary to spawn, "nvim" when empty.
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the settings used when no file exists.
func DefaultConfig() *Config {
	settings := render.DefaultSettings()
	return &Config{
		Font: Font{CellWidth: 8, CellHeight: 16},
		Renderer: Renderer{
			Transparency:            settings.Transparency,
			BackgroundColor:         "#000000",
			PositionAnimationLength: settings.PositionAnimationLength,
			FloatingShadow:          settings.FloatingShadow,
			FloatingZHeight:         settings.FloatingZHeight,
			LightAngleDegrees:       settings.LightAngleDegrees,
			FloatingBlur:            settings.FloatingBlur,
			FloatingBlurAmountX:     settings.FloatingBlurAmountX,
			FloatingBlurAmountY:     settings.FloatingBlurAmountY,
		},
		Neovim: Neovim{Command: "nvim"},
		Log:    Log{Level: "info"},
	}
}

// GetConfigPath returns the config file location under the XDG config home.
// The parent directory is created if needed.
func GetConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("nvgrid", "config.toml"))
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// Load reads the file at path over the defaults. A missing file is not an
// error: the defaults are returned as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault writes the default configuration to path, overwriting
// whatever is there.
func WriteDefault(path string) error {
	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	header := "# nvgrid configuration\n# Every key is optional; absent keys keep their defaults.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// RendererSettings maps the config onto the renderer tunables.
func (c *Config) RendererSettings() render.Settings {
	return render.Settings{
		Transparency:            clamp01(c.Renderer.Transparency),
		PositionAnimationLength: c.Renderer.PositionAnimationLength,
		FloatingShadow:          c.Renderer.FloatingShadow,
		FloatingZHeight:         c.Renderer.FloatingZHeight,
		LightAngleDegrees:       c.Renderer.LightAngleDegrees,
		FloatingBlur:            c.Renderer.FloatingBlur,
		FloatingBlurAmountX:     c.Renderer.FloatingBlurAmountX,
		FloatingBlurAmountY:     c.Renderer.FloatingBlurAmountY,
	}
}

// BackgroundRGBA parses the configured background color.
func (c *Config) BackgroundRGBA() (style.RGBA, error) {
	parsed, err := colorful.Hex(c.Renderer.BackgroundColor)
	if err != nil {
		return style.RGBA{}, fmt.Errorf("background_color %q: %w", c.Renderer.BackgroundColor, err)
	}
	return style.FromColorful(parsed), nil
}

// FontDimensions returns the configured cell size, clamped to sane minimums.
func (c *Config) FontDimensions() render.Dimensions {
	w, h := c.Font.CellWidth, c.Font.CellHeight
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return render.Dimensions{Width: float32(w), Height: float32(h)}
}

// LogLevel parses the configured log level, defaulting to info.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
