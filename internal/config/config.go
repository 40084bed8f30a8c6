// Package config assembles and validates the program options from defaults,
// an optional YAML file and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshvictor1024/go-fractal/internal/logging"
	"github.com/joshvictor1024/go-fractal/internal/view"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Minimum values accepted by Validate.
const (
	MinWidth      = 128
	MinHeight     = 128
	MinThreads    = 1
	MinIterations = 4
)

// MinCaptureZoomSpeed is the exclusive lower bound of the capture zoom
// speed. Each zoom moves every side inwards by span/(2*speed), so at 1 or
// below the bounds collapse or flip.
const MinCaptureZoomSpeed = view.MinZoomFactor

// Config is the complete set of program options.
//
// All duration fields accept standard Go duration strings like "500ms", "1s".
type Config struct {
	// Dimension is the size of the window or of saved pictures.
	Dimension types.Dimension `yaml:"dimension"`

	// Bounds is the initial region of the complex plane.
	Bounds types.Bounds `yaml:"bounds"`

	// Init is c for Julia sets and z0 for the Mandelbrot set.
	Init types.Complex `yaml:"init"`

	Fullscreen bool `yaml:"fullscreen"`

	// Threads is the number of render workers.
	Threads int `yaml:"threads"`

	// MaxIterations caps the iterations per point.
	MaxIterations int `yaml:"maxIterations"`

	Julia bool `yaml:"julia"`

	// Photo renders one picture named <PictureName>0.bmp and exits.
	Photo bool `yaml:"photo"`

	// PictureName is the file name stem of saved pictures.
	PictureName string `yaml:"pictureName"`

	// Capture renders CaptureFrames pictures, zooming by CaptureZoomSpeed
	// between frames. Photo and Capture are mutually exclusive.
	Capture          bool    `yaml:"capture"`
	CaptureZoomSpeed float64 `yaml:"captureZoomSpeed"`
	CaptureFrames    int     `yaml:"captureFrames"`

	// Quiet turns off progress and pass completion messages.
	Quiet bool `yaml:"quiet"`

	// ProgressInterval is how often progress is sampled during a pass.
	ProgressInterval time.Duration `yaml:"progressInterval"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`

	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string `yaml:"metricsAddr"`

	// PreviewAddr, when set, serves a websocket feed of finished frames.
	PreviewAddr string `yaml:"previewAddr"`
}

// DefaultConfig returns the defaults of every option.
func DefaultConfig() Config {
	return Config{
		Dimension:        types.Dimension{Width: 800, Height: 600},
		Bounds:           types.Bounds{Xmin: -2, Xmax: 2, Ymin: -1.5, Ymax: 1.5},
		Init:             types.Complex{},
		Threads:          2,
		MaxIterations:    32,
		PictureName:      "mandel",
		CaptureZoomSpeed: 100,
		CaptureFrames:    150,
		ProgressInterval: time.Second,
		LogLevel:         "info",
	}
}

// Validate checks every option once, before anything is started.
func (cfg *Config) Validate() error {
	if cfg.Dimension.Width < MinWidth {
		return fmt.Errorf("%w: width %d is below the minimum %d", ErrInvalidConfig, cfg.Dimension.Width, MinWidth)
	}
	if cfg.Dimension.Height < MinHeight {
		return fmt.Errorf("%w: height %d is below the minimum %d", ErrInvalidConfig, cfg.Dimension.Height, MinHeight)
	}
	if cfg.Bounds.Xmin >= cfg.Bounds.Xmax {
		return fmt.Errorf("%w: bounds xmin (%v) must be < xmax (%v)", ErrInvalidConfig, cfg.Bounds.Xmin, cfg.Bounds.Xmax)
	}
	if cfg.Bounds.Ymin >= cfg.Bounds.Ymax {
		return fmt.Errorf("%w: bounds ymin (%v) must be < ymax (%v)", ErrInvalidConfig, cfg.Bounds.Ymin, cfg.Bounds.Ymax)
	}
	if cfg.Threads < MinThreads {
		return fmt.Errorf("%w: threads %d is below the minimum %d", ErrInvalidConfig, cfg.Threads, MinThreads)
	}
	if cfg.MaxIterations < MinIterations {
		return fmt.Errorf("%w: iterations %d is below the minimum %d", ErrInvalidConfig, cfg.MaxIterations, MinIterations)
	}
	if cfg.CaptureZoomSpeed <= MinCaptureZoomSpeed {
		return fmt.Errorf("%w: capture zoom speed must be > %v, got %v", ErrInvalidConfig, MinCaptureZoomSpeed, cfg.CaptureZoomSpeed)
	}
	if cfg.CaptureFrames < 1 {
		return fmt.Errorf("%w: capture frames must be >= 1, got %d", ErrInvalidConfig, cfg.CaptureFrames)
	}
	if cfg.Photo && cfg.Capture {
		return fmt.Errorf("%w: photo and capture modes are mutually exclusive", ErrInvalidConfig)
	}
	if cfg.PictureName == "" {
		return fmt.Errorf("%w: picture name is empty", ErrInvalidConfig)
	}
	if cfg.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress interval must be >= 0, got %v", ErrInvalidConfig, cfg.ProgressInterval)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Mode returns the set selected by the Julia flag.
func (cfg *Config) Mode() types.Mode {
	if cfg.Julia {
		return types.Julia
	}
	return types.Mandelbrot
}

// LoadConfig reads a YAML file over the defaults and validates the result.
// Fields missing from the file keep their defaults; fields present keep the
// file's value even when it is zero.
func LoadConfig(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}
