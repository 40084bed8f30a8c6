package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshvictor1024/go-fractal/pkg/types"
)

// Parse builds the configuration from command-line arguments (without the
// program name). When -config names a file, the file replaces the defaults
// and flags given explicitly still take precedence over it.
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	var path string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&path, "config", "", "YAML configuration file")
	registerFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrInvalidConfig, fs.Arg(0))
	}

	if path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return nil, err
		}
		// replay explicit flags on top of the file
		replay := flag.NewFlagSet(name, flag.ContinueOnError)
		replay.SetOutput(io.Discard)
		registerFlags(replay, fileCfg)
		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "config" || setErr != nil {
				return
			}
			setErr = replay.Set(f.Name, f.Value.String())
		})
		if setErr != nil {
			return nil, setErr
		}
		cfg = *fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func registerFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Var((*dimensionValue)(&cfg.Dimension), "size", "window or picture size as WxH")
	fs.Var((*boundsValue)(&cfg.Bounds), "bounds", "region as xmin,xmax,ymin,ymax")
	fs.Var((*complexValue)(&cfg.Init), "init", "julia constant or mandelbrot start as re,im")
	fs.BoolVar(&cfg.Fullscreen, "fullscreen", cfg.Fullscreen, "use a fullscreen window")
	fs.IntVar(&cfg.Threads, "threads", cfg.Threads, "number of render workers")
	fs.IntVar(&cfg.MaxIterations, "iterations", cfg.MaxIterations, "maximum iterations per point")
	fs.BoolVar(&cfg.Julia, "julia", cfg.Julia, "render the julia set")
	fs.BoolVar(&cfg.Photo, "photo", cfg.Photo, "render one picture and exit")
	fs.StringVar(&cfg.PictureName, "picture-name", cfg.PictureName, "file name stem of saved pictures")
	fs.BoolVar(&cfg.Capture, "capture", cfg.Capture, "render a zoom sequence and exit")
	fs.Float64Var(&cfg.CaptureZoomSpeed, "zoom-speed", cfg.CaptureZoomSpeed, "zoom factor applied between captured frames")
	fs.IntVar(&cfg.CaptureFrames, "frames", cfg.CaptureFrames, "number of captured frames")
	fs.BoolVar(&cfg.Quiet, "quiet", cfg.Quiet, "do not print render progress")
	fs.DurationVar(&cfg.ProgressInterval, "progress-interval", cfg.ProgressInterval, "how often render progress is sampled")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve prometheus metrics on this address")
	fs.StringVar(&cfg.PreviewAddr, "preview-addr", cfg.PreviewAddr, "serve a websocket frame preview on this address")
}

type dimensionValue types.Dimension

func (v *dimensionValue) String() string {
	return types.Dimension(*v).String()
}

func (v *dimensionValue) Set(s string) error {
	d, err := ParseDimension(s)
	if err != nil {
		return err
	}
	*v = dimensionValue(d)
	return nil
}

type boundsValue types.Bounds

func (v *boundsValue) String() string {
	b := types.Bounds(*v)
	return formatFloats(b.Xmin, b.Xmax, b.Ymin, b.Ymax)
}

func (v *boundsValue) Set(s string) error {
	b, err := ParseBounds(s)
	if err != nil {
		return err
	}
	*v = boundsValue(b)
	return nil
}

type complexValue types.Complex

func (v *complexValue) String() string {
	return formatFloats(v.Re, v.Im)
}

func (v *complexValue) Set(s string) error {
	c, err := ParseComplex(s)
	if err != nil {
		return err
	}
	*v = complexValue(c)
	return nil
}

// ParseDimension parses "WxH".
func ParseDimension(s string) (types.Dimension, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return types.Dimension{}, fmt.Errorf("size %q is not WxH", s)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return types.Dimension{}, fmt.Errorf("size %q: bad width: %w", s, err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return types.Dimension{}, fmt.Errorf("size %q: bad height: %w", s, err)
	}
	return types.Dimension{Width: width, Height: height}, nil
}

// ParseBounds parses "xmin,xmax,ymin,ymax".
func ParseBounds(s string) (types.Bounds, error) {
	f, err := parseFloats(s, 4)
	if err != nil {
		return types.Bounds{}, fmt.Errorf("bounds: %w", err)
	}
	return types.Bounds{Xmin: f[0], Xmax: f[1], Ymin: f[2], Ymax: f[3]}, nil
}

// ParseComplex parses "re,im".
func ParseComplex(s string) (types.Complex, error) {
	f, err := parseFloats(s, 2)
	if err != nil {
		return types.Complex{}, fmt.Errorf("init: %w", err)
	}
	return types.Complex{Re: f[0], Im: f[1]}, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q: want %d comma separated numbers, got %d", s, n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, err)
		}
		out[i] = f
	}
	return out, nil
}

func formatFloats(fs ...float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
