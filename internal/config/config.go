// Package config holds the settings shared by the asciify command and the
// batch driver: built-in defaults, an optional TOML file, and command line
// flags that override both.
package config

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/internal/logx"
)

// ErrBadResolution reports a resolution that is neither a preset nor WxH.
var ErrBadResolution = errors.New("bad resolution")

// Config is the full set of user settings. Field names double as TOML
// keys and flag names.
type Config struct {
	Resolution    string   `toml:"resolution"`
	Tolerance     int      `toml:"tolerance"`
	BlockSize     int      `toml:"block_size"`
	Alphabet      string   `toml:"alphabet"`
	Overflow      string   `toml:"overflow"`
	Interpolation string   `toml:"interpolation"`
	Mode          string   `toml:"mode"`
	Font          string   `toml:"font"`
	FallbackFont  string   `toml:"fallback_font"`
	Background    string   `toml:"background"`
	Workers       int      `toml:"workers"`
	Include       []string `toml:"include"`
	LogLevel      string   `toml:"log_level"`
	DebugDir      string   `toml:"debug_dir"`
}

// DefaultConfig is used for every setting neither the file nor the
// flags mention.
var DefaultConfig = Config{
	Resolution:    "1080p",
	Tolerance:     img2ascii.DefaultEdgeTolerance,
	BlockSize:     img2ascii.DefaultBlockSize,
	Alphabet:      img2ascii.DefaultAlphabet.String(),
	Overflow:      img2ascii.OverflowWrap.String(),
	Interpolation: imageutil.InterpolationLanczos.String(),
	Mode:          img2ascii.ModeRaster.String(),
	Background:    "#000000",
	Workers:       runtime.NumCPU(),
	Include:       []string{"*.{png,jpg,jpeg,bmp,tif,tiff,gif,webp}"},
	LogLevel:      logx.INFO.String(),
}

// Load reads a TOML file on top of DefaultConfig.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Decode(string(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML text on top of DefaultConfig. Keys the text sets but
// Config does not know are an error, so typos do not pass silently.
func Decode(text string) (Config, error) {
	cfg := DefaultConfig
	cfg.Include = append([]string(nil), DefaultConfig.Include...)

	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: unknown keys: %s",
			img2ascii.ErrInvalidConfig, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// RegisterFlags defines one flag per setting on fs, writing into c and
// using c's current values as flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Resolution, "resolution", c.Resolution,
		"Output resolution: "+strings.Join(PresetNames(), ", ")+", or WxH")
	fs.IntVar(&c.Tolerance, "tolerance", c.Tolerance,
		"Edge tolerance on the normalized gradient magnitude (0-100)")
	fs.IntVar(&c.BlockSize, "block", c.BlockSize,
		"Block size in pixels; one glyph per block")
	fs.StringVar(&c.Alphabet, "alphabet", c.Alphabet,
		"Luminance glyphs from darkest to brightest")
	fs.StringVar(&c.Overflow, "overflow", c.Overflow,
		"Brightest-block policy: wrap or clamp")
	fs.StringVar(&c.Interpolation, "interpolation", c.Interpolation,
		"Resize filter: lanczos, area, linear or nearest")
	fs.StringVar(&c.Mode, "mode", c.Mode,
		"Output mode: text or raster")
	fs.StringVar(&c.Font, "font", c.Font,
		"TTF file for raster glyphs (default: built-in Go Regular)")
	fs.StringVar(&c.FallbackFont, "fallbackfont", c.FallbackFont,
		"TTF file for glyphs missing from -font")
	fs.StringVar(&c.Background, "background", c.Background,
		"Raster background color as #rrggbb")
	fs.IntVar(&c.Workers, "workers", c.Workers,
		"Images rendered in parallel in batch mode")
	fs.Var((*patternList)(&c.Include), "include",
		"Comma separated file patterns for batch mode")
	fs.StringVar(&c.LogLevel, "loglevel", c.LogLevel,
		"Log level: debug, info, notice, warn or error")
	fs.StringVar(&c.DebugDir, "debug-dir", c.DebugDir,
		"Directory for intermediate pipeline images")
}

// flagFields maps flag names to the Config field they set.
var flagFields = map[string]func(dst, src *Config){
	"resolution":    func(d, s *Config) { d.Resolution = s.Resolution },
	"tolerance":     func(d, s *Config) { d.Tolerance = s.Tolerance },
	"block":         func(d, s *Config) { d.BlockSize = s.BlockSize },
	"alphabet":      func(d, s *Config) { d.Alphabet = s.Alphabet },
	"overflow":      func(d, s *Config) { d.Overflow = s.Overflow },
	"interpolation": func(d, s *Config) { d.Interpolation = s.Interpolation },
	"mode":          func(d, s *Config) { d.Mode = s.Mode },
	"font":          func(d, s *Config) { d.Font = s.Font },
	"fallbackfont":  func(d, s *Config) { d.FallbackFont = s.FallbackFont },
	"background":    func(d, s *Config) { d.Background = s.Background },
	"workers":       func(d, s *Config) { d.Workers = s.Workers },
	"include":       func(d, s *Config) { d.Include = append([]string(nil), s.Include...) },
	"loglevel":      func(d, s *Config) { d.LogLevel = s.LogLevel },
	"debug-dir":     func(d, s *Config) { d.DebugDir = s.DebugDir },
}

// Overlay copies into dst the settings of src whose flags were set
// explicitly on fs. Flags left at their default do not override values
// loaded from a file.
func Overlay(dst *Config, src *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		if set, ok := flagFields[f.Name]; ok {
			set(dst, src)
		}
	})
}

type patternList []string

func (p *patternList) String() string {
	if p == nil {
		return ""
	}
	return strings.Join(*p, ",")
}

func (p *patternList) Set(s string) error {
	*p = nil
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*p = append(*p, part)
		}
	}
	if len(*p) == 0 {
		return errors.New("empty pattern list")
	}
	return nil
}

// Resolution is a target output size in pixels. A zero Resolution keeps
// the input size.
type Resolution struct {
	Width  int
	Height int
}

// IsZero reports whether the resolution keeps the input size.
func (r Resolution) IsZero() bool {
	return r.Width == 0 && r.Height == 0
}

func (r Resolution) String() string {
	if r.IsZero() {
		return "native"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

var presets = map[string]Resolution{
	"native": {},
	"720p":   {1280, 720},
	"1080p":  {1920, 1080},
	"1440p":  {2560, 1440},
	"4k":     {3840, 2160},
}

// PresetNames lists the resolution presets, smallest first.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := presets[names[i]], presets[names[j]]
		return a.Width*a.Height < b.Width*b.Height
	})
	return names
}

// ParseResolution accepts a preset name or WxH. Either side of WxH may
// be 0 to keep the aspect ratio of the input.
func ParseResolution(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if r, ok := presets[s]; ok {
		return r, nil
	}
	if s == "2160p" || s == "uhd" {
		return presets["4k"], nil
	}

	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %q", ErrBadResolution, s)
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil || width < 0 || height < 0 || width+height == 0 {
		return Resolution{}, fmt.Errorf("%w: %q", ErrBadResolution, s)
	}
	return Resolution{Width: width, Height: height}, nil
}

// ParseColor parses #rrggbb or #rgb into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: bad color %q", img2ascii.ErrInvalidConfig, s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: bad color %q", img2ascii.ErrInvalidConfig, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// RendererOptions translates the settings into Renderer options. The
// rasterizer is left to the caller, since loading a font touches the
// filesystem.
func (c *Config) RendererOptions() ([]img2ascii.RendererOption, error) {
	alphabet, err := img2ascii.ParseAlphabet(c.Alphabet)
	if err != nil {
		return nil, err
	}
	overflow, err := img2ascii.ParseOverflow(c.Overflow)
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(c.Background)
	if err != nil {
		return nil, err
	}
	return []img2ascii.RendererOption{
		img2ascii.WithBlockSize(c.BlockSize),
		img2ascii.WithAlphabet(alphabet),
		img2ascii.WithOverflow(overflow),
		img2ascii.WithBackground(bg),
	}, nil
}

// Validate checks the settings that are not checked by NewRenderer.
func (c *Config) Validate() error {
	if _, err := ParseResolution(c.Resolution); err != nil {
		return err
	}
	if _, ok := imageutil.ParseInterpolation(c.Interpolation); !ok {
		return fmt.Errorf("%w: unknown interpolation %q",
			img2ascii.ErrInvalidConfig, c.Interpolation)
	}
	if _, err := img2ascii.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := logx.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", img2ascii.ErrInvalidConfig, err)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d",
			img2ascii.ErrInvalidConfig, c.Workers)
	}
	if len(c.Include) == 0 {
		return fmt.Errorf("%w: no include patterns", img2ascii.ErrInvalidConfig)
	}
	return nil
}
