package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/batch"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/internal/config"
	"github.com/wbrown/img2ascii/internal/logx"
)

// options are the settings that only make sense on the command line.
type options struct {
	input      string
	output     string
	configPath string
	compress   bool
}

func main() {
	var opts options
	flagCfg := config.DefaultConfig

	flag.StringVar(&opts.input, "input", "",
		"Path to the input image file or directory (required)")
	flag.StringVar(&opts.output, "output", "",
		"Output file, or output directory for a directory input "+
			"(text defaults to stdout, raster to <name>_ascii.png)")
	flag.StringVar(&opts.configPath, "config", "",
		"TOML file with default settings; flags override it")
	flag.BoolVar(&opts.compress, "gzip", false,
		"Gzip text output written to files")
	flagCfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if opts.input == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		return
	}

	cfg := config.DefaultConfig
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(2)
		}
	}
	config.Overlay(&cfg, &flagCfg, flag.CommandLine)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(2)
	}

	lvl, _ := logx.ParseLevel(cfg.LogLevel)
	logger := logx.NewFileLogger(os.Stderr, lvl, logx.ColorAuto)
	log := logx.NewLogToX(logger, "asciify")

	resolutionSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "resolution" {
			resolutionSet = true
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, cfg, resolutionSet, logger, log); err != nil {
		log.LogPrintf(logx.ERROR, "%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, cfg config.Config, resolutionSet bool,
	logger logx.LoggerX, log logx.Logger) error {

	beginInit := time.Now()
	renderer, err := newRenderer(cfg, logger)
	if err != nil {
		return err
	}
	res, _ := config.ParseResolution(cfg.Resolution)
	mode, _ := img2ascii.ParseMode(cfg.Mode)
	interp, _ := imageutil.ParseInterpolation(cfg.Interpolation)
	log.LogPrintf(logx.DEBUG, "initialization time: %v", time.Since(beginInit))

	info, err := os.Stat(opts.input)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return runBatch(ctx, opts, cfg, renderer, res, mode, interp, logger)
	}

	// Text for a terminal follows the terminal width unless a resolution
	// was asked for.
	toTerminal := mode == img2ascii.ModeText && opts.output == "" &&
		term.IsTerminal(int(os.Stdout.Fd()))
	if toTerminal && !resolutionSet {
		if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
			res = config.Resolution{Width: cols * renderer.BlockSize()}
			log.LogPrintf(logx.DEBUG, "fitting %d terminal columns", cols)
		}
	}

	start := time.Now()
	img, err := imageutil.LoadImageResized(opts.input, res.Width, res.Height, interp)
	if err != nil {
		return err
	}

	a, err := renderer.Analyze(img, cfg.Tolerance)
	if err != nil {
		return err
	}
	if cfg.DebugDir != "" {
		if err := a.Save(cfg.DebugDir); err != nil {
			return err
		}
		log.LogPrintf(logx.INFO, "intermediate images written to %s", cfg.DebugDir)
	}

	out, err := a.Render(mode)
	if err != nil {
		return err
	}
	log.LogPrintf(logx.INFO, "rendered %dx%d image as %dx%d glyphs in %v",
		img.Width(), img.Height(), out.Grid.Cols, out.Grid.Rows, time.Since(start))

	switch mode {
	case img2ascii.ModeRaster:
		path := opts.output
		if path == "" {
			path = filepath.Join(filepath.Dir(opts.input),
				batch.OutputName(opts.input, mode, false))
		}
		if err := imageutil.SaveImage(out.Image, path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.LogPrintf(logx.INFO, "output written to %s", path)

	default:
		if opts.output == "" {
			return batch.WriteText(os.Stdout, out.Lines, false)
		}
		compress := opts.compress || strings.HasSuffix(strings.ToLower(opts.output), ".gz")
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		if err := batch.WriteText(f, out.Lines, compress); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", opts.output, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.LogPrintf(logx.INFO, "output written to %s", opts.output)
	}
	return nil
}

func runBatch(ctx context.Context, opts options, cfg config.Config, renderer *img2ascii.Renderer,
	res config.Resolution, mode img2ascii.Mode, interp imageutil.Interpolation,
	logger logx.LoggerX) error {

	outDir := opts.output
	if outDir == "" {
		outDir = filepath.Join(opts.input, "ascii")
	}
	rep, err := batch.Run(ctx, opts.input, outDir, batch.Options{
		Renderer:      renderer,
		Tolerance:     cfg.Tolerance,
		Mode:          mode,
		Width:         res.Width,
		Height:        res.Height,
		Interpolation: interp,
		Include:       cfg.Include,
		Compress:      opts.compress,
		Workers:       cfg.Workers,
		Log:           logx.NewLogToX(logger, "batch"),
	})
	if err != nil {
		if errors.Is(err, context.Canceled) && rep != nil {
			fmt.Printf("Interrupted after %d files\n", len(rep.Rendered))
		}
		return err
	}

	fmt.Printf("Rendered: %d (%d duplicates)\n", len(rep.Rendered), rep.Duplicates)
	fmt.Printf("Skipped: %d\n", len(rep.Skipped))
	for _, s := range rep.Skipped {
		fmt.Printf("  %s: %v\n", s.Input, s.Err)
	}
	fmt.Printf("Computation time: %v\n", rep.Elapsed)
	return nil
}

// newRenderer builds the Renderer described by cfg. A custom font is
// pre-rendered into 8x8 bitmaps scaled up to the block size; a .glyphs
// file from the glyphs command is used as is.
func newRenderer(cfg config.Config, logger logx.LoggerX) (*img2ascii.Renderer, error) {
	rendererOpts, err := cfg.RendererOptions()
	if err != nil {
		return nil, err
	}
	rendererOpts = append(rendererOpts, img2ascii.WithLogger(logx.NewLogToX(logger, "render")))

	if cfg.Font != "" {
		alphabet, _ := img2ascii.ParseAlphabet(cfg.Alphabet)
		runes := img2ascii.GlyphRunes(alphabet)

		var fb *img2ascii.FontBitmaps
		if strings.EqualFold(filepath.Ext(cfg.Font), ".glyphs") {
			fb, err = img2ascii.LoadGlyphData(cfg.Font)
		} else {
			fb, err = img2ascii.LoadFontBitmaps(cfg.Font, cfg.FallbackFont, runes)
		}
		if err != nil {
			return nil, fmt.Errorf("error loading font: %w", err)
		}
		if missing := fb.Missing(runes); len(missing) > 0 {
			logger.LogPrintfX("asciify", logx.WARN, "%s has no glyph for %q", fb.Name(), string(missing))
		}
		fb.Scale = max(cfg.BlockSize/img2ascii.GlyphWidth, 1)
		rendererOpts = append(rendererOpts, img2ascii.WithRasterizer(fb))
	}
	return img2ascii.NewRenderer(rendererOpts...)
}
