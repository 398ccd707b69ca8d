// Package batch renders every matching image under a directory, the way
// the interactive tool renders one: decode, fit to the output resolution,
// render, write "<name>_ascii.<ext>" next to the other results.
package batch

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/klauspost/compress/gzip"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/wbrown/img2ascii"
	"github.com/wbrown/img2ascii/imageutil"
	"github.com/wbrown/img2ascii/internal/logx"
)

// ErrNoInputs reports an input directory without matching files.
var ErrNoInputs = errors.New("no matching input files")

// ErrNameTaken reports an input whose output file name an earlier input
// in the same directory already owns, such as a.png and a.gif.
var ErrNameTaken = errors.New("output name already taken")

// OutputSuffix is appended to the input's base name.
const OutputSuffix = "_ascii"

// Options control one batch run.
type Options struct {
	Renderer  *img2ascii.Renderer
	Tolerance int
	Mode      img2ascii.Mode

	// Width and Height are the size every input is fitted to before
	// rendering. Zero on one side keeps the aspect ratio; zero on both
	// keeps the decoded size.
	Width         int
	Height        int
	Interpolation imageutil.Interpolation

	// Include holds file name patterns. Matching is case-insensitive.
	Include []string

	// Compress writes text output gzip-compressed as .txt.gz.
	Compress bool

	Workers int
	Log     logx.Logger
}

// Result describes one written output.
type Result struct {
	Input     string
	Output    string
	Cols      int
	Rows      int
	Duplicate bool
}

// Skip records an input that produced no output.
type Skip struct {
	Input string
	Err   error
}

// Report summarizes a batch run. Results and skips are sorted by input
// path.
type Report struct {
	Rendered   []Result
	Skipped    []Skip
	Duplicates int
	Elapsed    time.Duration
}

// Matcher selects input files by base name.
type Matcher struct {
	globs []glob.Glob
}

// NewMatcher compiles the include patterns.
func NewMatcher(patterns []string) (*Matcher, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no include patterns", img2ascii.ErrInvalidConfig)
	}
	m := &Matcher{}
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("%w: bad include pattern %q: %v",
				img2ascii.ErrInvalidConfig, p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether the base name of path matches any pattern.
func (m *Matcher) Match(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Collect lists the matching files under root in lexical order. Files
// this package wrote earlier are left out so reruns do not render their
// own output.
func Collect(root string, m *Matcher) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if m.Match(path) && !IsOutput(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return paths, nil
}

// IsOutput reports whether path looks like a file named by OutputName.
func IsOutput(path string) bool {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	return strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), OutputSuffix)
}

// OutputName returns the file name written for input.
func OutputName(input string, mode img2ascii.Mode, compress bool) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + OutputSuffix
	if mode == img2ascii.ModeRaster {
		return base + ".png"
	}
	if compress {
		return base + ".txt.gz"
	}
	return base + ".txt"
}

// claimNames keeps the first input, in lexical order, for each output
// path relative to root. Later inputs mapping to the same path are
// returned as skips.
func claimNames(root string, inputs []string, mode img2ascii.Mode, compress bool) ([]string, []Skip) {
	owners := make(map[string]string, len(inputs))
	var keep []string
	var taken []Skip
	for _, in := range inputs {
		dir, err := filepath.Rel(root, filepath.Dir(in))
		if err != nil {
			dir = filepath.Dir(in)
		}
		name := filepath.Join(dir, OutputName(in, mode, compress))
		if owner, ok := owners[name]; ok {
			taken = append(taken, Skip{
				Input: in,
				Err:   fmt.Errorf("%w: %s by %s", ErrNameTaken, name, owner),
			})
			continue
		}
		owners[name] = in
		keep = append(keep, in)
	}
	return keep, taken
}

// Run renders every matching file under inputDir into outputDir.
// Inputs that cannot be decoded are logged and skipped, as are inputs
// whose output name an earlier input already owns. Inputs whose
// pixels equal an earlier input are rendered once and the encoded
// output is reused. An input directory without matches fails with
// ErrNoInputs. Run stops early only when ctx is cancelled or an
// output cannot be written.
func Run(ctx context.Context, inputDir, outputDir string, opts Options) (*Report, error) {
	if opts.Renderer == nil {
		return nil, fmt.Errorf("%w: no renderer", img2ascii.ErrInvalidConfig)
	}
	log := opts.Log
	if log == nil {
		log = logx.Discard
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	m, err := NewMatcher(opts.Include)
	if err != nil {
		return nil, err
	}
	inputs, err := Collect(inputDir, m)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoInputs, inputDir)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	log.LogPrintf(logx.INFO, "rendering %d files from %s with %d workers",
		len(inputs), inputDir, workers)

	start := time.Now()
	r := &run{
		opts:   opts,
		log:    log,
		inDir:  inputDir,
		outDir: outputDir,
		cache:  make(map[[32]byte]*entry),
		report: &Report{},
	}
	inputs, taken := claimNames(inputDir, inputs, opts.Mode, opts.Compress)
	for _, sk := range taken {
		r.skip(sk.Input, sk.Err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, in := range inputs {
		in := in
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return r.process(gctx, in)
		})
	}
	err = g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	rep := r.report
	sort.Slice(rep.Rendered, func(i, j int) bool { return rep.Rendered[i].Input < rep.Rendered[j].Input })
	sort.Slice(rep.Skipped, func(i, j int) bool { return rep.Skipped[i].Input < rep.Skipped[j].Input })
	rep.Elapsed = time.Since(start)

	log.LogPrintf(logx.INFO, "rendered %d files (%d duplicates), skipped %d in %v",
		len(rep.Rendered), rep.Duplicates, len(rep.Skipped), rep.Elapsed)
	return rep, err
}

// entry is one distinct input's encoded output. done is closed once
// data or err is set.
type entry struct {
	done       chan struct{}
	data       []byte
	cols, rows int
	err        error
}

type run struct {
	opts   Options
	log    logx.Logger
	inDir  string
	outDir string

	mu     sync.Mutex
	cache  map[[32]byte]*entry
	report *Report
}

func (r *run) process(ctx context.Context, input string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := imageutil.LoadImageResized(input, r.opts.Width, r.opts.Height, r.opts.Interpolation)
	if err != nil {
		r.skip(input, err)
		return nil
	}

	key := r.fingerprint(img)
	e, owner := r.claim(key)
	if owner {
		e.data, e.cols, e.rows, e.err = r.render(img)
		close(e.done)
	} else {
		select {
		case <-e.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if e.err != nil {
		r.skip(input, e.err)
		return nil
	}

	out, err := r.outputPath(input)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, e.data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	r.mu.Lock()
	r.report.Rendered = append(r.report.Rendered, Result{
		Input:     input,
		Output:    out,
		Cols:      e.cols,
		Rows:      e.rows,
		Duplicate: !owner,
	})
	if !owner {
		r.report.Duplicates++
	}
	r.mu.Unlock()

	if owner {
		r.log.LogPrintf(logx.INFO, "%s -> %s (%dx%d glyphs)", input, out, e.cols, e.rows)
	} else {
		r.log.LogPrintf(logx.INFO, "%s -> %s (duplicate)", input, out)
	}
	return nil
}

// outputPath places the output for input under outDir, mirroring the
// input's subdirectory below inDir.
func (r *run) outputPath(input string) (string, error) {
	dir := r.outDir
	if rel, err := filepath.Rel(r.inDir, filepath.Dir(input)); err == nil && rel != "." {
		dir = filepath.Join(dir, rel)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return filepath.Join(dir, OutputName(input, r.opts.Mode, r.opts.Compress)), nil
}

// claim returns the cache entry for key, creating it when absent. The
// caller that created it must fill it in and close done.
func (r *run) claim(key [32]byte) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.cache[key]; ok {
		return e, false
	}
	e := &entry{done: make(chan struct{})}
	r.cache[key] = e
	return e, true
}

func (r *run) skip(input string, err error) {
	r.log.LogPrintf(logx.WARN, "skipping %s: %v", input, err)
	r.mu.Lock()
	r.report.Skipped = append(r.report.Skipped, Skip{Input: input, Err: err})
	r.mu.Unlock()
}

// fingerprint hashes the decoded pixels together with every setting that
// changes the rendered output.
func (r *run) fingerprint(img *imageutil.RGBAImage) [32]byte {
	h := blake3.New()
	var hdr [8 * 5]byte
	binary.LittleEndian.PutUint64(hdr[0:], uint64(img.Width()))
	binary.LittleEndian.PutUint64(hdr[8:], uint64(img.Height()))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(r.opts.Tolerance))
	binary.LittleEndian.PutUint64(hdr[24:], uint64(r.opts.Mode))
	binary.LittleEndian.PutUint64(hdr[32:], uint64(r.opts.Renderer.BlockSize()))
	h.Write(hdr[:])

	rowBytes := img.Width() * 4
	for y := 0; y < img.Height(); y++ {
		off := y * img.Stride
		h.Write(img.Pix[off : off+rowBytes])
	}

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// render runs the pipeline and encodes the output file contents.
func (r *run) render(img *imageutil.RGBAImage) ([]byte, int, int, error) {
	out, err := r.opts.Renderer.Render(img, r.opts.Tolerance, r.opts.Mode)
	if err != nil {
		return nil, 0, 0, err
	}
	cols, rows := out.Grid.Cols, out.Grid.Rows
	if cols == 0 || rows == 0 {
		return nil, 0, 0, fmt.Errorf("image %dx%d is smaller than one block",
			img.Width(), img.Height())
	}

	var buf bytes.Buffer
	switch r.opts.Mode {
	case img2ascii.ModeRaster:
		if err := imageutil.EncodeImage(&buf, out.Image, ".png"); err != nil {
			return nil, 0, 0, err
		}
	default:
		if err := WriteText(&buf, out.Lines, r.opts.Compress); err != nil {
			return nil, 0, 0, err
		}
	}
	return buf.Bytes(), cols, rows, nil
}

// WriteText writes lines, each terminated by a newline, optionally
// gzip-compressed.
func WriteText(w io.Writer, lines []string, compress bool) error {
	if !compress {
		for _, line := range lines {
			if _, err := w.Write([]byte(line + "\n")); err != nil {
				return err
			}
		}
		return nil
	}

	zw := gzip.NewWriter(w)
	for _, line := range lines {
		if _, err := zw.Write([]byte(line + "\n")); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}
