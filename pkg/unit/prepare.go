package unit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"fastbuild/pkg/utils"
)

// PrepareOptions configures a Preparer
type PrepareOptions struct {
	Root         string
	Dest         string // output root, relative to Root
	SourceSuffix string
	Jobs         int
	// Progress receives one "preparing <file>" line per unit, may be nil
	Progress io.Writer
	Logger   *slog.Logger
}

// Outcome describes what happened to one unit
type Outcome struct {
	File        string
	Header      string // declaration output path
	Source      string // definition output path
	Functions   int
	WroteHeader bool
	WroteSource bool
}

// Preparer runs the pipeline over many units and writes both outputs of
// each below the destination root
type Preparer struct {
	opts        PrepareOptions
	transformer *Transformer
	writer      *Writer
	log         *slog.Logger
	progressMu  sync.Mutex
}

// NewPreparer creates a preparer. The writer is shared across runs so that
// repeated runs (watch mode) skip unchanged outputs without touching disk.
func NewPreparer(opts PrepareOptions, t *Transformer, w *Writer) *Preparer {
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	if opts.SourceSuffix == "" {
		opts.SourceSuffix = "cpp"
	}
	if w == nil {
		w = NewWriter()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Preparer{opts: opts, transformer: t, writer: w, log: log}
}

// OutputPaths returns where the declaration and definition texts of the
// root-relative file are written
func (p *Preparer) OutputPaths(file string) (header, source string) {
	header = filepath.Join(p.opts.Root, p.opts.Dest, filepath.FromSlash(file))
	source = utils.SubstituteSuffix(header, p.opts.SourceSuffix)
	return header, source
}

// Prepare processes files on up to Jobs workers. Units share no state; the
// first failing unit cancels the remaining ones and its error is returned.
// Outcomes are in the order of files.
func (p *Preparer) Prepare(ctx context.Context, files []string) ([]Outcome, error) {
	outcomes := make([]Outcome, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)

	for i, file := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			outcome, err := p.PrepareFile(file)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// PrepareFile runs the pipeline on one root-relative file and writes its
// outputs
func (p *Preparer) PrepareFile(file string) (Outcome, error) {
	p.progress(file)

	content, err := os.ReadFile(filepath.Join(p.opts.Root, filepath.FromSlash(file)))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read file %s: %w", file, err)
	}

	res, err := p.transformer.Transform(file, string(content))
	if err != nil {
		return Outcome{}, err
	}

	header, source := p.OutputPaths(file)
	if header == source {
		return Outcome{}, fmt.Errorf("%s already has suffix %q, outputs would collide", file, p.opts.SourceSuffix)
	}
	out := Outcome{File: file, Header: header, Source: source, Functions: res.Functions}

	if out.WroteHeader, err = p.writer.Write(header, res.Declarations); err != nil {
		return Outcome{}, err
	}
	if out.WroteSource, err = p.writer.Write(source, res.Definitions); err != nil {
		return Outcome{}, err
	}

	p.log.Debug("prepared unit", "file", file, "functions", out.Functions,
		"header_written", out.WroteHeader, "source_written", out.WroteSource)
	return out, nil
}

func (p *Preparer) progress(file string) {
	if p.opts.Progress == nil {
		return
	}
	p.progressMu.Lock()
	defer p.progressMu.Unlock()
	fmt.Fprintf(p.opts.Progress, "preparing %s\n", file)
}
