// Package unit runs the whole pipeline for compilation units: parse, group,
// optimize and render. Each unit is processed independently; units share no
// state, so batches run them on parallel workers.
package unit

import (
	"fmt"
	"log/slog"

	"fastbuild/pkg/ast"
	"fastbuild/pkg/formatter"
	"fastbuild/pkg/optimizer"
	"fastbuild/pkg/parser"
)

// Stage selects how far Build carries a tree
type Stage int

const (
	StageRaw Stage = iota
	StageGrouped
	StageOptimized
)

// ParseStage converts a stage name into a Stage
func ParseStage(name string) (Stage, error) {
	switch name {
	case "raw":
		return StageRaw, nil
	case "grouped":
		return StageGrouped, nil
	case "optimized", "":
		return StageOptimized, nil
	}
	return 0, fmt.Errorf("unknown stage %q (want raw, grouped or optimized)", name)
}

// Result holds both rendered texts of one unit
type Result struct {
	Declarations string
	Definitions  string
	Functions    int
}

// Options configures a Transformer
type Options struct {
	Formatter   *formatter.Formatter
	ClangFormat bool
	// HeaderSuffix and SourceSuffix select the clang-format language mode
	HeaderSuffix string
	SourceSuffix string
	Logger       *slog.Logger
}

// Transformer turns source text into declaration and definition text
type Transformer struct {
	opts Options
	log  *slog.Logger
}

// NewTransformer creates a transformer, filling in defaults for unset options
func NewTransformer(opts Options) *Transformer {
	if opts.Formatter == nil {
		opts.Formatter = formatter.New()
	}
	if opts.HeaderSuffix == "" {
		opts.HeaderSuffix = "hpp"
	}
	if opts.SourceSuffix == "" {
		opts.SourceSuffix = "cpp"
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Transformer{opts: opts, log: log}
}

// Build parses content and carries the tree up to stage
func (t *Transformer) Build(filename, content string, stage Stage) (*ast.File, error) {
	p := parser.New()
	file, err := p.Parse(filename, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	pushes, pops := p.Balance()
	t.log.Debug("parsed unit", "file", filename, "containers", pushes, "closed", pops)

	if stage == StageRaw {
		return file, nil
	}
	parser.GroupChars(file)

	if stage == StageGrouped {
		return file, nil
	}
	if err := optimizer.Optimize(file); err != nil {
		return nil, fmt.Errorf("failed to optimize %s: %w", filename, parser.Locate(err, filename, content))
	}

	return file, nil
}

// Transform runs the full pipeline on one unit. There is no partial
// success: either both texts are produced or an error is returned.
func (t *Transformer) Transform(filename, content string) (*Result, error) {
	file, err := t.Build(filename, content, StageOptimized)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Declarations: t.opts.Formatter.RenderDeclarations(file),
		Definitions:  t.opts.Formatter.RenderDefinitions(file),
		Functions:    len(ast.CollectFunctions(file)),
	}

	if t.opts.ClangFormat {
		if res.Declarations, err = t.opts.Formatter.FormatWithClang(res.Declarations, t.opts.HeaderSuffix); err != nil {
			return nil, fmt.Errorf("failed to format declarations of %s: %w", filename, err)
		}
		if res.Definitions, err = t.opts.Formatter.FormatWithClang(res.Definitions, t.opts.SourceSuffix); err != nil {
			return nil, fmt.Errorf("failed to format definitions of %s: %w", filename, err)
		}
	}

	t.log.Debug("transformed unit", "file", filename, "functions", res.Functions)
	return res, nil
}

// Transform runs the pipeline with default options
func Transform(filename, content string) (*Result, error) {
	return NewTransformer(Options{}).Transform(filename, content)
}
