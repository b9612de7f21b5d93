package unit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fastbuild/pkg/ast"
	"fastbuild/pkg/optimizer"
	"fastbuild/pkg/parser"
)

const sample = `#pragma once
namespace N {
class C {
public:
  void f() override { return; }
  int g() const { return 1; }
  int x;
};
}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestTransform(t *testing.T) {
	res, err := Transform("c.hpp", sample)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Functions)
	assert.Contains(t, res.Declarations, "void f() override ;")
	assert.Contains(t, res.Declarations, "int g() const ;")
	assert.Contains(t, res.Declarations, "int x;")
	assert.NotContains(t, res.Declarations, "return")
	assert.Equal(t, "void N::C::f() { return; } int N::C::g() const { return 1; }", strings.Join(strings.Fields(res.Definitions), " "))
}

func TestTransformErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
	}{
		{"unterminated", `"abc`, parser.ErrUnterminated},
		{"unbalanced", "{ ) }", parser.ErrUnbalanced},
		{"malformed", "class C {\n () {} };", optimizer.ErrMalformedFunction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Transform("bad.hpp", tt.src)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), "bad.hpp")
		})
	}

	_, err := Transform("bad.hpp", "class C {\n  int a;\n () {} };")
	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestBuildStages(t *testing.T) {
	tr := NewTransformer(Options{Logger: quietLogger()})

	raw, err := tr.Build("c.hpp", "class C { int a = -1; };", StageRaw)
	require.NoError(t, err)
	grouped, err := tr.Build("c.hpp", "class C { int a = -1; };", StageGrouped)
	require.NoError(t, err)
	opt, err := tr.Build("c.hpp", "class C { int a = -1; };", StageOptimized)
	require.NoError(t, err)

	rawClass := raw.Children()[0].(*ast.Class)
	groupedClass := grouped.Children()[0].(*ast.Class)
	optClass := opt.Children()[0].(*ast.Class)

	assert.Greater(t, len(rawClass.Children()), len(groupedClass.Children()))
	require.Len(t, optClass.Children(), 2)
	assert.Equal(t, ast.KindProperty, optClass.Children()[0].Kind())

	for _, name := range []string{"raw", "grouped", "optimized", ""} {
		_, err := ParseStage(name)
		assert.NoError(t, err)
	}
	_, err = ParseStage("cooked")
	assert.Error(t, err)
}

func TestMatcher(t *testing.T) {
	m := Matcher{
		Include: []string{"src/**/*.hpp", "*.h"},
		Exclude: []string{"**/test/**"},
		Dest:    "build/fastbuild",
	}

	tests := []struct {
		path string
		want bool
	}{
		{"src/a.hpp", true},
		{"src/deep/b.hpp", true},
		{"top.h", true},
		{"src/a.cpp", false},
		{"src/test/a.hpp", false},
		{"build/fastbuild/src/a.hpp", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, m.Match(tt.path), tt.path)
	}

	assert.Error(t, Matcher{Include: []string{"src/[a"}}.Validate())
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "b.hpp"), "int b;")
	writeFile(t, filepath.Join(root, "src", "a.hpp"), "int a;")
	writeFile(t, filepath.Join(root, "src", "a.cpp"), "int a;")
	writeFile(t, filepath.Join(root, "out", "src", "a.hpp"), "int a;")

	files, err := Discover(root, Matcher{Include: []string{"**/*.hpp"}, Dest: "out"})
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.hpp", "src/b.hpp"}, files)
}

func TestWriterSkipsUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "out.hpp")
	w := NewWriter()

	wrote, err := w.Write(path, "int a;")
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = w.Write(path, "int a;")
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = w.Write(path, "int b;")
	require.NoError(t, err)
	assert.True(t, wrote)

	// a fresh writer compares against the file on disk
	wrote, err = NewWriter().Write(path, "int b;")
	require.NoError(t, err)
	assert.False(t, wrote)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int b;", string(content))
}

func TestWriterRecreatesDeletedOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	path := filepath.Join(dir, "src", "out.hpp")
	w := NewWriter()

	wrote, err := w.Write(path, "int a;")
	require.NoError(t, err)
	assert.True(t, wrote)

	require.NoError(t, os.RemoveAll(dir))

	wrote, err = w.Write(path, "int a;")
	require.NoError(t, err)
	assert.True(t, wrote)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "int a;", string(content))
}

func newTestPreparer(root string, jobs int, progress io.Writer) *Preparer {
	return NewPreparer(PrepareOptions{
		Root:         root,
		Dest:         "build",
		SourceSuffix: "cpp",
		Jobs:         jobs,
		Progress:     progress,
		Logger:       quietLogger(),
	}, NewTransformer(Options{Logger: quietLogger()}), nil)
}

func TestPrepare(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	files := []string{"src/a.hpp", "src/b.hpp", "c.hpp"}
	for _, f := range files {
		writeFile(t, filepath.Join(root, f), sample)
	}

	var progress bytes.Buffer
	p := newTestPreparer(root, 2, &progress)

	outcomes, err := p.Prepare(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	for i, f := range files {
		assert.Equal(t, f, outcomes[i].File)
		assert.True(t, outcomes[i].WroteHeader)
		assert.True(t, outcomes[i].WroteSource)
		assert.Contains(t, progress.String(), "preparing "+f+"\n")
	}

	header, source := p.OutputPaths("src/a.hpp")
	assert.Equal(t, filepath.Join(root, "build", "src", "a.hpp"), header)
	assert.Equal(t, filepath.Join(root, "build", "src", "a.cpp"), source)

	def, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Contains(t, string(def), "N::C::f()")

	// second run leaves unchanged outputs alone
	outcomes, err = p.Prepare(context.Background(), files)
	require.NoError(t, err)
	for _, o := range outcomes {
		assert.False(t, o.WroteHeader)
		assert.False(t, o.WroteSource)
	}
}

func TestPrepareFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "good.hpp"), sample)
	writeFile(t, filepath.Join(root, "bad.hpp"), "namespace N {")

	p := newTestPreparer(root, 4, nil)
	_, err := p.Prepare(context.Background(), []string{"good.hpp", "bad.hpp"})
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrUnbalanced)
	assert.Contains(t, err.Error(), "bad.hpp")

	_, err = p.Prepare(context.Background(), []string{"missing.hpp"})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPrepareSuffixCollision(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.cpp"), "int a;")

	_, err := newTestPreparer(root, 1, nil).PrepareFile("a.cpp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collide")
}

func TestPrepareCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.hpp"), sample)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := newTestPreparer(root, 1, nil).Prepare(ctx, []string{"a.hpp"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
