package optimizer

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fastbuild/pkg/ast"
	"fastbuild/pkg/parser"
)

func optimized(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := parser.New().Parse("test.cpp", src)
	require.NoError(t, err)
	parser.GroupChars(file)
	require.NoError(t, Optimize(file))
	return file
}

// text concatenates the raw text of chunk nodes
func text(nodes []ast.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		if c, ok := n.(*ast.Chunk); ok {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

func firstClass(t *testing.T, c ast.Container) *ast.Class {
	t.Helper()
	var class *ast.Class
	ast.Walk(c, func(n ast.Node, _ int) bool {
		if cl, ok := n.(*ast.Class); ok && class == nil {
			class = cl
		}
		return class == nil
	})
	require.NotNil(t, class, "no class in tree")
	return class
}

func TestOptimizeFunction(t *testing.T) {
	file := optimized(t, `namespace N { class C { public: void f() override { return; } }; }`)
	class := firstClass(t, file)

	require.Len(t, class.Children(), 2)
	fn, ok := class.Children()[0].(*ast.Function)
	require.True(t, ok, "expected function, got %s", class.Children()[0].Describe())

	assert.Equal(t, "f", fn.Name)
	assert.Equal(t, " ", text(fn.Leading))
	require.NotNil(t, fn.Access)
	assert.Equal(t, "public:", fn.Access.Text)
	assert.Equal(t, " void ", text(fn.ReturnType))
	assert.Empty(t, fn.NameTail)
	assert.True(t, fn.Params.IsParams())
	assert.Empty(t, fn.Params.Children())
	assert.Equal(t, " override ", text(fn.Trailing))
	assert.Equal(t, " return; ", text(fn.Children()))

	_, ok = class.Children()[1].(*ast.Property)
	assert.True(t, ok, "trailing whitespace should stay a property")

	refs := ast.CollectFunctions(file)
	require.Len(t, refs, 1)
	assert.Equal(t, "N::C::f", refs[0].QualifiedName())
}

func TestOptimizeProperties(t *testing.T) {
	file := optimized(t, `class C { int x; int y = 3; using T = int; };`)
	class := firstClass(t, file)

	require.Len(t, class.Children(), 4)
	for _, member := range class.Children() {
		assert.IsType(t, &ast.Property{}, member)
	}
	prop := class.Children()[1].(*ast.Property)
	assert.Equal(t, " int y = 3;", text(prop.Children()))
	assert.Equal(t, prop.Children()[0].Offset(), prop.Offset())
}

func TestOptimizeAccessless(t *testing.T) {
	file := optimized(t, `class C { int get() const { return v; } int v; };`)
	class := firstClass(t, file)

	fn, ok := class.Children()[0].(*ast.Function)
	require.True(t, ok)
	assert.Nil(t, fn.Access)
	assert.Empty(t, fn.Leading)
	assert.Equal(t, " int ", text(fn.ReturnType))
	assert.Equal(t, " const ", text(fn.Trailing))
}

func TestOptimizeConstructor(t *testing.T) {
	file := optimized(t, `class C { public: C(int a) : a_(a) {} int a_; };`)
	class := firstClass(t, file)

	fn, ok := class.Children()[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "C", fn.Name)
	assert.Len(t, fn.Params.Children(), 3, "parameter list is the leftmost bracket")
	require.Len(t, fn.Trailing, 4)
	assert.Equal(t, " : ", text(fn.Trailing[:1]))
	assert.True(t, ast.IsBracket(fn.Trailing[2], '('))
}

func TestOptimizeDestructor(t *testing.T) {
	file := optimized(t, `class C { public: virtual ~C() {} };`)
	class := firstClass(t, file)

	fn, ok := class.Children()[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "~C", fn.Name)
	assert.Equal(t, " virtual ", text(fn.ReturnType))
	assert.Equal(t, "C::~C", ast.CollectFunctions(file)[0].QualifiedName())
}

func TestOptimizeOperator(t *testing.T) {
	file := optimized(t, `class V { public: bool operator==(const V& o) const { return true; } };`)
	class := firstClass(t, file)

	fn, ok := class.Children()[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "operator", fn.Name)
	assert.Equal(t, "==", text(fn.NameTail))
	assert.Equal(t, " bool ", text(fn.ReturnType))

	file = optimized(t, `class C { public: explicit operator const char*() const { return s; } };`)
	class = firstClass(t, file)

	fn, ok = class.Children()[0].(*ast.Function)
	require.True(t, ok)
	assert.Equal(t, "operator", fn.Name)
	assert.Equal(t, " const char*", text(fn.NameTail))
	assert.Equal(t, " explicit ", text(fn.ReturnType))
	assert.Equal(t, " const ", text(fn.Trailing))
}

func TestOptimizeNestedClass(t *testing.T) {
	file := optimized(t, `namespace N {
class O {
  class I { public: void g() {} };
public:
  void f() {}
};
void free() {}
}`)

	var names []string
	for _, ref := range ast.CollectFunctions(file) {
		names = append(names, ref.QualifiedName())
	}
	assert.Equal(t, []string{"N::O::I::g", "N::O::f"}, names)
}

func TestOptimizeLeavesOtherContainers(t *testing.T) {
	src := `namespace N { int f() { return 1; } }`
	file := optimized(t, src)

	ns := file.Children()[0].(*ast.Namespace)
	for _, child := range ns.Children() {
		assert.NotEqual(t, ast.KindFunction, child.Kind())
		assert.NotEqual(t, ast.KindProperty, child.Kind())
	}
	assert.Empty(t, ast.CollectFunctions(file))
}

func TestOptimizeMissingName(t *testing.T) {
	file, err := parser.New().Parse("test.cpp", `class C { () {} };`)
	require.NoError(t, err)
	parser.GroupChars(file)

	err = Optimize(file)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedFunction))
	assert.Contains(t, err.Error(), "name not found")
	assert.Contains(t, err.Error(), "class C")
}

func TestDecomposeMalformed(t *testing.T) {
	body, err := ast.NewBracket("{", 6)
	require.NoError(t, err)
	params, err := ast.NewBracket("(", 0)
	require.NoError(t, err)

	tests := []struct {
		name string
		span []ast.Node
		msg  string
	}{
		{
			name: "no parameter list",
			span: []ast.Node{ast.NewChunk(ast.CategoryWord, "void", 0), ast.NewChunk(ast.CategoryChar, " ", 4), body},
			msg:  "parameter list not found",
		},
		{
			name: "no body",
			span: []ast.Node{ast.NewChunk(ast.CategoryWord, "f", 0), params, ast.NewChunk(ast.CategoryCommandSeparator, ";", 3)},
			msg:  "body not found",
		},
		{
			name: "no name",
			span: []ast.Node{params, body},
			msg:  "name not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decompose(tt.span)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedFunction)
			assert.Contains(t, err.Error(), tt.msg)

			var perr *parser.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "optimizer", perr.Phase)
		})
	}
}

func TestDecomposeDoesNotMutateSpan(t *testing.T) {
	file, err := parser.New().Parse("test.cpp", `class C { public: virtual ~C() {} };`)
	require.NoError(t, err)
	parser.GroupChars(file)

	span := firstClass(t, file).Children()
	before := make([]ast.Node, len(span))
	copy(before, span)
	beforeText := text(span)

	_, err = decompose(span[:len(span)-1])
	require.NoError(t, err)
	assert.Equal(t, before, span)
	assert.Equal(t, beforeText, text(span))
}
