package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "void", "void"},
		{"newline and tab", "a\n\tb", "a⏷⏵b"},
		{"exactly 19", "0123456789012345678", "0123456789012345678"},
		{"truncated", "0123456789abcdefghijXYZ", "01234567 ... ghijXYZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.input))
		})
	}
}

func TestSplitJoinPath(t *testing.T) {
	assert.Equal(t, []string{}, SplitPath("::"))
	assert.Equal(t, []string{"N", "C", "f"}, SplitPath("::N::C::f"))
	assert.Equal(t, "N::C", JoinPath([]string{"N", "C"}))
	assert.Equal(t, "::", JoinPath(nil))
}

func TestSubstituteSuffix(t *testing.T) {
	assert.Equal(t, "build/fastbuild/src/Main.cpp", SubstituteSuffix("build/fastbuild/src/Main.hpp", "cpp"))
	assert.Equal(t, "a/b.cpp", SubstituteSuffix("a/b.h", "cpp"))
	assert.Equal(t, "a/Makefile.cpp", SubstituteSuffix("a/Makefile", "cpp"))
}

func TestIsValidCppIdentifier(t *testing.T) {
	assert.True(t, IsValidCppIdentifier("override"))
	assert.True(t, IsValidCppIdentifier("_x1"))
	assert.False(t, IsValidCppIdentifier("1x"))
	assert.False(t, IsValidCppIdentifier("a-b"))
	assert.False(t, IsValidCppIdentifier(""))
}
