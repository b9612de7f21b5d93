package parser

import (
	"errors"
	"fmt"

	"fastbuild/pkg/ast"
)

var (
	// ErrUnterminated marks a string literal or comment without closing delimiter
	ErrUnterminated = errors.New("unterminated construct")
	// ErrUnbalanced marks a closing bracket without matching opener or an opener never closed
	ErrUnbalanced = errors.New("unbalanced brackets")
	// ErrEmptyBracket marks a bracket built from an empty token
	ErrEmptyBracket = ast.ErrEmptyBracket
	// ErrStuck marks a recognizer that matched without consuming input
	ErrStuck = errors.New("reader made no progress")
)

// Error is a fatal error for one compilation unit, located in the source
type Error struct {
	File   string
	Phase  string // recognizer or pass that failed
	Offset int
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("offset %d", e.Offset)
	if e.Line > 0 {
		loc = fmt.Sprintf("%d:%d", e.Line, e.Column)
	}
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s: %s", loc, e.Phase, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Locate fills in the file name and line/column of err when it is an *Error
// that does not carry them yet. Other errors are returned unchanged.
func Locate(err error, file, src string) error {
	var perr *Error
	if !errors.As(err, &perr) {
		return err
	}
	if perr.File == "" {
		perr.File = file
	}
	if perr.Line == 0 {
		perr.Line, perr.Column = lineColumn(src, perr.Offset)
	}
	return err
}
