package errors

import (
	"errors"
	"strings"

	"github.com/rotisserie/eris"
)

// Kind groups error codes by how callers are expected to react to them.
type Kind string

const (
	// KindValidation errors are fatal and raised before any side effect.
	KindValidation Kind = "validation"
	// KindIO errors come from reading or writing files.
	KindIO Kind = "io"
	// KindBuild errors are user-facing build failures, propagated unchanged.
	KindBuild Kind = "build"
	// KindParse errors describe malformed inputs.
	KindParse Kind = "parse"
	// KindUnknown covers errors that carry no code.
	KindUnknown Kind = "unknown"
)

var codeKinds = map[ErrorCode]Kind{
	ErrInvalidInput:   KindValidation,
	ErrAlreadyExists:  KindValidation,
	ErrNotFound:       KindValidation,
	ErrConfigValid:    KindValidation,
	ErrPathEscape:     KindValidation,
	ErrPathInvalid:    KindValidation,
	ErrPlugNotFound:   KindValidation,
	ErrPlugInvalid:    KindValidation,
	ErrTaskNotFound:   KindValidation,
	ErrConfigLoad:     KindIO,
	ErrFileNotFound:   KindIO,
	ErrFileRead:       KindIO,
	ErrFileWrite:      KindIO,
	ErrFileEncode:     KindIO,
	ErrDirCreate:      KindIO,
	ErrBuildFailed:    KindBuild,
	ErrConfigParse:    KindParse,
	ErrSourceMapParse: KindParse,
	ErrTaskLoad:       KindParse,
}

// KindOf returns the kind of the outermost coded error in err's chain.
func KindOf(err error) Kind {
	var plugsErr *PlugsError
	if !errors.As(err, &plugsErr) {
		return KindUnknown
	}
	if kind, ok := codeKinds[plugsErr.Code]; ok {
		return kind
	}
	return KindUnknown
}

// BuildFailure creates a user-facing build failure. The optional report is
// attached under the "report" detail key.
func BuildFailure(message string, report interface{}) *PlugsError {
	err := New(ErrBuildFailed, message)
	if report != nil {
		err.WithDetail("report", report)
	}
	return err
}

// Format renders err for display. Build failures print only their message;
// everything else prints the full chain, with stack traces when verbose.
func Format(err error, verbose bool) string {
	if err == nil {
		return ""
	}

	var plugsErr *PlugsError
	if errors.As(err, &plugsErr) && plugsErr.Code == ErrBuildFailed && !verbose {
		return plugsErr.Message
	}

	if !verbose {
		return err.Error()
	}
	return strings.TrimRight(eris.ToString(err, true), "\n")
}
