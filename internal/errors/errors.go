package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	InvalidConfig     Kind = "invalid_config"
	NotFound          Kind = "not_found"
	DependencyMissing Kind = "dependency_missing"
	Collision         Kind = "collision"
	Corrupted         Kind = "corrupted"
	ExifFailure       Kind = "exif_failure"
	IOFailure         Kind = "io_failure"
	Internal          Kind = "internal"
)

var (
	// ErrToolUnavailable marks a missing external binary. It is fatal for the run.
	ErrToolUnavailable = stderrors.New("required tool is not installed")
	// ErrUnresolvedCollision is returned when every collision suffix is taken.
	ErrUnresolvedCollision = stderrors.New("unresolved timestamp conflict")
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Hint string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Missing reports that capability cannot run because binary is not installed.
func Missing(capability, binary, hint string) error {
	return &AppError{
		Kind: DependencyMissing,
		Op:   capability,
		Path: binary,
		Hint: hint,
		Err:  ErrToolUnavailable,
	}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// IsFatal reports whether err must abort the whole batch.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrToolUnavailable) {
		return true
	}
	kind, ok := KindOf(err)
	return ok && (kind == DependencyMissing || kind == InvalidConfig)
}

func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return appErr.Err.Error()
	case NotFound:
		return fmt.Sprintf("%s: %v", appErr.Path, appErr.Err)
	case DependencyMissing:
		msg := fmt.Sprintf("%s requires %s, which is not installed", appErr.Op, appErr.Path)
		if appErr.Hint != "" {
			msg += " (" + appErr.Hint + ")"
		}
		return msg
	case Collision:
		return fmt.Sprintf("%s: %v", appErr.Path, appErr.Err)
	case ExifFailure:
		return fmt.Sprintf("metadata update failed: %s", appErr.Path)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s: %v", appErr.Path, appErr.Err)
	default:
		return fmt.Sprintf("unexpected error: %v", appErr.Err)
	}
}
