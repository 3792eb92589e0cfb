package web

import "errors"

var (
	// ErrNotFound means the path does not resolve to a readable file.
	ErrNotFound = errors.New("not found")
	// ErrForbiddenPath means the path resolves outside the base directory.
	ErrForbiddenPath = errors.New("path escapes base directory")
	// ErrBadPath is returned for paths no file could ever have (NUL, backslash).
	ErrBadPath = errors.New("malformed path")
	// ErrDirListingDisabled is returned for index-less directories when
	// listings are turned off.
	ErrDirListingDisabled = errors.New("directory listing disabled")
)

// BindReason classifies why the listening socket could not be bound.
type BindReason string

const (
	BindAddrInUse        BindReason = "address in use"
	BindPermissionDenied BindReason = "permission denied"
	BindOther            BindReason = "other"
)

// BindError is returned by HTTPServer.Start when the listener cannot be
// created. It is fatal for the process.
type BindError struct {
	Addr   string
	Reason BindReason
	Err    error
}

func newBindError(addr string, err error) *BindError {
	return &BindError{Addr: addr, Reason: classifyBindError(err), Err: err}
}

func (e *BindError) Error() string {
	if e.Reason == BindOther {
		return "listen " + e.Addr + ": " + e.Err.Error()
	}
	return "listen " + e.Addr + ": " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *BindError) Unwrap() error { return e.Err }

// Hint is a one-line operator suggestion for the diagnostic printed on exit.
func (e *BindError) Hint() string {
	switch e.Reason {
	case BindAddrInUse:
		return "another process is using this port; stop it or pass -port"
	case BindPermissionDenied:
		return "ports below 1024 need elevated privileges; pass a higher -port"
	default:
		return ""
	}
}
