//go:build !unix

package web

import (
	"errors"
	"os"
	"strings"
)

// Best-effort fallback: without unix errno values, fall back to the
// permission sentinel and the message text.
func classifyBindError(err error) BindReason {
	switch {
	case errors.Is(err, os.ErrPermission):
		return BindPermissionDenied
	case strings.Contains(strings.ToLower(err.Error()), "address already in use"),
		strings.Contains(strings.ToLower(err.Error()), "only one usage of each socket address"):
		return BindAddrInUse
	default:
		return BindOther
	}
}
