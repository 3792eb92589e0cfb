//go:build unix

package web

import (
	"errors"

	"golang.org/x/sys/unix"
)

func classifyBindError(err error) BindReason {
	switch {
	case errors.Is(err, unix.EADDRINUSE):
		return BindAddrInUse
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return BindPermissionDenied
	default:
		return BindOther
	}
}
