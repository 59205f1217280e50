package stats

import (
	"github.com/pkg/errors"
)

var (
	ErrBadFieldName     = errors.New("malformed field name")
	ErrBadFilterPattern = errors.New("invalid filter pattern")
	ErrUnknownSubreason = errors.New("unknown sub-reason for tracepoint")
	ErrFDLimit          = errors.New("file descriptor limit cannot cover counter budget")
	ErrNoProfile        = errors.New("no architecture profile")
	ErrBadCPURange      = errors.New("malformed cpu range")
)
