package perf

import (
	"github.com/pkg/errors"
)

var (
	ErrDisableLeader = errors.New("cannot disable the group leader")
	ErrGroupReadSize = errors.New("grouped read returned unexpected byte count")
	ErrEmptyGroup    = errors.New("counter group has no events")
)
