package display

import (
	"github.com/pkg/errors"
)

var (
	ErrNoAggregator = errors.New("no aggregator specified")
	ErrBadInterval  = errors.New("sampling interval must be positive")
)
