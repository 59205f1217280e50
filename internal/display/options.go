package display

import (
	"time"

	log "github.com/rs/zerolog"

	"github.com/kvmwatch/kvmwatch/pkg/stats"
)

type Options struct {
	aggregator *stats.Aggregator
	interval   time.Duration
	pattern    string
	drilldown  bool

	logger log.Logger
}

type Option func(*Display)

func WithAggregator(aggregator *stats.Aggregator) Option {
	return func(d *Display) {
		d.aggregator = aggregator
	}
}

func WithInterval(interval time.Duration) Option {
	return func(d *Display) {
		d.interval = interval
	}
}

func WithPattern(pattern string) Option {
	return func(d *Display) {
		d.pattern = pattern
	}
}

func WithDrilldown(drilldown bool) Option {
	return func(d *Display) {
		d.drilldown = drilldown
	}
}

func WithLogger(logger log.Logger) Option {
	return func(d *Display) {
		d.logger = logger
	}
}
