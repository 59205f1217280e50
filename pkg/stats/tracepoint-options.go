package stats

import (
	log "github.com/rs/zerolog"

	"github.com/kvmwatch/kvmwatch/pkg/arch"
)

type TracepointSourceOptions struct {
	profile        *arch.Profile
	tracingRoot    string
	onlineCPUsPath string

	logger log.Logger
}

type TracepointSourceOption func(*TracepointSource)

func WithProfile(profile *arch.Profile) TracepointSourceOption {
	return func(s *TracepointSource) {
		s.profile = profile
	}
}

func WithTracingRoot(root string) TracepointSourceOption {
	return func(s *TracepointSource) {
		s.tracingRoot = root
	}
}

func WithOnlineCPUsPath(path string) TracepointSourceOption {
	return func(s *TracepointSource) {
		s.onlineCPUsPath = path
	}
}

func WithTracepointLogger(logger log.Logger) TracepointSourceOption {
	return func(s *TracepointSource) {
		s.logger = logger
	}
}
