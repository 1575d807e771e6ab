package repository

import (
	"io/fs"

	"github.com/okian/vitrine/pkg/logger"
)

// Option applies a configuration option to the YAMLStore.
type Option func(*YAMLStore)

// WithLogger sets the logger used to report the load.
func WithLogger(l logger.Logger) Option {
	return func(s *YAMLStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFS reads the data file from fsys instead of the OS filesystem.
func WithFS(fsys fs.FS) Option {
	return func(s *YAMLStore) {
		s.fsys = fsys
	}
}

// WithStrictFields rejects unknown keys in the data file.
func WithStrictFields(strict bool) Option {
	return func(s *YAMLStore) {
		s.strict = strict
	}
}
