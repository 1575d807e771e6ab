package repository

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/vitrine/internal/domain/model"
	"github.com/okian/vitrine/pkg/logger"
	"github.com/okian/vitrine/pkg/metrics"
)

// YAMLStore is a Store backed by a single YAML file. The file is read once;
// the parsed portfolio is immutable and safe for concurrent readers.
type YAMLStore struct {
	path   string
	fsys   fs.FS
	strict bool
	log    logger.Logger

	once      sync.Once
	portfolio *model.Portfolio
	err       error
}

var _ Store = (*YAMLStore)(nil)

// NewYAMLStore creates a store for the file at path.
func NewYAMLStore(path string, opts ...Option) *YAMLStore {
	s := &YAMLStore{
		path: path,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load parses the data file exactly once.
func (s *YAMLStore) Load(ctx context.Context) (*model.Portfolio, error) {
	s.once.Do(func() {
		start := time.Now()
		s.portfolio, s.err = s.load()
		if s.err != nil {
			s.log.Error(ctx, "portfolio load failed", logger.String("path", s.path), logger.Error(s.err))
			return
		}
		for _, c := range model.Categories {
			metrics.UpdateRecordsByCategory(string(c), s.portfolio.Count(c))
		}
		s.log.Info(ctx, "portfolio loaded",
			logger.String("path", s.path),
			logger.Int("experiences", len(s.portfolio.Experiences)),
			logger.Int("skills", len(s.portfolio.Skills)),
			logger.Int("certifications", len(s.portfolio.Certifications)),
			logger.Int("education", len(s.portfolio.Education)),
			logger.Duration("took", time.Since(start)))
	})
	return s.portfolio, s.err
}

// Items returns the records of c from the loaded portfolio.
func (s *YAMLStore) Items(ctx context.Context, c model.Category) ([]model.Record, error) {
	p, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.Items(c), nil
}

func (s *YAMLStore) load() (*model.Portfolio, error) {
	raw, err := s.read()
	if err != nil {
		return nil, &DataSourceError{Path: s.path, Op: "read", Err: err}
	}
	p, err := Decode(bytes.NewReader(raw), s.strict)
	if err != nil {
		return nil, &DataSourceError{Path: s.path, Op: "parse", Err: err}
	}
	if err := Validate(p); err != nil {
		return nil, &DataSourceError{Path: s.path, Op: "validate", Err: err}
	}
	return p, nil
}

func (s *YAMLStore) read() ([]byte, error) {
	if s.fsys != nil {
		return fs.ReadFile(s.fsys, s.path)
	}
	return os.ReadFile(s.path)
}

// Decode parses a portfolio document. An empty document is rejected.
func Decode(r io.Reader, strict bool) (*model.Portfolio, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(strict)
	var p model.Portfolio
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty document")
		}
		return nil, err
	}
	return &p, nil
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validate checks the fields renderers and lookup tools rely on.
func Validate(p *model.Portfolio) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate.Struct(p)
}
