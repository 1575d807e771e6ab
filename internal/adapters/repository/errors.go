package repository

import (
	"errors"
	"fmt"
)

// ErrDataSource marks a missing, malformed or invalid portfolio file.
var ErrDataSource = errors.New("portfolio data source error")

// DataSourceError describes why the data file could not be used.
type DataSourceError struct {
	Path string
	Op   string // read, parse or validate
	Err  error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("portfolio %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDataSource) match any DataSourceError.
func (e *DataSourceError) Is(target error) bool { return target == ErrDataSource }
