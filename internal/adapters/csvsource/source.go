package csvsource

import (
	"context"
	"fmt"
	"os"

	"supplier_ranker/internal/domain"
)

// Source loads suppliers from a local CSV file.
type Source struct{ path string }

func New(path string) *Source { return &Source{path: path} }

func (s *Source) Name() string { return "csv:" + s.path }

func (s *Source) Path() string { return s.path }

func (s *Source) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataLoad, err)
	}
	defer f.Close()

	recs, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return recs, nil
}
