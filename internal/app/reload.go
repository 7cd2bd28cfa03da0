package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"supplier_ranker/internal/adapters/observability"
	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/domain"
)

// ReloadService loads the supplier source, scores it and installs the
// result as the current dataset.
type ReloadService struct {
	src    domain.SupplierSource
	scorer dataset.Scorer
	store  *dataset.Store
	mu     sync.Mutex // one reload at a time, so swaps land in load order
	gen    uint64
}

func NewReloadService(src domain.SupplierSource, scorer dataset.Scorer, store *dataset.Store) *ReloadService {
	return &ReloadService{src: src, scorer: scorer, store: store}
}

// Reload replaces the current dataset. On failure the previous dataset
// stays active and the error is returned.
func (s *ReloadService) Reload(ctx context.Context) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	recs, err := s.src.LoadRecords(ctx)
	if err != nil {
		observability.ObserveReload(s.src.Name(), 0, 0, err)
		return nil, fmt.Errorf("load %s: %w", s.src.Name(), err)
	}

	s.gen++
	ds := dataset.Build(recs, s.scorer, s.src.Name(), s.gen)
	prev := s.store.Swap(ds)
	observability.ObserveReload(s.src.Name(), ds.Len(), ds.Version(), nil)

	ev := log.Info().
		Str("source", ds.Source()).
		Int("records", ds.Len()).
		Uint64("version", ds.Version()).
		Str("digest", ds.Digest()).
		Dur("took", time.Since(start))
	if prev != nil {
		ev = ev.Int("previous_records", prev.Len())
	}
	ev.Msg("dataset loaded")
	return ds, nil
}

// ReloadOrKeep reloads and logs a failure instead of returning it. Used by
// background triggers (file watch, SIGHUP).
func (s *ReloadService) ReloadOrKeep(ctx context.Context) {
	if _, err := s.Reload(ctx); err != nil {
		log.Error().
			Err(err).
			Str("err_type", observability.LabelErr(err)).
			Msg("dataset reload failed; keeping previous snapshot")
	}
}

// counter is implemented by sources that can report their size without a
// full load.
type counter interface {
	Count(ctx context.Context) (int, error)
}

// SourceCount reports how many records the source holds right now. ok is
// false when the source cannot count without loading.
func (s *ReloadService) SourceCount(ctx context.Context) (n int, ok bool, err error) {
	c, ok := s.src.(counter)
	if !ok {
		return 0, false, nil
	}
	n, err = c.Count(ctx)
	return n, true, err
}
