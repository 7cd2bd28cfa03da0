package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"supplier_ranker/internal/adapters/observability"
	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/query"
)

// Breakdowner explains a supplier score.
type Breakdowner interface {
	Breakdown(r domain.Record) domain.Breakdown
}

type QueryService struct {
	store    *dataset.Store
	scorer   Breakdowner
	cache    domain.Cache
	cacheTTL time.Duration
	sf       singleflight.Group
}

func NewQueryService(st *dataset.Store, b Breakdowner, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: st, scorer: b, cache: c, cacheTTL: ttl}
}

// ListSuppliers runs the query pipeline against the current dataset.
// Cached entries hold positional indices keyed by the dataset digest, so
// they are only ever resolved against the exact content that produced them.
func (s *QueryService) ListSuppliers(ctx context.Context, f domain.Filter, so domain.Sort) ([]domain.ScoredRecord, error) {
	ds, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("suppliers:%s:%s", ds.Digest(), cacheKey(f, so))

	var idx []int
	if ok, _ := s.cache.Get(ctx, key, &idx); ok {
		if out, ok := resolve(ds, idx); ok {
			observability.ObserveQuery(len(out))
			return out, nil
		}
	}

	v, _, _ := s.sf.Do(key, func() (any, error) {
		out := query.Run(ds, f, so)
		ids := make([]int, len(out))
		for i, r := range out {
			ids[i] = r.Index
		}
		_ = s.cache.Set(ctx, key, ids, int(s.cacheTTL.Seconds()))
		return out, nil
	})
	// singleflight shares the slice between callers; hand out copies.
	out := append([]domain.ScoredRecord(nil), v.([]domain.ScoredRecord)...)
	if out == nil {
		out = []domain.ScoredRecord{}
	}
	observability.ObserveQuery(len(out))
	return out, nil
}

// GetSupplier looks a supplier up by its position in the current dataset.
func (s *QueryService) GetSupplier(ctx context.Context, index int) (domain.ScoredRecord, error) {
	ds, err := s.store.Current()
	if err != nil {
		return domain.ScoredRecord{}, err
	}
	return ds.At(index)
}

// GetBreakdown returns a supplier with its sub-scores and band.
func (s *QueryService) GetBreakdown(ctx context.Context, index int) (domain.SupplierDetail, error) {
	r, err := s.GetSupplier(ctx, index)
	if err != nil {
		return domain.SupplierDetail{}, err
	}
	return domain.SupplierDetail{
		Supplier:  r,
		Breakdown: s.scorer.Breakdown(r.Record),
		Band:      domain.Band(r.SupplierScore),
	}, nil
}

// Facets summarises the subset matching f.
func (s *QueryService) Facets(ctx context.Context, f domain.Filter) (domain.Facets, error) {
	ds, err := s.store.Current()
	if err != nil {
		return domain.Facets{}, err
	}
	return query.Facets(query.Filter(ds.Records(), f)), nil
}

// Info describes the active dataset.
type Info struct {
	Source   string    `json:"source"`
	Version  uint64    `json:"version"`
	Digest   string    `json:"digest"`
	Records  int       `json:"records"`
	LoadedAt time.Time `json:"loaded_at"`

	// SourceRecords is the live size of a countable source; it differs
	// from Records when the source changed since the last load.
	SourceRecords *int `json:"source_records,omitempty"`
}

func (s *QueryService) Info() (Info, error) {
	ds, err := s.store.Current()
	if err != nil {
		return Info{}, err
	}
	return Info{Source: ds.Source(), Version: ds.Version(), Digest: ds.Digest(), Records: ds.Len(), LoadedAt: ds.LoadedAt()}, nil
}

func resolve(ds *dataset.Dataset, idx []int) ([]domain.ScoredRecord, bool) {
	out := make([]domain.ScoredRecord, 0, len(idx))
	for _, i := range idx {
		r, err := ds.At(i)
		if err != nil {
			return nil, false
		}
		out = append(out, r)
	}
	return out, true
}

// cacheKey hashes the normalized filter and sort.
func cacheKey(f domain.Filter, so domain.Sort) string {
	sortKey, _ := query.NormalizeSortKey(so.Key)
	parts := []string{
		"k=" + strings.ToLower(deref(f.Keyword)),
		"s=" + strings.ToLower(deref(f.Search)),
		"c=" + deref(f.City),
		"sort=" + sortKey + ":" + strconv.FormatBool(so.Descending),
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		parts = append(parts,
			"p="+strconv.FormatFloat(*f.MinPrice, 'g', -1, 64)+".."+strconv.FormatFloat(*f.MaxPrice, 'g', -1, 64))
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
