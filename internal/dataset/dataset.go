package dataset

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"supplier_ranker/internal/domain"
)

// Scorer computes the supplier score of a single record.
type Scorer interface {
	Score(r domain.Record) float64
}

// Dataset is an immutable, scored snapshot of one load.
type Dataset struct {
	records  []domain.ScoredRecord
	version  uint64
	digest   string
	source   string
	loadedAt time.Time
}

// Build scores every record once and freezes the result. version is the
// caller's load generation and only orders loads within one process; Digest
// identifies the scored content across processes.
func Build(records []domain.Record, s Scorer, source string, version uint64) *Dataset {
	out := make([]domain.ScoredRecord, len(records))
	for i, r := range records {
		out[i] = domain.ScoredRecord{Record: r, SupplierScore: s.Score(r), Index: i}
	}
	return &Dataset{
		records:  out,
		version:  version,
		digest:   digest(out),
		source:   source,
		loadedAt: time.Now().UTC(),
	}
}

// digest hashes the scored records in load order.
func digest(recs []domain.ScoredRecord) string {
	h := sha1.New()
	enc := json.NewEncoder(h)
	for _, r := range recs {
		_ = enc.Encode(r)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (d *Dataset) Len() int            { return len(d.records) }
func (d *Dataset) Version() uint64     { return d.version }
func (d *Dataset) Digest() string      { return d.digest }
func (d *Dataset) Source() string      { return d.source }
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Records returns the records in load order. The slice is shared with the
// dataset; callers must not modify it.
func (d *Dataset) Records() []domain.ScoredRecord { return d.records }

// At returns the record at a positional index.
func (d *Dataset) At(i int) (domain.ScoredRecord, error) {
	if i < 0 || i >= len(d.records) {
		return domain.ScoredRecord{}, fmt.Errorf("%w: %d not in [0,%d)", domain.ErrOutOfRange, i, len(d.records))
	}
	return d.records[i], nil
}

// Store holds the current dataset. Readers always see a complete snapshot;
// Swap is the only mutation.
type Store struct {
	cur atomic.Pointer[Dataset]
}

func NewStore(d *Dataset) *Store {
	s := &Store{}
	if d != nil {
		s.cur.Store(d)
	}
	return s
}

// Current returns the active dataset or ErrNoDataset.
func (s *Store) Current() (*Dataset, error) {
	d := s.cur.Load()
	if d == nil {
		return nil, domain.ErrNoDataset
	}
	return d, nil
}

// Swap installs d and returns the previous dataset (nil on first load).
func (s *Store) Swap(d *Dataset) *Dataset {
	return s.cur.Swap(d)
}
