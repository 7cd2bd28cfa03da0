package app_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "supplier_ranker/internal/adapters/redis"
	"supplier_ranker/internal/app"
	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/scoring"
)

// ---- fakes ----

type fakeCache struct {
	store map[string]any
	gets  int
	hits  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.gets++
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *[]int:
		*d = append([]int(nil), v.([]int)...)
	}
	c.hits++
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error { delete(c.store, key); return nil }

type fakeSource struct {
	recs []domain.Record
	err  error
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	return f.recs, f.err
}

func ptr[T any](v T) *T { return &v }

func records() []domain.Record {
	return []domain.Record{
		{Keyword: "casting", Company: "Plain", City: ptr("Pune")},
		{Keyword: "casting", Company: "Rich Ltd", CompanyURL: ptr("u"), ProductURL: ptr("p"), Price: ptr(100.0), Rating: 5, Phone: ptr("1"), City: ptr("Pune")},
		{Keyword: "forging", Company: "Other", Price: ptr(50.0)},
	}
}

func setup(t *testing.T) (*app.QueryService, *app.ReloadService, *fakeSource, *fakeCache) {
	t.Helper()
	eng := scoring.New(scoring.DefaultConfig())
	src := &fakeSource{recs: records()}
	store := dataset.NewStore(nil)
	rl := app.NewReloadService(src, eng, store)
	if _, err := rl.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	cache := &fakeCache{}
	return app.NewQueryService(store, eng, cache, 10*time.Minute), rl, src, cache
}

func names(rs []domain.ScoredRecord) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Company)
	}
	return out
}

// ---- tests ----

func TestListSuppliers_CacheMissThenHit(t *testing.T) {
	q, _, _, cache := setup(t)
	ctx := context.Background()
	f := domain.Filter{Keyword: ptr("casting")}

	first, err := q.ListSuppliers(ctx, f, domain.DefaultSort())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if want := []string{"Rich Ltd", "Plain"}; !slices.Equal(names(first), want) {
		t.Fatalf("got %v, want %v", names(first), want)
	}
	if cache.hits != 0 {
		t.Fatalf("unexpected cache hit on first call")
	}

	second, err := q.ListSuppliers(ctx, domain.Filter{Keyword: ptr("CASTING")}, domain.DefaultSort())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("expected case-insensitive keyword to share cache entry, hits=%d", cache.hits)
	}
	if !slices.Equal(names(second), names(first)) {
		t.Fatalf("cached result %v differs from %v", names(second), names(first))
	}
	if second[0].Index != 1 {
		t.Fatalf("cached record lost its index: %d", second[0].Index)
	}
}

func TestListSuppliers_ReloadInvalidatesCache(t *testing.T) {
	q, rl, src, _ := setup(t)
	ctx := context.Background()

	before, _ := q.ListSuppliers(ctx, domain.Filter{}, domain.DefaultSort())
	if len(before) != 3 {
		t.Fatalf("got %d", len(before))
	}

	src.recs = append(records(), domain.Record{Keyword: "casting", Company: "New"})
	if _, err := rl.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	after, _ := q.ListSuppliers(ctx, domain.Filter{}, domain.DefaultSort())
	if len(after) != 4 {
		t.Fatalf("stale cached result after reload: %v", names(after))
	}
}

// instance loads recs into its own store, as a separate process would.
func instance(t *testing.T, cache domain.Cache, recs ...domain.Record) *app.QueryService {
	t.Helper()
	eng := scoring.New(scoring.DefaultConfig())
	store := dataset.NewStore(nil)
	ds, err := app.NewReloadService(&fakeSource{recs: recs}, eng, store).Reload(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if ds.Version() != 1 {
		t.Fatalf("first load version = %d", ds.Version())
	}
	return app.NewQueryService(store, eng, cache, time.Minute)
}

func TestListSuppliers_SharedCacheAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0, "shared:")
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()
	f := domain.Filter{Keyword: ptr("casting")}

	castings := instance(t, cache,
		domain.Record{Keyword: "casting", Company: "CastA"},
		domain.Record{Keyword: "casting", Company: "CastB"},
	)
	out, err := castings.ListSuppliers(ctx, f, domain.DefaultSort())
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"CastA", "CastB"}; !slices.Equal(names(out), want) {
		t.Fatalf("got %v, want %v", names(out), want)
	}

	// same version, different data: must not reuse the entry above
	forgings := instance(t, cache,
		domain.Record{Keyword: "forging", Company: "ForgeX"},
		domain.Record{Keyword: "forging", Company: "ForgeY"},
	)
	out, err = forgings.ListSuppliers(ctx, f, domain.DefaultSort())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("served another dataset's cached result: %v", names(out))
	}

	// same data elsewhere shares the entry
	keys := len(mr.Keys())
	again := instance(t, cache,
		domain.Record{Keyword: "casting", Company: "CastA"},
		domain.Record{Keyword: "casting", Company: "CastB"},
	)
	out, _ = again.ListSuppliers(ctx, f, domain.DefaultSort())
	if want := []string{"CastA", "CastB"}; !slices.Equal(names(out), want) {
		t.Fatalf("got %v, want %v", names(out), want)
	}
	if len(mr.Keys()) != keys {
		t.Fatalf("identical dataset did not reuse cache entry: %d keys, want %d", len(mr.Keys()), keys)
	}
}

func TestReload_VersionCountsLoads(t *testing.T) {
	q, rl, _, _ := setup(t)
	first, _ := q.Info()
	if _, err := rl.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	second, _ := q.Info()
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("versions = %d, %d", first.Version, second.Version)
	}
	if second.Digest == "" || second.Digest != first.Digest {
		t.Fatalf("unchanged records changed digest: %q -> %q", first.Digest, second.Digest)
	}
}

func TestListSuppliers_EmptyResult(t *testing.T) {
	q, _, _, _ := setup(t)
	out, err := q.ListSuppliers(context.Background(), domain.Filter{Keyword: ptr("titanium")}, domain.DefaultSort())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
}

func TestListSuppliers_ResultIsCopy(t *testing.T) {
	q, _, _, _ := setup(t)
	ctx := context.Background()
	out, _ := q.ListSuppliers(ctx, domain.Filter{}, domain.DefaultSort())
	out[0].Company = "MUTATED"

	again, _ := q.ListSuppliers(ctx, domain.Filter{}, domain.DefaultSort())
	if again[0].Company == "MUTATED" {
		t.Fatalf("caller mutation leaked into dataset")
	}
}

func TestGetSupplier_Bounds(t *testing.T) {
	q, _, _, _ := setup(t)
	ctx := context.Background()

	for _, i := range []int{-1, 3} {
		if _, err := q.GetSupplier(ctx, i); !errors.Is(err, domain.ErrOutOfRange) {
			t.Fatalf("GetSupplier(%d) err = %v", i, err)
		}
	}
	r, err := q.GetSupplier(ctx, 2)
	if err != nil || r.Company != "Other" {
		t.Fatalf("GetSupplier(2) = %+v, %v", r, err)
	}
}

func TestGetBreakdown(t *testing.T) {
	q, _, _, _ := setup(t)
	d, err := q.GetBreakdown(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if d.Breakdown.Total != d.Supplier.SupplierScore {
		t.Fatalf("breakdown total %v != score %v", d.Breakdown.Total, d.Supplier.SupplierScore)
	}
	if d.Band != domain.Band(d.Supplier.SupplierScore) {
		t.Fatalf("band = %s", d.Band)
	}
}

func TestFacets_FilteredSubset(t *testing.T) {
	q, _, _, _ := setup(t)
	f, err := q.Facets(context.Background(), domain.Filter{Keyword: ptr("casting")})
	if err != nil {
		t.Fatal(err)
	}
	if f.Count != 2 || f.Price == nil || f.Price.Min != 100 || f.Price.Max != 100 {
		t.Fatalf("unexpected facets: %+v", f)
	}

	empty, err := q.Facets(context.Background(), domain.Filter{Keyword: ptr("none")})
	if err != nil {
		t.Fatal(err)
	}
	if empty.Count != 0 || empty.Price != nil {
		t.Fatalf("empty facets: %+v", empty)
	}
}

func TestReload_FailureKeepsPrevious(t *testing.T) {
	q, rl, src, _ := setup(t)
	info, _ := q.Info()

	src.err = errors.New("disk gone")
	if _, err := rl.Reload(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
	rl.ReloadOrKeep(context.Background())

	after, err := q.Info()
	if err != nil {
		t.Fatal(err)
	}
	if after.Version != info.Version || after.Records != 3 {
		t.Fatalf("dataset replaced after failed reload: %+v", after)
	}
}

type countedSource struct {
	fakeSource
	n   int
	err error
}

func (c *countedSource) Count(context.Context) (int, error) { return c.n, c.err }

func TestReload_SourceCount(t *testing.T) {
	eng := scoring.New(scoring.DefaultConfig())

	_, rl, _, _ := setup(t)
	if _, ok, _ := rl.SourceCount(context.Background()); ok {
		t.Fatalf("plain source should not be countable")
	}

	src := &countedSource{fakeSource: fakeSource{recs: records()}, n: 42}
	rl = app.NewReloadService(src, eng, dataset.NewStore(nil))
	n, ok, err := rl.SourceCount(context.Background())
	if !ok || err != nil || n != 42 {
		t.Fatalf("SourceCount = %d, %v, %v", n, ok, err)
	}
	src.err = domain.ErrDataLoad
	if _, ok, err := rl.SourceCount(context.Background()); !ok || !errors.Is(err, domain.ErrDataLoad) {
		t.Fatalf("count error not surfaced: %v %v", ok, err)
	}
}

func TestQueries_NoDataset(t *testing.T) {
	eng := scoring.New(scoring.DefaultConfig())
	q := app.NewQueryService(dataset.NewStore(nil), eng, &fakeCache{}, time.Minute)
	if _, err := q.ListSuppliers(context.Background(), domain.Filter{}, domain.DefaultSort()); !errors.Is(err, domain.ErrNoDataset) {
		t.Fatalf("err = %v", err)
	}
	if _, err := q.GetSupplier(context.Background(), 0); !errors.Is(err, domain.ErrNoDataset) {
		t.Fatalf("err = %v", err)
	}
}
