package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"supplier_ranker/internal/dataset"
	"supplier_ranker/internal/domain"
	"supplier_ranker/internal/scoring"
)

func ptr[T any](v T) *T { return &v }

func sample() []domain.Record {
	return []domain.Record{
		{Keyword: "casting", Company: "A Ltd", Phone: ptr("1")},
		{Keyword: "forging", Company: "B", City: ptr("Pune")},
		{Keyword: "casting", Company: "C"},
	}
}

func TestBuild_ScoresOnceInLoadOrder(t *testing.T) {
	eng := scoring.New(scoring.DefaultConfig())
	ds := dataset.Build(sample(), eng, "test", 1)

	if ds.Len() != 3 {
		t.Fatalf("len = %d", ds.Len())
	}
	for i, r := range ds.Records() {
		if r.Index != i {
			t.Fatalf("record %d has index %d", i, r.Index)
		}
		if r.SupplierScore != eng.Score(r.Record) {
			t.Fatalf("record %d score %v, want %v", i, r.SupplierScore, eng.Score(r.Record))
		}
	}
	if ds.Source() != "test" || ds.LoadedAt().IsZero() {
		t.Fatalf("metadata not set: %q %v", ds.Source(), ds.LoadedAt())
	}
}

func TestBuild_DigestTracksContent(t *testing.T) {
	eng := scoring.New(scoring.DefaultConfig())
	a := dataset.Build(sample(), eng, "a", 1)
	b := dataset.Build(sample(), eng, "b", 7)
	if a.Version() != 1 || b.Version() != 7 {
		t.Fatalf("versions = %d, %d", a.Version(), b.Version())
	}
	if a.Digest() == "" || a.Digest() != b.Digest() {
		t.Fatalf("same records, different digests: %q %q", a.Digest(), b.Digest())
	}

	other := sample()
	other[1].Keyword = "casting"
	if c := dataset.Build(other, eng, "a", 1); c.Digest() == a.Digest() {
		t.Fatalf("different records share digest %q", c.Digest())
	}

	// order is part of the content: positions resolve differently
	swapped := sample()
	swapped[0], swapped[2] = swapped[2], swapped[0]
	if c := dataset.Build(swapped, eng, "a", 1); c.Digest() == a.Digest() {
		t.Fatalf("reordered records share digest")
	}

	// scores are too: the same file under different weights ranks differently
	flat := scoring.DefaultConfig()
	flat.Weights = scoring.Weights{Products: 1}
	if c := dataset.Build(sample(), scoring.New(flat), "a", 1); c.Digest() == a.Digest() {
		t.Fatalf("rescored records share digest")
	}
}

func TestAt_OutOfRange(t *testing.T) {
	ds := dataset.Build(sample(), scoring.New(scoring.DefaultConfig()), "test", 1)

	for _, i := range []int{-1, ds.Len(), ds.Len() + 10} {
		if _, err := ds.At(i); !errors.Is(err, domain.ErrOutOfRange) {
			t.Fatalf("At(%d) err = %v, want ErrOutOfRange", i, err)
		}
	}
	r, err := ds.At(1)
	if err != nil || r.Company != "B" {
		t.Fatalf("At(1) = %+v, %v", r, err)
	}
}

func TestStore_SwapIsAtomic(t *testing.T) {
	eng := scoring.New(scoring.DefaultConfig())
	st := dataset.NewStore(nil)
	if _, err := st.Current(); !errors.Is(err, domain.ErrNoDataset) {
		t.Fatalf("empty store err = %v", err)
	}

	first := dataset.Build(sample(), eng, "first", 1)
	if prev := st.Swap(first); prev != nil {
		t.Fatalf("first swap returned %v", prev)
	}

	bigger := append(sample(), sample()...)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				ds, err := st.Current()
				if err != nil {
					t.Error(err)
					return
				}
				if n := ds.Len(); n != 3 && n != 6 {
					t.Errorf("observed partial dataset of %d records", n)
					return
				}
			}
		}()
	}
	for i := 0; i < 100; i++ {
		if i%2 == 0 {
			st.Swap(dataset.Build(bigger, eng, "big", 1))
		} else {
			st.Swap(dataset.Build(sample(), eng, "small", 1))
		}
	}
	close(stop)
	wg.Wait()
}

func TestWatch_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suppliers.csv")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- dataset.Watch(ctx, path, 20*time.Millisecond, func() { fired <- struct{}{} })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	// unrelated files in the same directory are ignored
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatalf("watch callback not called")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Watch did not stop on cancel")
	}
}
