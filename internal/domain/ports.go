package domain

import (
	"context"
	"errors"
)

var (
	// ErrDataLoad wraps any failure to read or parse the dataset source.
	ErrDataLoad = errors.New("dataset load failed")
	// ErrOutOfRange is returned for a positional lookup outside [0, len).
	ErrOutOfRange = errors.New("supplier index out of range")
	// ErrNoDataset is returned when no dataset has been loaded yet.
	ErrNoDataset = errors.New("no dataset loaded")
)

// SupplierSource yields supplier records in load order.
type SupplierSource interface {
	Name() string
	LoadRecords(ctx context.Context) ([]Record, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
