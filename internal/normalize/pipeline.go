// Package normalize implements the dataset repair pipeline: missing-value
// repair, adaptive outlier handling, categorical encoding and min-max
// scaling, reading from and writing back to the blob store.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/codec"
	"github.com/srslogics/datasentinel/internal/dataset"
)

// WriteError indicates the normalized output could not be persisted.
type WriteError struct {
	Ref blob.Ref
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write normalized output %s: %v", e.Ref, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Config carries the pipeline knobs.
type Config struct {
	Outliers Options
	// DateCoerceRate is the fraction of rows that must parse as dates for a
	// text column to become temporal.
	DateCoerceRate float64
	// OneHotMax is the largest distinct-value count that still one-hot
	// encodes; higher cardinality label-encodes.
	OneHotMax int
}

// DefaultConfig mirrors the platform defaults.
func DefaultConfig() Config {
	return Config{
		Outliers:       DefaultOptions(),
		DateCoerceRate: 0.5,
		OneHotMax:      10,
	}
}

// Normalizer runs the full pipeline against a blob store.
type Normalizer struct {
	store blob.Store
	cfg   Config
}

// NewNormalizer builds a Normalizer over the given store.
func NewNormalizer(store blob.Store, cfg Config) *Normalizer {
	return &Normalizer{store: store, cfg: cfg}
}

// Transform applies the in-memory stages to a loaded dataset: repair,
// outlier detection and resolution, categorical encoding, numeric scaling.
// Each stage returns a new Dataset; the input is never mutated.
func (n *Normalizer) Transform(ds *dataset.Dataset) (*dataset.Dataset, error) {
	ds = Repair(ds, n.cfg.DateCoerceRate)
	method, mask := Detect(ds, n.cfg.Outliers)
	ds = Resolve(ds, method, mask, n.cfg.Outliers)
	ds, err := EncodeCategoricals(ds, n.cfg.OneHotMax)
	if err != nil {
		return nil, err
	}
	return ScaleNumeric(ds), nil
}

// Normalize loads the referenced dataset, transforms it and persists the
// result as parquet under the derived destination, returning the new
// reference.
func (n *Normalizer) Normalize(ctx context.Context, refStr string) (string, error) {
	ref, err := blob.ParseRef(refStr)
	if err != nil {
		return "", err
	}
	format, err := codec.Detect(ref.Key)
	if err != nil {
		return "", err
	}
	if format == codec.FormatJSON {
		// The normalizer ingests csv/xlsx/parquet only.
		return "", &codec.UnsupportedFormatError{Key: ref.Key}
	}
	raw, err := n.store.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return "", err
	}
	ds, err := codec.Decode(raw, format)
	if err != nil {
		return "", err
	}

	ds, err = n.Transform(ds)
	if err != nil {
		return "", err
	}

	out, err := codec.Encode(ds, codec.FormatParquet)
	if err != nil {
		return "", err
	}
	dest := blob.Ref{Bucket: ref.Bucket, Key: DeriveDestination(ref.Key)}
	if err := n.store.Put(ctx, dest.Bucket, dest.Key, out); err != nil {
		return "", &WriteError{Ref: dest, Err: err}
	}
	return dest.String(), nil
}

// DeriveDestination maps an input key to its normalized output key: the
// raw/ path segment becomes normalized/ and the extension is replaced by
// a _normalized.parquet suffix.
func DeriveDestination(key string) string {
	dest := strings.Replace(key, "raw/", "normalized/", 1)
	if i := strings.LastIndex(dest, "."); i > 0 {
		dest = dest[:i]
	}
	return dest + "_normalized.parquet"
}
