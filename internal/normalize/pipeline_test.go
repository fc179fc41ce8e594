package normalize

import (
	"context"
	"errors"
	"testing"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/codec"
	"github.com/srslogics/datasentinel/internal/dataset"
)

func TestNormalizeEndToEnd(t *testing.T) {
	store := blob.NewMemoryStore()
	ctx := context.Background()
	csv := "amount,city\n10,pune\n20,delhi\n30,pune\n40,delhi\n50,pune\n6000,delhi\n"
	if err := store.Put(ctx, "datasets", "raw/sales.csv", []byte(csv)); err != nil {
		t.Fatal(err)
	}

	n := NewNormalizer(store, DefaultConfig())
	dest, err := n.Normalize(ctx, "s3://datasets/raw/sales.csv")
	if err != nil {
		t.Fatal(err)
	}
	if dest != "s3://datasets/normalized/sales_normalized.parquet" {
		t.Fatalf("dest = %s", dest)
	}

	raw, err := store.Get(ctx, "datasets", "normalized/sales_normalized.parquet")
	if err != nil {
		t.Fatal(err)
	}
	out, err := codec.Decode(raw, codec.FormatParquet)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 6 {
		t.Fatalf("rows = %d, want 6", out.NumRows())
	}
	for _, c := range out.Columns() {
		if c.Kind != dataset.Numeric {
			t.Fatalf("output column %q is %s, want numeric", c.Name, c.Kind)
		}
	}
	// the low-cardinality city column one-hot encodes
	if _, ok := out.Column("city_0"); !ok {
		t.Fatalf("expected one-hot columns, got %v", out.Names())
	}
}

func TestNormalizeMissingBlob(t *testing.T) {
	n := NewNormalizer(blob.NewMemoryStore(), DefaultConfig())
	_, err := n.Normalize(context.Background(), "s3://datasets/raw/nope.csv")
	var nf *blob.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestNormalizeRejectsJSONInput(t *testing.T) {
	store := blob.NewMemoryStore()
	ctx := context.Background()
	_ = store.Put(ctx, "datasets", "raw/data.json", []byte(`[{"x":1}]`))
	n := NewNormalizer(store, DefaultConfig())
	_, err := n.Normalize(ctx, "s3://datasets/raw/data.json")
	var unsupported *codec.UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedFormatError", err)
	}
}

func TestNormalizeRejectsBadReference(t *testing.T) {
	n := NewNormalizer(blob.NewMemoryStore(), DefaultConfig())
	if _, err := n.Normalize(context.Background(), "datasets/raw/data.csv"); err == nil {
		t.Fatal("expected reference parse error")
	}
}
