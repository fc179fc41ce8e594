package normalize

import (
	"math"
	"testing"

	"github.com/srslogics/datasentinel/internal/dataset"
)

func numCol(t *testing.T, ds *dataset.Dataset, name string) dataset.Column {
	t.Helper()
	c, ok := ds.Column(name)
	if !ok {
		t.Fatalf("column %q absent", name)
	}
	if c.Kind != dataset.Numeric {
		t.Fatalf("column %q is %s, want numeric", name, c.Kind)
	}
	return c
}

func TestRepairDropsAllMissingColumn(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewNumeric("keep", []float64{1, 2}),
		dataset.NewText("empty", []string{"", ""}),
	)
	out := Repair(ds, 0.5)
	if _, ok := out.Column("empty"); ok {
		t.Fatal("all-missing column survived repair")
	}
	if _, ok := out.Column("keep"); !ok {
		t.Fatal("populated column dropped")
	}
}

func TestRepairFillsNumericGapsWithMedian(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewNumeric("x", []float64{1, math.NaN(), 3, 5}),
	)
	out := Repair(ds, 0.5)
	c := numCol(t, out, "x")
	if c.Floats[1] != 3 {
		t.Fatalf("gap filled with %g, want median 3", c.Floats[1])
	}
	if c.MissingCount() != 0 {
		t.Fatalf("repaired column still has %d missing values", c.MissingCount())
	}
	// input untouched
	if orig, _ := ds.Column("x"); !math.IsNaN(orig.Floats[1]) {
		t.Fatal("repair mutated its input")
	}
}

func TestRepairCoercesDateColumns(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewText("when", []string{"2024-01-01", "2024-02-15", "2024-03-30", "oops"}),
		dataset.NewText("note", []string{"a", "b", "2024-01-01", "d"}),
	)
	out := Repair(ds, 0.5)
	when, _ := out.Column("when")
	if when.Kind != dataset.Temporal {
		t.Fatalf("when is %s, want temporal (3/4 rows parse)", when.Kind)
	}
	if !when.Missing(3) {
		t.Fatal("unparseable cell should be missing after coercion")
	}
	note, _ := out.Column("note")
	if note.Kind != dataset.Text {
		t.Fatalf("note is %s, want text (1/4 rows parse)", note.Kind)
	}
}

func TestDetectFallsBackToIQROnTinyData(t *testing.T) {
	// A 10% subsample of 6 rows is far below the normality test's minimum,
	// so no p-value is obtainable and the distribution-free rule applies.
	ds, _ := dataset.New(
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 5, 100}),
	)
	method, mask := Detect(ds, DefaultOptions())
	if method != MethodIQR {
		t.Fatalf("method = %s, want iqr", method)
	}
	flags := mask.Flags["x"]
	want := []bool{false, false, false, false, false, true}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("flags = %v, want %v", flags, want)
		}
	}
	if got := mask.Fraction["x"]; math.Abs(got-1.0/6.0) > 1e-12 {
		t.Fatalf("fraction = %g, want 1/6", got)
	}
}

func TestDetectIsDeterministic(t *testing.T) {
	vals := make([]float64, 200)
	for i := range vals {
		// deterministic non-trivial spread
		vals[i] = float64(i%37) + float64(i%11)*0.5
	}
	ds, _ := dataset.New(dataset.NewNumeric("x", vals))
	m1, mask1 := Detect(ds, DefaultOptions())
	m2, mask2 := Detect(ds, DefaultOptions())
	if m1 != m2 {
		t.Fatalf("methods differ across runs: %s vs %s", m1, m2)
	}
	for i := range mask1.Flags["x"] {
		if mask1.Flags["x"][i] != mask2.Flags["x"][i] {
			t.Fatalf("flags differ at row %d", i)
		}
	}
}

func TestResolveWinsorizesHeavilyFlaggedColumn(t *testing.T) {
	// One of six rows flagged: fraction 1/6 exceeds the 5% cutoff, so the
	// column is clamped to its 5th/95th percentiles instead of losing cells.
	ds, _ := dataset.New(
		dataset.NewNumeric("x", []float64{1, 2, 3, 4, 5, 100}),
	)
	opt := DefaultOptions()
	method, mask := Detect(ds, opt)
	out := Resolve(ds, method, mask, opt)
	c := numCol(t, out, "x")
	if c.MissingCount() != 0 {
		t.Fatalf("winsorized column lost %d cells", c.MissingCount())
	}
	if got := c.Floats[5]; math.Abs(got-76.25) > 1e-9 {
		t.Fatalf("upper clamp = %g, want 76.25 (95th percentile)", got)
	}
	if got := c.Floats[0]; math.Abs(got-1.25) > 1e-9 {
		t.Fatalf("lower clamp = %g, want 1.25 (5th percentile)", got)
	}
}

func TestResolveDropsSparselyFlaggedCells(t *testing.T) {
	// One of forty rows flagged: fraction 2.5% is under the cutoff, so the
	// out-of-bound cell becomes missing.
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = float64(i % 10)
	}
	vals[39] = 1000
	ds, _ := dataset.New(dataset.NewNumeric("x", vals))
	opt := DefaultOptions()
	method, mask := Detect(ds, opt)
	if got := mask.Fraction["x"]; got > opt.ResolveCutoff {
		t.Fatalf("fraction = %g, want <= cutoff for this fixture", got)
	}
	out := Resolve(ds, method, mask, opt)
	c := numCol(t, out, "x")
	if !math.IsNaN(c.Floats[39]) {
		t.Fatalf("outlier cell = %g, want missing", c.Floats[39])
	}
	if c.MissingCount() != 1 {
		t.Fatalf("missing count = %d, want 1", c.MissingCount())
	}
}

func TestEncodeOneHotLowCardinality(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewNumeric("n", []float64{1, 2, 3, 4}),
		dataset.NewText("color", []string{"red", "blue", "red", ""}),
	)
	out, err := EncodeCategoricals(ds, 10)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.Column("color"); ok {
		t.Fatal("one-hot source column should be gone")
	}
	// sorted categories: blue=0, red=1
	blue := numCol(t, out, "color_0")
	red := numCol(t, out, "color_1")
	wantBlue := []float64{0, 1, 0, 0}
	wantRed := []float64{1, 0, 1, 0}
	for i := range wantBlue {
		if blue.Floats[i] != wantBlue[i] || red.Floats[i] != wantRed[i] {
			t.Fatalf("row %d: blue=%g red=%g", i, blue.Floats[i], red.Floats[i])
		}
	}
	// indicators are appended after the surviving columns
	names := out.Names()
	if names[0] != "n" || names[1] != "color_0" || names[2] != "color_1" {
		t.Fatalf("column order = %v", names)
	}
}

func TestEncodeLabelHighCardinality(t *testing.T) {
	vals := []string{"c", "a", "b", "d", ""}
	ds, _ := dataset.New(dataset.NewText("cat", vals))
	out, err := EncodeCategoricals(ds, 3)
	if err != nil {
		t.Fatal(err)
	}
	c := numCol(t, out, "cat")
	want := []float64{2, 0, 1, 3}
	for i := range want {
		if c.Floats[i] != want[i] {
			t.Fatalf("codes = %v, want sorted-order labels %v", c.Floats[:4], want)
		}
	}
	if !math.IsNaN(c.Floats[4]) {
		t.Fatalf("missing cell label-encoded to %g, want NaN", c.Floats[4])
	}
}

func TestEncodeRejectsIndicatorNameCollision(t *testing.T) {
	// An input that already holds a `<name>_<i>` column clashes with the
	// generated one-hot indicator names.
	ds, _ := dataset.New(
		dataset.NewNumeric("c_0", []float64{1, 2, 3}),
		dataset.NewText("c", []string{"x", "y", "x"}),
	)
	out, err := EncodeCategoricals(ds, 10)
	if err == nil {
		t.Fatal("expected duplicate-name error")
	}
	if out != nil {
		t.Fatal("dataset returned alongside error")
	}
}

func TestResolveDropBranchIgnoresDetectionMethod(t *testing.T) {
	// Sparsely flagged columns clamp against the IQR fences whichever
	// method produced the mask, so both methods repair identically.
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = float64(i % 10)
	}
	vals[39] = 1000
	ds, _ := dataset.New(dataset.NewNumeric("x", vals))
	opt := DefaultOptions()
	flags := make([]bool, 40)
	flags[39] = true
	mask := &Mask{
		Flags:    map[string][]bool{"x": flags},
		Fraction: map[string]float64{"x": 1.0 / 40.0},
	}

	byZ := Resolve(ds, MethodZScore, mask, opt)
	byIQR := Resolve(ds, MethodIQR, mask, opt)
	z := numCol(t, byZ, "x")
	q := numCol(t, byIQR, "x")
	if !math.IsNaN(z.Floats[39]) || !math.IsNaN(q.Floats[39]) {
		t.Fatalf("outlier cell survived: zscore=%g iqr=%g", z.Floats[39], q.Floats[39])
	}
	for i := 0; i < 39; i++ {
		if z.Floats[i] != q.Floats[i] {
			t.Fatalf("row %d differs across methods: %g vs %g", i, z.Floats[i], q.Floats[i])
		}
	}
}

func TestScaleNumericRange(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewNumeric("x", []float64{10, 20, 30, math.NaN()}),
		dataset.NewNumeric("const", []float64{7, 7, 7, 7}),
		dataset.NewNumeric("hot", []float64{0, 1, 0, 1}),
	)
	out := ScaleNumeric(ds)

	x := numCol(t, out, "x")
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(x.Floats[i]-want[i]) > 1e-12 {
			t.Fatalf("x = %v, want %v", x.Floats[:3], want)
		}
	}
	if !math.IsNaN(x.Floats[3]) {
		t.Fatal("missing cell should stay missing through scaling")
	}

	constant := numCol(t, out, "const")
	for i, v := range constant.Floats {
		if v != 0 {
			t.Fatalf("constant column row %d = %g, want 0", i, v)
		}
	}

	hot := numCol(t, out, "hot")
	for i, v := range hot.Floats {
		if v != float64(i%2) {
			t.Fatalf("indicator column changed: %v", hot.Floats)
		}
	}
}

func TestTransformProducesAllNumericScaledColumns(t *testing.T) {
	ds, _ := dataset.New(
		dataset.NewNumeric("amount", []float64{10, math.NaN(), 30, 40, 50, 6000}),
		dataset.NewText("city", []string{"pune", "delhi", "pune", "", "delhi", "pune"}),
		dataset.NewText("blank", []string{"", "", "", "", "", ""}),
	)
	n := NewNormalizer(nil, DefaultConfig())
	out, err := n.Transform(ds)
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := out.Column("blank"); ok {
		t.Fatal("all-missing column survived the pipeline")
	}
	for _, c := range out.Columns() {
		if c.Kind != dataset.Numeric {
			t.Fatalf("column %q is %s after the full pipeline", c.Name, c.Kind)
		}
		for _, v := range c.Floats {
			if math.IsNaN(v) {
				continue
			}
			if v < 0 || v > 1 {
				t.Fatalf("column %q holds unscaled value %g", c.Name, v)
			}
		}
	}
}

func TestEncodeAndScaleAreIdempotent(t *testing.T) {
	// Encoding and scaling applied to their own output change nothing.
	// Outlier resolution is deliberately outside this guarantee.
	ds, _ := dataset.New(
		dataset.NewNumeric("amount", []float64{10, 20, 30, 40}),
		dataset.NewText("city", []string{"pune", "delhi", "pune", "delhi"}),
	)
	enc, err := EncodeCategoricals(ds, 10)
	if err != nil {
		t.Fatal(err)
	}
	once := ScaleNumeric(enc)
	enc, err = EncodeCategoricals(once, 10)
	if err != nil {
		t.Fatal(err)
	}
	twice := ScaleNumeric(enc)
	if got, want := twice.NumCols(), once.NumCols(); got != want {
		t.Fatalf("cols = %d after second pass, want %d", got, want)
	}
	for _, c := range once.Columns() {
		c2 := numCol(t, twice, c.Name)
		for i := range c.Floats {
			if c.Floats[i] != c2.Floats[i] {
				t.Fatalf("column %q row %d changed: %g -> %g", c.Name, i, c.Floats[i], c2.Floats[i])
			}
		}
	}
}

func TestDeriveDestination(t *testing.T) {
	cases := []struct{ in, want string }{
		{"raw/sales.csv", "normalized/sales_normalized.parquet"},
		{"raw/reports/q1.xlsx", "normalized/reports/q1_normalized.parquet"},
		{"sales.parquet", "sales_normalized.parquet"},
	}
	for _, tc := range cases {
		if got := DeriveDestination(tc.in); got != tc.want {
			t.Fatalf("DeriveDestination(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
