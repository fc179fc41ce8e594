package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/codec"
	"github.com/srslogics/datasentinel/internal/dataset"
)

// Engine loads datasets from the blob store, profiles them and persists the
// JSON reports under the profiling/ prefix.
type Engine struct {
	store        blob.Store
	PSIThreshold float64
	KSAlpha      float64
}

// NewEngine builds an Engine with the given drift thresholds.
func NewEngine(store blob.Store, psiThreshold, ksAlpha float64) *Engine {
	return &Engine{store: store, PSIThreshold: psiThreshold, KSAlpha: ksAlpha}
}

// Load fetches and decodes the referenced dataset.
func (e *Engine) Load(ctx context.Context, ref blob.Ref) (*dataset.Dataset, error) {
	format, err := codec.Detect(ref.Key)
	if err != nil {
		return nil, err
	}
	raw, err := e.store.Get(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, err
	}
	return codec.Decode(raw, format)
}

// Profile profiles the referenced dataset, uploads the report next to it
// under profiling/, and returns the report and the report's reference.
func (e *Engine) Profile(ctx context.Context, refStr string) (*Report, string, error) {
	ref, err := blob.ParseRef(refStr)
	if err != nil {
		return nil, "", err
	}
	ds, err := e.Load(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	report := ProfileDataset(ds)
	url, err := e.uploadReport(ctx, ref, report, "_profile.json")
	if err != nil {
		return nil, "", err
	}
	return report, url, nil
}

// Drift profiles nothing by itself: it loads both datasets, compares shared
// numeric columns and uploads the drift report keyed by the current dataset.
func (e *Engine) Drift(ctx context.Context, baselineRef, currentRef string) (*DriftReport, string, error) {
	bref, err := blob.ParseRef(baselineRef)
	if err != nil {
		return nil, "", err
	}
	cref, err := blob.ParseRef(currentRef)
	if err != nil {
		return nil, "", err
	}
	baseline, err := e.Load(ctx, bref)
	if err != nil {
		return nil, "", err
	}
	current, err := e.Load(ctx, cref)
	if err != nil {
		return nil, "", err
	}
	report := DetectDrift(baseline, current, e.PSIThreshold, e.KSAlpha)
	url, err := e.uploadReport(ctx, cref, report, "_drift.json")
	if err != nil {
		return nil, "", err
	}
	return report, url, nil
}

func (e *Engine) uploadReport(ctx context.Context, src blob.Ref, report any, suffix string) (string, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	base := strings.TrimSuffix(path.Base(src.Key), path.Ext(src.Key))
	dest := blob.Ref{Bucket: src.Bucket, Key: "profiling/" + base + suffix}
	if err := e.store.Put(ctx, dest.Bucket, dest.Key, data); err != nil {
		return "", fmt.Errorf("upload report %s: %w", dest, err)
	}
	return dest.String(), nil
}
