package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/render"

	"github.com/srslogics/datasentinel/internal/blob"
	"github.com/srslogics/datasentinel/internal/codec"
	"github.com/srslogics/datasentinel/internal/validate"
)

type normalizeRequest struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func (s *server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Bucket == "" || req.Name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing 'name' or 'bucket'"})
		return
	}
	ok, err := s.store.Exists(r.Context(), req.Bucket, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, &blob.NotFoundError{Bucket: req.Bucket, Key: req.Name})
		return
	}
	ref := blob.Ref{Bucket: req.Bucket, Key: req.Name}
	dest, err := s.normalizer.Normalize(r.Context(), ref.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{
		"message":     "normalization complete",
		"output_path": dest,
	})
}

type profileRequest struct {
	BucketName   string `json:"bucket_name"`
	CurrentBlob  string `json:"current_blob"`
	BaselineBlob string `json:"baseline_blob,omitempty"`
}

func (s *server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BucketName == "" || req.CurrentBlob == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing 'bucket_name' or 'current_blob'"})
		return
	}
	currentRef := blob.Ref{Bucket: req.BucketName, Key: req.CurrentBlob}
	_, profileURL, err := s.engine.Profile(r.Context(), currentRef.String())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := map[string]string{"profile_url": profileURL}
	if req.BaselineBlob != "" {
		baselineRef := blob.Ref{Bucket: req.BucketName, Key: req.BaselineBlob}
		_, driftURL, err := s.engine.Drift(r.Context(), baselineRef.String(), currentRef.String())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp["drift_url"] = driftURL
	}
	render.JSON(w, r, resp)
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filename := q.Get("filename")
	sourceName := q.Get("source_format")
	targetName := q.Get("target_format")
	if filename == "" || sourceName == "" || targetName == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing 'filename', 'source_format' or 'target_format'"})
		return
	}
	source, err := codec.ParseFormat(sourceName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	target, err := codec.ParseFormat(targetName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bucket := q.Get("bucket")
	if bucket == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing 'bucket'"})
		return
	}

	raw, err := s.store.Get(r.Context(), bucket, filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := codec.Decode(raw, source)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := codec.Encode(ds, target)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	destKey := fmt.Sprintf("converted/%s_converted.%s", base, target.Ext())
	if err := s.store.Put(r.Context(), bucket, destKey, out); err != nil {
		s.writeError(w, r, err)
		return
	}
	dest := blob.Ref{Bucket: bucket, Key: destKey}
	render.JSON(w, r, map[string]string{
		"message":             "conversion successful",
		"converted_file_path": dest.String(),
	})
}

type columnsRequest struct {
	BucketName     string `json:"bucket_name"`
	ScaledBlobPath string `json:"scaled_blob_path"`
}

func (s *server) handleColumns(w http.ResponseWriter, r *http.Request) {
	var req columnsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BucketName == "" || req.ScaledBlobPath == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing 'bucket_name' or 'scaled_blob_path'"})
		return
	}
	ds, err := s.engine.Load(r.Context(), blob.Ref{Bucket: req.BucketName, Key: req.ScaledBlobPath})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string][]string{"columns": ds.Names()})
}

type validateRequest struct {
	Bucket string          `json:"bucket"`
	Name   string          `json:"name"`
	Rules  json.RawMessage `json:"rules"`
}

func (s *server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Bucket == "" || req.Name == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "missing 'bucket' or 'name'"})
		return
	}
	rules, err := validate.ParseRules(req.Rules)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}
	ds, err := s.engine.Load(r.Context(), blob.Ref{Bucket: req.Bucket, Key: req.Name})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := validate.Run(ds, rules)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resultKey := fmt.Sprintf("validation-results/%s.results.json", req.Name)
	if err := s.store.Put(r.Context(), req.Bucket, resultKey, out); err != nil {
		s.writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"file":   req.Name,
		"passed": result.Passed,
	})
}
