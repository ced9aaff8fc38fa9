package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/stemscope/stemscope/callresponse"
	"github.com/stemscope/stemscope/fills"
	"github.com/stemscope/stemscope/motifs"
	"github.com/stemscope/stemscope/regions"
	"github.com/stemscope/stemscope/store"
	"github.com/stemscope/stemscope/structure"
	"github.com/stemscope/stemscope/subregions"
)

// analyzeHandler runs the full region -> motif -> call/response ->
// fill pipeline over a stored reference and replaces its snapshot.
func analyzeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok || snapshot.StemSet == nil {
			WriteError(w, http.StatusNotFound, "reference not found", "NOT_FOUND")
			return
		}

		var req AnalyzeRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
				return
			}
		}

		sensitivity := cfg.DefaultSensitivity
		if req.Sensitivity != nil {
			sensitivity = *req.Sensitivity
		}
		sensitivity, ok = validateSensitivity(w, cfg, sensitivity)
		if !ok {
			return
		}

		ctx := r.Context()
		set := snapshot.StemSet

		regionList, err := regions.NewDetector().Detect(ctx, set)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "ANALYSIS_FAILED")
			return
		}

		motifDetector := motifs.NewDetector(motifs.DefaultOptions())
		motifResult, err := motifDetector.Detect(ctx, set, regionList, sensitivity)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "ANALYSIS_FAILED")
			return
		}

		pairs, err := callresponse.NewDetector(callresponse.DefaultConfig()).
			Detect(ctx, motifResult.Instances, regionList, set.BPM)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "ANALYSIS_FAILED")
			return
		}

		fillList, err := fills.NewDetector(fills.DefaultConfig()).Detect(ctx, set, regionList)
		if err != nil {
			WriteError(w, http.StatusUnprocessableEntity, err.Error(), "ANALYSIS_FAILED")
			return
		}

		updated := &store.Snapshot{
			ReferenceID: id,
			RunID:       store.NewRunID(),
			StemSet:     set,
			Regions:     regionList,
			Instances:   motifResult.Instances,
			Groups:      motifResult.Groups,
			Raw:         motifResult.Raw,
			Pairs:       pairs,
			Fills:       fillList,
			Sensitivity: sensitivity,
		}
		cfg.Store.Put(updated)

		WriteJSON(w, http.StatusOK, AnalyzeResponse{
			ReferenceID: id,
			RunID:       updated.RunID,
			Regions:     regionList,
			Motifs:      motifResult.Instances,
			Groups:      motifResult.Groups,
			Pairs:       pairs,
			Fills:       fillList,
			Sensitivity: sensitivity,
		})
	}
}

// reclusterHandler re-runs clustering from the retained raw instances
// with a new sensitivity, leaving feature extraction untouched.
func reclusterHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok || len(snapshot.Raw) == 0 {
			WriteError(w, http.StatusNotFound, "no analyzed motifs for reference", "NOT_FOUND")
			return
		}

		var req ReclusterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		sensitivity, ok := validateSensitivity(w, cfg, req.Sensitivity)
		if !ok {
			return
		}

		motifDetector := motifs.NewDetector(motifs.DefaultOptions())
		instances, groups := motifDetector.Recluster(snapshot.Raw, snapshot.Regions, sensitivity)

		updated := *snapshot
		updated.RunID = store.NewRunID()
		updated.Instances = instances
		updated.Groups = groups
		updated.Sensitivity = sensitivity
		updated.Pairs = nil // stale against the new grouping
		cfg.Store.Put(&updated)

		WriteJSON(w, http.StatusOK, MotifsResponse{
			ReferenceID: id,
			Instances:   instances,
			Groups:      groups,
			Sensitivity: sensitivity,
		})
	}
}

// validateSensitivity rejects values outside [0,1] and clamps the
// rest to the usable band, logging any adjustment.
func validateSensitivity(w http.ResponseWriter, cfg ServerConfig, sensitivity structure.SensitivityConfig) (structure.SensitivityConfig, bool) {
	if err := sensitivity.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "INVALID_SENSITIVITY")
		return sensitivity, false
	}

	clamped := sensitivity.Clamped()
	if clamped != sensitivity {
		cfg.Logger.Info("sensitivity clamped",
			zap.Any("requested", sensitivity),
			zap.Any("applied", clamped),
		)
	}
	return clamped, true
}

func regionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok || snapshot.Regions == nil {
			WriteError(w, http.StatusNotFound, "no regions for reference", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, RegionsResponse{ReferenceID: id, Regions: snapshot.Regions})
	}
}

func motifsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok || snapshot.Instances == nil {
			WriteError(w, http.StatusNotFound, "no motifs for reference", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, MotifsResponse{
			ReferenceID: id,
			Instances:   snapshot.Instances,
			Groups:      snapshot.Groups,
			Sensitivity: snapshot.Sensitivity,
		})
	}
}

func pairsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "reference not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, PairsResponse{ReferenceID: id, Pairs: snapshot.Pairs})
	}
}

func lanesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok || snapshot.Regions == nil {
			WriteError(w, http.StatusNotFound, "reference not analyzed", "NOT_FOUND")
			return
		}
		lanes := callresponse.BuildLanes(id, snapshot.Regions, snapshot.Pairs, snapshot.StemSet.BPM, snapshot.Instances)
		WriteJSON(w, http.StatusOK, lanes)
	}
}

func fillsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok {
			WriteError(w, http.StatusNotFound, "reference not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, FillsResponse{ReferenceID: id, Fills: snapshot.Fills})
	}
}

func subregionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		snapshot, ok := cfg.Store.Get(id)
		if !ok || snapshot.Regions == nil {
			WriteError(w, http.StatusNotFound, "reference not analyzed", "NOT_FOUND")
			return
		}
		lanes := subregions.Compute(snapshot.Regions, snapshot.Instances, snapshot.Groups,
			snapshot.StemSet.BPM, subregions.DefaultBarsPerChunk)
		WriteJSON(w, http.StatusOK, SubRegionsResponse{ReferenceID: id, Regions: lanes})
	}
}
