package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/stemscope/stemscope/store"
	"github.com/stemscope/stemscope/structure"
)

const testSampleRate = 8000

func testConfig() (ServerConfig, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return ServerConfig{
		Port:               0,
		Store:              st,
		Logger:             zap.NewNop(),
		StartTime:          time.Now(),
		DefaultSensitivity: structure.DefaultSensitivityConfig(),
	}, st
}

// testStemSet is 30s of audio: a quiet-loud-quiet drum tone with
// silent other stems, enough for the full pipeline to run.
func testStemSet() *structure.StemSet {
	n := 30 * testSampleRate
	drums := make([]float64, n)
	for i := range drums {
		t := float64(i) / testSampleRate
		amp := 0.1
		if t >= 10 && t < 20 {
			amp = 0.8
		}
		drums[i] = amp * math.Sin(2*math.Pi*200*t)
	}
	silence := make([]float64, n)

	buf := func(role structure.StemRole, samples []float64) *structure.StemBuffer {
		return &structure.StemBuffer{Role: role, Samples: samples, SampleRate: testSampleRate}
	}
	return &structure.StemSet{
		Drums:       buf(structure.StemDrums, drums),
		Bass:        buf(structure.StemBass, silence),
		Vocals:      buf(structure.StemVocals, silence),
		Instruments: buf(structure.StemInstruments, silence),
		FullMix:     buf(structure.StemFullMix, drums),
		BPM:         120,
	}
}

func doRequest(t *testing.T, router http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1"})
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if resp.References != 1 {
		t.Errorf("references = %d, want 1", resp.References)
	}
}

func TestListReferences(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-b"})
	st.Put(&store.Snapshot{ReferenceID: "ref-a"})
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodGet, "/references", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp ReferencesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.ReferenceIDs) != 2 || resp.ReferenceIDs[0] != "ref-a" {
		t.Errorf("reference ids = %v, want sorted [ref-a ref-b]", resp.ReferenceIDs)
	}
}

func TestDeleteReference(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1"})
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodDelete, "/references/ref-1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if st.Has("ref-1") {
		t.Error("reference still stored after delete")
	}

	rec = doRequest(t, router, http.MethodDelete, "/references/ref-1", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestAnalyzeUnknownReference(t *testing.T) {
	cfg, _ := testConfig()
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodPost, "/references/nope/analyze", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp.Code)
	}
}

func TestAnalyzeInvalidSensitivity(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1", StemSet: testStemSet()})
	router := NewRouter(cfg)

	body, _ := json.Marshal(AnalyzeRequest{
		Sensitivity: &structure.SensitivityConfig{Drums: 1.5, Bass: 0.5, Vocals: 0.5, Instruments: 0.5},
	})
	rec := doRequest(t, router, http.MethodPost, "/references/ref-1/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Code != "INVALID_SENSITIVITY" {
		t.Errorf("code = %q, want INVALID_SENSITIVITY", resp.Code)
	}
}

func TestAnalyzePipeline(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1", StemSet: testStemSet()})
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodPost, "/references/ref-1/analyze", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad analyze body: %v", err)
	}
	if resp.RunID == "" {
		t.Error("missing run id")
	}
	if len(resp.Regions) == 0 {
		t.Error("analyze produced no regions")
	}
	if len(resp.Motifs) == 0 {
		t.Error("analyze produced no motif instances")
	}

	// The snapshot is now queryable through the read endpoints.
	rec = doRequest(t, router, http.MethodGet, "/references/ref-1/regions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("regions status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/references/ref-1/motifs", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("motifs status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/references/ref-1/call-response", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("call-response status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/references/ref-1/call-response/lanes", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("lanes status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/references/ref-1/fills", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fills status = %d, want 200", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/references/ref-1/subregions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("subregions status = %d, want 200", rec.Code)
	}
}

func TestReclusterRequiresAnalysis(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1", StemSet: testStemSet()})
	router := NewRouter(cfg)

	body, _ := json.Marshal(ReclusterRequest{Sensitivity: structure.DefaultSensitivityConfig()})
	rec := doRequest(t, router, http.MethodPost, "/references/ref-1/motifs/recluster", body)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before any analysis", rec.Code)
	}
}

func TestRecluster(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1", StemSet: testStemSet()})
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodPost, "/references/ref-1/analyze", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body %s", rec.Code, rec.Body.String())
	}
	before, _ := st.Get("ref-1")
	firstRun := before.RunID

	body, _ := json.Marshal(ReclusterRequest{
		Sensitivity: structure.SensitivityConfig{Drums: 0.9, Bass: 0.9, Vocals: 0.9, Instruments: 0.9},
	})
	rec = doRequest(t, router, http.MethodPost, "/references/ref-1/motifs/recluster", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("recluster status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp MotifsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad recluster body: %v", err)
	}
	if resp.Sensitivity.Drums != 0.9 {
		t.Errorf("applied drums sensitivity = %v, want 0.9", resp.Sensitivity.Drums)
	}
	if len(resp.Instances) == 0 {
		t.Error("recluster returned no instances")
	}

	after, _ := st.Get("ref-1")
	if after.RunID == firstRun {
		t.Error("recluster did not mint a new run id")
	}
	if after.Pairs != nil {
		t.Error("stale call/response pairs survived the recluster")
	}
}

func TestRegionsMissing(t *testing.T) {
	cfg, st := testConfig()
	st.Put(&store.Snapshot{ReferenceID: "ref-1", StemSet: testStemSet()})
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodGet, "/references/ref-1/regions", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 before analysis", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	cfg, _ := testConfig()
	router := NewRouter(cfg)

	rec := doRequest(t, router, http.MethodGet, "/health", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}
