package api

import (
	"github.com/stemscope/stemscope/callresponse"
	"github.com/stemscope/stemscope/structure"
	"github.com/stemscope/stemscope/subregions"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	UptimeS    int64  `json:"uptime_s"`
	References int    `json:"references"`
}

type AnalyzeRequest struct {
	Sensitivity *structure.SensitivityConfig `json:"sensitivity,omitempty"`
}

type AnalyzeResponse struct {
	ReferenceID string                        `json:"reference_id"`
	RunID       string                        `json:"run_id"`
	Regions     []*structure.Region           `json:"regions"`
	Motifs      []*structure.MotifInstance    `json:"motif_instances"`
	Groups      []*structure.MotifGroup       `json:"motif_groups"`
	Pairs       []*structure.CallResponsePair `json:"call_response_pairs"`
	Fills       []*structure.Fill             `json:"fills"`
	Sensitivity structure.SensitivityConfig   `json:"sensitivity"`
}

type RegionsResponse struct {
	ReferenceID string              `json:"reference_id"`
	Regions     []*structure.Region `json:"regions"`
}

type MotifsResponse struct {
	ReferenceID string                     `json:"reference_id"`
	Instances   []*structure.MotifInstance `json:"instances"`
	Groups      []*structure.MotifGroup    `json:"groups"`
	Sensitivity structure.SensitivityConfig `json:"sensitivity"`
}

type ReclusterRequest struct {
	Sensitivity structure.SensitivityConfig `json:"sensitivity"`
}

type PairsResponse struct {
	ReferenceID string                        `json:"reference_id"`
	Pairs       []*structure.CallResponsePair `json:"pairs"`
}

type FillsResponse struct {
	ReferenceID string            `json:"reference_id"`
	Fills       []*structure.Fill `json:"fills"`
}

type SubRegionsResponse struct {
	ReferenceID string                    `json:"reference_id"`
	Regions     []*subregions.RegionLanes `json:"regions"`
}

type LanesResponse = callresponse.Lanes

type ReferencesResponse struct {
	ReferenceIDs []string `json:"reference_ids"`
}
