package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gonum.org/v1/gonum/mat"

	"divnest/app"
	"divnest/domain/community"
	"divnest/domain/core"
	"divnest/domain/diversity"
	"divnest/domain/randtest"
)

// TestRequestBody is the JSON payload for POST /api/tests.
type TestRequestBody struct {
	Sites         []string    `json:"sites"`
	Species       []string    `json:"species"`
	Counts        [][]float64 `json:"counts"`
	Dissimilarity [][]float64 `json:"dissimilarity,omitempty"`
	Structure     *struct {
		Levels      []string   `json:"levels"`
		Assignments [][]string `json:"assignments"`
	} `json:"structure,omitempty"`
	Level       int     `json:"level"`
	Repetitions int     `json:"nrep"`
	Alternative string  `json:"alternative"`
	Formula     string  `json:"formula"`
	Option      string  `json:"option"`
	MeanType    string  `json:"mean_type"`
	Tol         float64 `json:"tol"`
	Seed        int64   `json:"seed"`
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleRunTest(w http.ResponseWriter, r *http.Request) {
	var body TestRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	req, err := body.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := a.service.RunTest(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsInputError(err) || core.IsConfigError(err) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if a.results == nil {
		writeError(w, http.StatusNotImplemented, "no result store configured")
		return
	}
	id, err := core.ParseTestID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := a.results.GetResult(r.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleListResults(w http.ResponseWriter, r *http.Request) {
	if a.results == nil {
		writeError(w, http.StatusNotImplemented, "no result store configured")
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	results, err := a.results.ListResults(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// toRequest converts the wire payload into domain inputs.
func (b *TestRequestBody) toRequest() (app.TestRequest, error) {
	sites := make([]core.SiteID, len(b.Sites))
	for i, s := range b.Sites {
		sites[i] = core.SiteID(s)
	}
	species := make([]core.SpeciesID, len(b.Species))
	for i, s := range b.Species {
		species[i] = core.SpeciesID(s)
	}
	table, err := community.NewAbundanceTable(sites, species, b.Counts)
	if err != nil {
		return app.TestRequest{}, err
	}

	var dis *community.DissimilarityMatrix
	if b.Dissimilarity != nil {
		n := len(species)
		dist := mat.NewSymDense(n, nil)
		for i := 0; i < n && i < len(b.Dissimilarity); i++ {
			for j := i + 1; j < n && j < len(b.Dissimilarity[i]); j++ {
				dist.SetSym(i, j, b.Dissimilarity[i][j])
			}
		}
		dis, err = community.NewDissimilarityMatrix(species, dist)
		if err != nil {
			return app.TestRequest{}, err
		}
	}

	var str *community.StructureTable
	if b.Structure != nil {
		assignments := make([][]core.GroupID, len(b.Structure.Assignments))
		for i, row := range b.Structure.Assignments {
			groups := make([]core.GroupID, len(row))
			for j, g := range row {
				groups[j] = core.GroupID(g)
			}
			assignments[i] = groups
		}
		str, err = community.NewStructureTable(sites, b.Structure.Levels, assignments)
		if err != nil {
			return app.TestRequest{}, err
		}
	}

	level := b.Level
	if level == 0 {
		level = 1
	}
	return app.TestRequest{
		Table:         table,
		Dissimilarity: dis,
		Structure:     str,
		Level:         level,
		Repetitions:   b.Repetitions,
		Alternative:   randtest.Alternative(b.Alternative),
		Seed:          b.Seed,
		Options: diversity.Options{
			Formula:  diversity.Formula(b.Formula),
			Option:   diversity.Option(b.Option),
			MeanType: diversity.MeanType(b.MeanType),
			Tol:      b.Tol,
		},
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
