// Package server exposes the published board datasets over a small
// read-only HTTP API. It reads the same JSON files the pipeline writes;
// there is no write path.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/solosevn/trainingrun/internal/store"
	"github.com/solosevn/trainingrun/pkg/ledger"
)

// BoardFiles maps board names to their dataset file paths.
type BoardFiles map[string]string

// Server provides the HTTP API.
type Server struct {
	boards  BoardFiles
	archive *store.Archive
	port    int
}

// New creates a new HTTP server. The archive is optional; without it the
// runs endpoint reports not found.
func New(boards BoardFiles, archive *store.Archive, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{boards: boards, archive: archive, port: port}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/boards", s.handleBoards)
	mux.HandleFunc("/api/v1/leaderboard", s.handleLeaderboard)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/verify", s.handleVerify)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)

	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("trainingrun server listening on %s\n", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	type boardInfo struct {
		Name    string `json:"name"`
		Dates   int    `json:"dates"`
		Models  int    `json:"models"`
		Latest  string `json:"latest,omitempty"`
		Missing bool   `json:"missing,omitempty"`
	}

	var infos []boardInfo
	for name, path := range s.boards {
		info := boardInfo{Name: name}
		led, err := store.LoadLedger(path)
		if err != nil {
			info.Missing = true
		} else {
			info.Dates = len(led.Dates)
			info.Models = len(led.Models)
			if n := len(led.Dates); n > 0 {
				info.Latest = led.Dates[n-1]
			}
		}
		infos = append(infos, info)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  infos,
		"count": len(infos),
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	led, ok := s.loadBoard(w, r)
	if !ok {
		return
	}
	if len(led.Dates) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "count": 0})
		return
	}

	type row struct {
		Rank           int                `json:"rank"`
		Name           string             `json:"name"`
		Company        string             `json:"company,omitempty"`
		Score          *float64           `json:"score"`
		SourceCount    int                `json:"source_count"`
		CategoryValues map[string]float64 `json:"category_values,omitempty"`
	}

	idx := len(led.Dates) - 1
	var rows []row
	for _, m := range led.Models {
		rows = append(rows, row{
			Rank:           m.Rank,
			Name:           m.Name,
			Company:        m.Company,
			Score:          m.ScoreAt(idx),
			SourceCount:    m.SourceCount,
			CategoryValues: m.CategoryValues,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"date":  led.Dates[idx],
		"data":  rows,
		"count": len(rows),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	led, ok := s.loadBoard(w, r)
	if !ok {
		return
	}

	name := r.URL.Query().Get("model")
	entity := led.Find(name)
	if entity == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown model %q", name)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"name":   entity.Name,
		"dates":  led.Dates,
		"scores": entity.Scores,
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	path, ok := s.boardPath(w, r)
	if !ok {
		return
	}

	if err := store.VerifyLedger(path); err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.archive == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run archive not configured"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.archive.RecentRuns(r.Context(), r.URL.Query().Get("board"), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

// loadBoard resolves and loads the board named in the request, writing the
// error response itself when anything is off.
func (s *Server) loadBoard(w http.ResponseWriter, r *http.Request) (*ledger.Ledger, bool) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return nil, false
	}

	path, ok := s.boardPath(w, r)
	if !ok {
		return nil, false
	}

	led, err := store.LoadLedger(path)
	if errors.Is(err, fs.ErrNotExist) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "board has no data yet"})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return led, true
}

func (s *Server) boardPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.URL.Query().Get("board")
	path, ok := s.boards[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": fmt.Sprintf("unknown board %q", name)})
		return "", false
	}
	return path, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
