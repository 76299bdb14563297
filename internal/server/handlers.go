package server

import (
	"encoding/json"
	"net/http"

	"syshealth/internal/snapshot"

	"go.uber.org/zap"
)

// handleReport отдает текстовый отчет
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := snapshot.Render(w, s.opts.Header, s.reader.Read()); err != nil {
		s.logger.Warn("Failed to write report", zap.Error(err))
	}
}

// handleJSON отдает снимок в JSON
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.reader.Read())
}

// handleHealth отдает состояние процесса и планировщика
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok"}
	if s.status != nil {
		resp["scheduler"] = s.status.GetStats()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}
