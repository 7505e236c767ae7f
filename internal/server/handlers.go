package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/riskpanes/internal/pages"
	"github.com/ziadkadry99/riskpanes/internal/risk"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Pages.Home(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer p.Close()
	writePage(w, p)
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Pages.Risk(r.Context(), r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer p.Close()
	writePage(w, p)
}

// handleToggle applies a form submitted toggle and sends the browser back
// to the risk page.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	service := pages.ServiceKey(r.PostForm)
	id := strings.TrimSpace(r.PostForm.Get("id"))
	if service == "" || id == "" {
		http.Error(w, "service and id are required", http.StatusBadRequest)
		return
	}

	p, err := s.deps.Pages.Risk(r.Context(), url.Values{"service": {service}})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer p.Close()

	if err := p.Toggle(id, risk.NormalizeStatus(r.PostForm.Get("value"))); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, "/riskPage.html?service="+url.QueryEscape(service), http.StatusSeeOther)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	service := strings.TrimSpace(chi.URLParam(r, "service"))
	p, err := s.deps.Pages.Risk(r.Context(), url.Values{"service": {service}})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer p.Close()

	sum, ok := p.Summary()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no summary for " + service})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func writePage(w http.ResponseWriter, p *pages.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := p.Render(w); err != nil {
		slog.Warn("rendering page", "page", p.Runtime.ID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
