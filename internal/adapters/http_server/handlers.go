package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"supplier_ranker/internal/adapters/csvsource"
	"supplier_ranker/internal/app"
	"supplier_ranker/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	R *app.ReloadService // optional; adds source_records to /healthz
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.health)
	s.mux.Get("/suppliers", h.listSuppliers)
	s.mux.Get("/suppliers/facets", h.facets)
	s.mux.Get("/suppliers/export", h.export)
	s.mux.Get("/supplier/{index}", h.getSupplier)
	s.mux.Get("/supplier/{index}/breakdown", h.getBreakdown)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorBody{Error: msg}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

// writeLookupError maps service errors to HTTP statuses.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		writeError(w, http.StatusNotFound, "Supplier ID out of range")
	case errors.Is(err, domain.ErrNoDataset):
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON writes v with a weak ETag, answering 304 when the client
// already holds this version.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// parseFilter reads the filter query parameters. Missing or unparseable
// values place no constraint.
func parseFilter(r *http.Request) domain.Filter {
	q := r.URL.Query()
	var f domain.Filter
	if v := q.Get("keyword"); v != "" {
		f.Keyword = &v
	}
	if v := q.Get("search"); v != "" {
		f.Search = &v
	}
	if v := q.Get("city"); v != "" {
		f.City = &v
	}
	f.MinPrice = parseFloat(q.Get("min_price"))
	f.MaxPrice = parseFloat(q.Get("max_price"))
	return f
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// parseSort reads sort_by and order; order=asc is ascending, anything else
// descending.
func parseSort(r *http.Request) domain.Sort {
	q := r.URL.Query()
	s := domain.DefaultSort()
	if v := q.Get("sort_by"); v != "" {
		s.Key = v
	}
	if v := q.Get("order"); v != "" {
		s.Descending = !strings.EqualFold(v, "asc")
	}
	return s
}

func parseIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Supplier ID must be an integer")
		return 0, false
	}
	return idx, true
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	info, err := h.Q.Info()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}
	if h.R != nil {
		n, ok, err := h.R.SourceCount(r.Context())
		switch {
		case ok && err != nil:
			log.Warn().Err(err).Msg("source count failed")
		case ok:
			info.SourceRecords = &n
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(info); err != nil {
		log.Error().Err(err).Msg("failed to write health body")
	}
}

func (h *Handlers) listSuppliers(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListSuppliers(r.Context(), parseFilter(r), parseSort(r))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) facets(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Facets(r.Context(), parseFilter(r))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) export(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListSuppliers(r.Context(), parseFilter(r), parseSort(r))
	if err != nil {
		writeLookupError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := csvsource.Write(&buf, out); err != nil {
		log.Error().Err(err).Msg("csv export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="suppliers_export.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("failed to write export body")
	}
}

func (h *Handlers) getSupplier(w http.ResponseWriter, r *http.Request) {
	idx, ok := parseIndex(w, r)
	if !ok {
		return
	}
	out, err := h.Q.GetSupplier(r.Context(), idx)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) getBreakdown(w http.ResponseWriter, r *http.Request) {
	idx, ok := parseIndex(w, r)
	if !ok {
		return
	}
	out, err := h.Q.GetBreakdown(r.Context(), idx)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, r, out)
}
