package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inferlab/ragengine/internal/documents"
	"github.com/inferlab/ragengine/internal/retrieval"
)

// Submitter registers a URL for ingestion.
type Submitter interface {
	Submit(ctx context.Context, url string) (*documents.Document, string, error)
}

// DocumentReader serves document status lookups and listings.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*documents.Document, error)
	List(ctx context.Context, status string, limit, offset int) ([]documents.Document, int64, error)
}

// Answerer answers a question over the indexed corpus.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (*retrieval.Answer, error)
}

// SnapshotReader serves the archived raw HTML of ingested pages.
type SnapshotReader interface {
	Enabled() bool
	GetSnapshot(ctx context.Context, docID string) ([]byte, error)
}

type ingestRequest struct {
	URL string `json:"url"`
}

type ingestResponse struct {
	JobID   string `json:"job_id"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type queryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

type queryResponse struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Sources  []retrieval.Source `json:"sources"`
}

type listResponse struct {
	Total     int64                `json:"total"`
	Documents []documents.Document `json:"documents"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "RAG Engine API is running",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleIngestURL(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validURL(req.URL) {
		writeError(w, http.StatusBadRequest, "url must be a valid http or https URL")
		return
	}

	doc, message, err := s.submitter.Submit(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("submission failed", err, map[string]interface{}{"url": req.URL})
		writeError(w, http.StatusInternalServerError, "failed to submit URL")
		return
	}

	writeJSON(w, http.StatusAccepted, ingestResponse{
		JobID:   doc.ID,
		URL:     doc.URL,
		Status:  doc.Status,
		Message: message,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("job_id")

	doc, err := s.reader.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		s.logger.Error("status lookup failed", err, map[string]interface{}{"doc_id": id})
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", documents.StatusPending, documents.StatusProcessing, documents.StatusCompleted, documents.StatusFailed:
	default:
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	docs, total, err := s.reader.List(r.Context(), status, limit, offset)
	if err != nil {
		s.logger.Error("document listing failed", err, nil)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}

	writeJSON(w, http.StatusOK, listResponse{Total: total, Documents: docs})
}

// handleSnapshot returns the raw HTML archived for a document. 404 when the
// archive is disabled, the document is unknown, or no snapshot was stored.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if !s.snapshots.Enabled() {
		writeError(w, http.StatusNotFound, "raw page archive is disabled")
		return
	}

	id := r.PathValue("job_id")
	if _, err := s.reader.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		s.logger.Error("snapshot lookup failed", err, map[string]interface{}{"doc_id": id})
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}

	raw, err := s.snapshots.GetSnapshot(r.Context(), id)
	if err != nil {
		s.logger.Warn("snapshot not available", err, map[string]interface{}{"doc_id": id})
		writeError(w, http.StatusNotFound, "snapshot not available")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.answerer.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		s.logger.Error("query failed", err, nil)
		writeError(w, http.StatusInternalServerError, "failed to process query")
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Question: req.Question,
		Answer:   answer.Answer,
		Sources:  answer.Sources,
	})
}

func validURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
