package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/basinworks/planextract/internal/ingestion"
	"github.com/basinworks/planextract/internal/logging"
	"github.com/basinworks/planextract/internal/section"
	"github.com/basinworks/planextract/internal/store"
)

// maxIngestBytes caps the POST /api/documents body. Watershed plans run to a
// few hundred pages of text; 32 MiB leaves generous headroom.
const maxIngestBytes = 32 << 20

// handleIngest handles POST /api/documents. The body carries the document
// GUID plus either its full plain text or a pre-segmented paragraph list; the
// pipeline sanitizes, chunks, embeds, and stores it, replacing any previous
// version atomically.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxIngestBytes)
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.ingestRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GUID == "" {
		s.metrics.ingestRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "guid is required")
		return
	}
	if req.Text == "" && len(req.Paragraphs) == 0 {
		s.metrics.ingestRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "text or paragraphs is required")
		return
	}

	var result *ingestion.Result
	var err error
	if len(req.Paragraphs) > 0 {
		result, err = s.ingestor.IngestParagraphs(r.Context(), req.GUID, req.Paragraphs)
	} else {
		result, err = s.ingestor.Ingest(r.Context(), req.GUID, req.Text)
	}
	if err != nil {
		outcome := outcomeError
		status := http.StatusInternalServerError
		if errors.Is(err, ingestion.ErrMalformedInput) {
			outcome = outcomeBadRequest
			status = http.StatusBadRequest
		}
		s.metrics.ingestRequestsTotal.WithLabelValues(outcome).Inc()
		log.Error("ingest failed", slog.String("guid", req.GUID), slog.Any("error", err))
		writeError(w, status, err.Error())
		return
	}

	s.metrics.ingestRequestsTotal.WithLabelValues(outcomeOK).Inc()
	s.metrics.ingestDurationSeconds.Observe(time.Since(start).Seconds())
	s.metrics.ingestChunks.Observe(float64(result.Chunks))

	status := http.StatusCreated
	if result.Replaced {
		status = http.StatusOK
	}
	writeJSON(w, status, ingestResponse{
		GUID:       result.GUID,
		Paragraphs: result.Paragraphs,
		Chunks:     result.Chunks,
		Replaced:   result.Replaced,
	})
}

// handleAsk handles POST /api/ask. It extracts one section from a previously
// ingested document and returns the envelope, sources, and confidence.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logging.FromContext(r.Context())

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.askRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GUID == "" || req.Key == "" {
		s.metrics.askRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
		writeError(w, http.StatusBadRequest, "guid and key are required")
		return
	}

	ans, err := s.answerer.Ask(r.Context(), req.GUID, req.Key)
	if err != nil {
		switch {
		case errors.Is(err, section.ErrUnknownKey):
			s.metrics.askRequestsTotal.WithLabelValues(outcomeBadRequest).Inc()
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			s.metrics.askRequestsTotal.WithLabelValues(outcomeNotFound).Inc()
			writeError(w, http.StatusNotFound, "document not found: "+req.GUID)
		default:
			s.metrics.askRequestsTotal.WithLabelValues(outcomeError).Inc()
			log.Error("ask failed",
				slog.String("guid", req.GUID),
				slog.String("key", req.Key),
				slog.Any("error", err),
			)
			writeError(w, http.StatusInternalServerError, "extraction failed")
		}
		return
	}

	s.metrics.askRequestsTotal.WithLabelValues(outcomeOK).Inc()
	s.metrics.askDurationSeconds.Observe(time.Since(start).Seconds())

	writeJSON(w, http.StatusOK, askResponse{
		GUID:       req.GUID,
		Key:        string(ans.Key),
		Answer:     ans.Answer,
		Sources:    ans.Sources,
		Confidence: ans.Confidence,
		Model:      ans.Model,
	})
}

// handleListDocuments handles GET /api/documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	infos, err := s.docs.ListDocuments(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("list documents failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}

	out := make([]documentInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, documentInfo{
			GUID:      info.GUID,
			Chunks:    info.ChunkCount,
			Model:     info.Model,
			UpdatedAt: info.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDeleteDocument handles DELETE /api/documents/{guid}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	guid := r.PathValue("guid")
	if guid == "" {
		writeError(w, http.StatusBadRequest, "guid is required")
		return
	}

	err := s.docs.DeleteDocument(r.Context(), guid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found: "+guid)
	case err != nil:
		logging.FromContext(r.Context()).Error("delete failed",
			slog.String("guid", guid), slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "delete failed")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
