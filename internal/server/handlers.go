package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/ragpipe/internal/backend"
	"github.com/hyperjump/ragpipe/internal/extract"
	"github.com/hyperjump/ragpipe/internal/fileid"
	"github.com/hyperjump/ragpipe/internal/models"
	"github.com/hyperjump/ragpipe/internal/rag"
	"github.com/hyperjump/ragpipe/internal/store"
	"go.uber.org/zap"
)

type retrieveRequest struct {
	Query      string `json:"query"`
	DocumentID string `json:"document_id,omitempty"`
}

type remoteQueryRequest struct {
	Query string `json:"query"`
}

type documentSummary struct {
	ID         string `json:"id"`
	Source     string `json:"source,omitempty"`
	Chars      int    `json:"chars"`
	Embedded   bool   `json:"embedded"`
	OutputPath string `json:"output_path,omitempty"`
	Status     string `json:"status"`
}

func summarize(doc models.Document, outputPath string) documentSummary {
	return documentSummary{
		ID:         doc.ID,
		Source:     doc.Source,
		Chars:      utf8.RuneCountInString(doc.Content),
		Embedded:   len(doc.Embedding) > 0,
		OutputPath: outputPath,
		Status:     "added",
	}
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.ID == "" {
		input.ID = uuid.New().String()
	}
	s.logger.Debug("add document request", zap.String("id", input.ID))
	doc, err := s.pipeline.AddDocument(r.Context(), input.ID, input.Content)
	if err != nil {
		s.logger.Error("add document failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, summarize(doc, ""))
}

func (s *Server) handleAddPDF(w http.ResponseWriter, r *http.Request) {
	var input models.PDFInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.PDFPath == "" {
		s.respondError(w, http.StatusBadRequest, "pdf_path is required")
		return
	}
	if status, err := s.confinePDF(&input); err != nil {
		s.logger.Warn("pdf request rejected", zap.String("pdf", input.PDFPath), zap.String("output", input.OutputPath), zap.Error(err))
		s.respondError(w, status, err.Error())
		return
	}
	s.logger.Debug("add pdf request", zap.String("pdf", input.PDFPath), zap.String("output", input.OutputPath))
	doc, err := s.pipeline.AddPDFDocument(r.Context(), input)
	if err != nil {
		s.logger.Error("add pdf failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, summarize(doc, input.OutputPath))
}

// confinePDF resolves in's paths and checks that the source is a PDF under an
// allowed root and that the processed text lands inside the output directory.
// A missing output path is derived from the source path.
func (s *Server) confinePDF(in *models.PDFInput) (int, error) {
	if !strings.EqualFold(filepath.Ext(in.PDFPath), ".pdf") {
		return http.StatusBadRequest, errors.New("pdf_path must name a .pdf file")
	}
	if s.config == nil {
		return http.StatusForbidden, errors.New("pdf ingestion has no allowed directories")
	}
	src, err := fileid.Resolve(in.PDFPath)
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid pdf_path: %w", err)
	}
	allowed := false
	for _, root := range s.config.PDFRootsOrDefault() {
		if dir, err := fileid.Resolve(root); err == nil && fileid.Within(dir, src) {
			allowed = true
			break
		}
	}
	if !allowed {
		return http.StatusForbidden, errors.New("pdf_path is outside the allowed directories")
	}

	outDir, err := fileid.Resolve(s.config.Watch.OutputDir)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("resolve output dir: %w", err)
	}
	out := in.OutputPath
	if out == "" {
		out = fileid.ProcessedFileName(src)
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(outDir, out)
	}
	if out, err = fileid.Resolve(out); err != nil {
		return http.StatusBadRequest, fmt.Errorf("invalid output_path: %w", err)
	}
	if !fileid.Within(outDir, out) {
		return http.StatusForbidden, errors.New("output_path is outside the output directory")
	}

	in.PDFPath = src
	in.OutputPath = out
	return http.StatusOK, nil
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"ids": s.pipeline.Session().IDs()})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, ok := s.pipeline.Session().Document(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	var (
		window string
		err    error
	)
	if req.DocumentID != "" {
		window, err = s.pipeline.RetrieveDocument(r.Context(), req.DocumentID, req.Query)
	} else {
		window, err = s.pipeline.Retrieve(r.Context(), req.Query)
	}
	if err != nil {
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, models.RetrieveResponse{Query: req.Query, Context: window, Found: window != ""})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("ask request", zap.String("query", req.Query), zap.String("document_id", req.DocumentID))
	resp, err := s.pipeline.Ask(r.Context(), &req)
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoteQuery(w http.ResponseWriter, r *http.Request) {
	var req remoteQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.pipeline.RemoteQuery(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("remote query failed", zap.Error(err))
		s.respondError(w, statusFor(err), err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"query": req.Query, "result": result, "found": result != ""})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	session := s.pipeline.Session()
	resp := map[string]interface{}{
		"documents":      session.Len(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}
	processed, _ := session.ProcessedPath()
	if processed != "" {
		resp["processed_path"] = processed
	}
	configInfo := map[string]interface{}{
		"retrieval_source": s.pipeline.Retriever().Source(),
		"chat_model":       s.pipeline.Orchestrator().Model(),
	}
	var (
		watched   []string
		outputDir string
	)
	if s.config != nil {
		outputDir = s.config.Watch.OutputDir
		configInfo["window_radius"] = s.config.Retrieval.WindowRadius
		configInfo["chat_provider"] = s.config.Chat.Provider
		configInfo["extract_mode"] = s.config.Extract.Mode
		configInfo["embedding_enabled"] = s.config.Embedding.Enabled
		configInfo["backend_url"] = s.config.Backend.BaseURL
		configInfo["output_dir"] = outputDir
	}
	if usage, err := store.ProcessedUsage(processed, outputDir); err != nil {
		s.logger.Warn("failed to measure processed text", zap.Error(err))
	} else {
		if processed != "" {
			resp["processed_bytes"] = usage.ProcessedBytes
		}
		if outputDir != "" {
			resp["output_dir_bytes"] = usage.OutputBytes
			resp["output_files"] = usage.OutputFiles
		}
	}
	if s.watch != nil {
		watched = s.watch.Directories()
	}
	resp["watch_directories"] = watched
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var ee *extract.ExtractionError
	switch {
	case errors.Is(err, rag.ErrMissingContext):
		return http.StatusConflict
	case errors.Is(err, rag.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, rag.ErrNotConfigured) && !errors.Is(err, rag.ErrChatService):
		return http.StatusNotImplemented
	case errors.As(err, &ee) && (ee.Kind == extract.KindIO || ee.Kind == extract.KindParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, rag.ErrChatService), errors.Is(err, backend.ErrNetwork), errors.Is(err, backend.ErrProtocol):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
