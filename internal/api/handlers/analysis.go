package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/statement-analyzer/internal/api/middleware"
	"github.com/dvloznov/statement-analyzer/internal/gcs"
	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// multipartOverhead is allowed on top of the file limit for boundaries and headers.
const multipartOverhead = 1 << 20

// StatementAnalyzer runs the two-call analysis of one document.
type StatementAnalyzer interface {
	Analyze(ctx context.Context, doc statement.Document) (*statement.AnalysisResult, error)
}

// AnalysisHandler handles the analyze endpoints.
type AnalysisHandler struct {
	analyzer       StatementAnalyzer
	source         gcs.DocumentSource
	uploadDir      string
	maxUploadBytes int64
	log            zerolog.Logger
}

// NewAnalysisHandler creates a new analysis handler. source may be nil when GCS is disabled.
func NewAnalysisHandler(analyzer StatementAnalyzer, source gcs.DocumentSource, uploadDir string, maxUploadBytes int64, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:       analyzer,
		source:         source,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// AnalyzeBase64 handles POST /api/analyze-base64
func (h *AnalysisHandler) AnalyzeBase64(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOr(r.Context(), h.log)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req struct {
		Base64Data string `json:"base64Data"`
		MediaType  string `json:"mediaType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeAnalysisError(w, log, err)
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido", err.Error())
		return
	}

	if strings.TrimSpace(req.Base64Data) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No se proporcionó base64Data", "")
		return
	}

	doc, err := statement.DocumentFromBase64(req.Base64Data, req.MediaType)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "base64Data inválido", err.Error())
		return
	}

	log.Info().Int("bytes", doc.Size()).Str("media_type", doc.MediaType()).Msg("Processing statement from base64")
	h.analyze(w, r, log, doc)
}

// AnalyzePDF handles POST /api/analyze-pdf
// The upload is staged under the upload directory and removed when the handler
// returns, after the response has been written, on every exit path.
func (h *AnalysisHandler) AnalyzePDF(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOr(r.Context(), h.log)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile("pdf")
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			writeAnalysisError(w, log, err)
		case errors.Is(err, http.ErrMissingFile):
			middleware.WriteError(w, http.StatusBadRequest, "No se proporcionó archivo PDF", "")
		default:
			middleware.WriteError(w, http.StatusBadRequest, "Solicitud multipart inválida", err.Error())
		}
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "El archivo excede el tamaño máximo permitido",
			fmt.Sprintf("%d bytes > %d bytes", header.Size, h.maxUploadBytes))
		return
	}

	path, err := h.stageUpload(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to stage upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Error procesando el archivo", err.Error())
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Error().Err(err).Str("path", path).Msg("Failed to remove staged upload")
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to read staged upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Error procesando el archivo", err.Error())
		return
	}

	doc, err := statement.NewDocument(data, uploadMediaType(header))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Archivo vacío", err.Error())
		return
	}

	log.Info().Str("filename", filepath.Base(header.Filename)).Int("bytes", doc.Size()).Msg("Processing uploaded statement")
	h.analyze(w, r, log, doc)
}

// AnalyzeGCS handles POST /api/analyze-gcs
func (h *AnalysisHandler) AnalyzeGCS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOr(r.Context(), h.log)
	if h.source == nil {
		middleware.WriteError(w, http.StatusNotFound, "Ruta no encontrada", "GCS source disabled")
		return
	}

	var req struct {
		GCSURI string `json:"gcsUri"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Cuerpo de solicitud inválido", err.Error())
		return
	}
	if strings.TrimSpace(req.GCSURI) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "No se proporcionó gcsUri", "")
		return
	}

	doc, err := h.source.FetchDocument(r.Context(), req.GCSURI)
	if err != nil {
		writeAnalysisError(w, log, err)
		return
	}

	log.Info().Str("gcs_uri", req.GCSURI).Str("filename", gcs.ExtractFilename(req.GCSURI)).Int("bytes", doc.Size()).Msg("Processing statement from GCS")
	h.analyze(w, r, log, doc)
}

func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request, log zerolog.Logger, doc statement.Document) {
	result, err := h.analyzer.Analyze(r.Context(), doc)
	if err != nil {
		writeAnalysisError(w, log, err)
		return
	}

	var count int
	if result.Summary != nil {
		count = int(result.Summary.TransactionCount)
	}
	log.Info().Int("transactions", len(result.Transactions)).Int("reported_count", count).Msg("Analysis completed")
	middleware.WriteJSON(w, http.StatusOK, result)
}

// stageUpload copies the upload to a uniquely named file and returns its path.
func (h *AnalysisHandler) stageUpload(src multipart.File) (string, error) {
	path := filepath.Join(h.uploadDir, uuid.NewString()+".pdf")
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("stageUpload: create %s: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("stageUpload: copy: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("stageUpload: close: %w", err)
	}
	return path, nil
}

// uploadMediaType keeps PDF and image types from the part header and treats
// anything else as PDF.
func uploadMediaType(header *multipart.FileHeader) string {
	ct := strings.TrimSpace(header.Header.Get("Content-Type"))
	if ct == statement.DefaultMediaType || strings.HasPrefix(ct, "image/") {
		return ct
	}
	return statement.DefaultMediaType
}
