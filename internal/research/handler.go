package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ayush/smart-research-assistant/internal/billing"
	"github.com/ayush/smart-research-assistant/internal/export"
	"github.com/ayush/smart-research-assistant/internal/ingest"
	"github.com/ayush/smart-research-assistant/internal/models"
	"github.com/ayush/smart-research-assistant/internal/session"
)

// DefaultBillingLimit is the number of billing records shown by default.
const DefaultBillingLimit = 10

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// FileStore archives exported documents.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
}

// Handler holds research HTTP handlers.
type Handler struct {
	svc            *Service
	sessions       *session.Manager
	archive        FileStore
	maxUploadBytes int64
	log            *zap.Logger
}

// NewHandler returns a Handler. archive may be nil to disable archiving.
func NewHandler(svc *Service, sessions *session.Manager, archive FileStore, maxUploadBytes int64, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, sessions: sessions, archive: archive, maxUploadBytes: maxUploadBytes, log: log}
}

// ExportPrefix is the archive key prefix shared by all session exports.
const ExportPrefix = "sessions/"

// ExportKey is the archive object key of a session's exported report.
func ExportKey(sessionID string, f export.Format) string {
	return fmt.Sprintf("%s%s/%s", ExportPrefix, sessionID, f.FileName())
}

func current(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "no session")
	}
	return s, ok
}

// ListLiveFeed returns the live feed, newest first.
func (h *Handler) ListLiveFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Sources.LiveFeed())
}

// CreateLiveFeed ingests a mock live update.
func (h *Handler) CreateLiveFeed(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(w, r)
	if !ok {
		return
	}

	var req models.LiveFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.IngestLiveUpdate(sess, req.Title, req.Source, req.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.log.Error("session save failed", zap.String("session", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// CreateReport runs a report transaction for a multipart form with a
// question field and any number of files.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(w, r)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var files []ingest.File
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := readUpload(fh)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s", fh.Filename))
				return
			}
			files = append(files, f)
		}
	}

	out, err := h.svc.Generate(r.Context(), sess, r.FormValue("question"), files)
	if errors.Is(err, ErrEmptyQuestion) {
		writeError(w, http.StatusBadRequest, "Please enter a research question.")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.sessions.Save(r.Context(), sess); err != nil {
		h.log.Error("session save failed", zap.String("session", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	writeJSON(w, http.StatusCreated, out.Response())
}

func readUpload(fh *multipart.FileHeader) (ingest.File, error) {
	f, err := fh.Open()
	if err != nil {
		return ingest.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ingest.File{}, err
	}
	return ingest.File{Name: fh.Filename, MIME: fh.Header.Get("Content-Type"), Data: data}, nil
}

// LastReport returns the latest report of the session.
func (h *Handler) LastReport(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(w, r)
	if !ok {
		return
	}
	if sess.LastReport == nil {
		writeError(w, http.StatusNotFound, "no report generated yet")
		return
	}
	writeJSON(w, http.StatusOK, sess.LastReport)
}

// Export renders the latest report as docx, pdf or html. DOCX and PDF files
// are archived when an archive is configured; archive failures are logged
// and the download is still served.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if sess.LastReport == nil {
		writeError(w, http.StatusNotFound, "no report generated yet")
		return
	}

	data, err := export.Render(format, sess.LastReport.Report, export.Title(sess.LastReport.Question))
	if err != nil {
		h.log.Error("export failed", zap.String("format", string(format)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	if h.archive != nil && format != export.FormatHTML {
		key := ExportKey(sess.ID, format)
		if err := h.archive.Upload(r.Context(), key, data, format.ContentType()); err != nil {
			h.log.Warn("archive upload failed", zap.String("key", key), zap.Error(err))
		} else {
			sess.AddExport(key)
			if err := h.sessions.Save(r.Context(), sess); err != nil {
				h.log.Warn("session save failed", zap.String("session", sess.ID), zap.Error(err))
			}
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatHTML {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName()))
	}
	w.Write(data)
}

// BillingResponse is the body of GET /api/billing.
type BillingResponse struct {
	Usage   models.Usage           `json:"usage"`
	Records []models.BillingRecord `json:"records"`
	Lines   []string               `json:"lines"`
}

// Billing returns the newest billing records, ?limit= of them (default 10).
func (h *Handler) Billing(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(w, r)
	if !ok {
		return
	}

	limit := DefaultBillingLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records := sess.Ledger.Recent(limit)
	lines := make([]string, len(records))
	for i, rec := range records {
		lines[i] = billing.FormatRecord(rec)
	}
	writeJSON(w, http.StatusOK, BillingResponse{Usage: sess.Ledger.Usage(), Records: records, Lines: lines})
}
