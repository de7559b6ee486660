package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/de-tools/daily-report/pkg/adapters"
	"github.com/de-tools/daily-report/pkg/models/api"
	"github.com/de-tools/daily-report/pkg/models/domain"
	"github.com/de-tools/daily-report/pkg/server/middleware"
	"github.com/de-tools/daily-report/pkg/services/archive"
	"github.com/de-tools/daily-report/pkg/services/export"
)

const (
	maxRequestBytes = 10 << 20
	pdfContentType  = "application/pdf"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	archiveNone     = "none"
)

type Exporter interface {
	Export(ctx context.Context, snapshot domain.ReportSnapshot) (*export.Result, error)
	Workbook(snapshot domain.ReportSnapshot) (*excelize.File, string, error)
}

type Archive interface {
	List(ctx context.Context, owner, role string) ([]domain.ArchiveEntry, error)
	Delete(ctx context.Context, owner, role, ref string) error
	Download(ctx context.Context, owner, role, ref string) ([]byte, string, error)
	Link(ctx context.Context, owner, role, ref string, expiry time.Duration) (string, error)
}

type Handler struct {
	exporter   Exporter
	archive    Archive
	linkExpiry time.Duration
	now        func() time.Time
}

func NewHandler(exporter Exporter, archive Archive, linkExpiry time.Duration) *Handler {
	return &Handler{
		exporter:   exporter,
		archive:    archive,
		linkExpiry: linkExpiry,
		now:        time.Now,
	}
}

// Export renders the submitted snapshot to PDF, archives it and streams the
// document back. Where the copy ended up is reported in the X-Archive-*
// headers.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	res, err := h.exporter.Export(ctx, snapshot)
	if err != nil && (res == nil || len(res.Document) == 0) {
		writeError(w, r, statusFor(err), err)
		return
	}
	if err != nil {
		// The document exists but no copy was kept anywhere.
		logger.Error().Err(err).Msg("serving report without an archived copy")
		w.Header().Set("X-Archive-Storage", archiveNone)
	}

	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", attachment(res.Filename))
	w.Header().Set("X-Report-Pages", strconv.Itoa(res.Pages))
	if res.Entry.LocationRef != "" {
		w.Header().Set("X-Archive-Storage", string(res.Entry.StorageKind))
		w.Header().Set("X-Archive-Ref", res.Entry.LocationRef)
	}
	if _, err := w.Write(res.Document); err != nil {
		logger.Error().Err(err).Msg("failed to write report document")
	}
}

// Sheet exports the submitted snapshot as a spreadsheet without archiving it.
func (h *Handler) Sheet(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	snapshot, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	f, filename, err := h.exporter.Workbook(snapshot)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", attachment(filename))
	if err := f.Write(w); err != nil {
		logger.Error().Err(err).Msg("failed to write workbook")
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := identity(w, r)
	if !ok {
		return
	}

	entries, err := h.archive.List(ctx, id.Owner, id.Role)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.ArchiveList{Entries: adapters.MapDomainArchiveEntriesToApi(entries)})
}

func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ref, ok := refParam(w, r)
	if !ok {
		return
	}

	data, filename, err := h.archive.Download(ctx, id.Owner, id.Role, ref)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", pdfContentType)
	w.Header().Set("Content-Disposition", attachment(filename))
	if _, err := w.Write(data); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to write archived document")
	}
}

func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ref, ok := refParam(w, r)
	if !ok {
		return
	}

	url, err := h.archive.Link(ctx, id.Owner, id.Role, ref, h.linkExpiry)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, r, http.StatusOK, api.ArchiveLink{URL: url, ExpiresAt: h.now().Add(h.linkExpiry).UTC()})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ref, ok := refParam(w, r)
	if !ok {
		return
	}

	if err := h.archive.Delete(ctx, id.Owner, id.Role, ref); err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	zerolog.Ctx(ctx).Info().Str("ref", ref).Msg("archived report deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (domain.ReportSnapshot, bool) {
	id, ok := identity(w, r)
	if !ok {
		return domain.ReportSnapshot{}, false
	}

	var req api.ExportRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return domain.ReportSnapshot{}, false
	}

	snapshot, err := adapters.MapExportRequestToSnapshot(req, id)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return domain.ReportSnapshot{}, false
	}
	return snapshot, true
}

func identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, errors.New("missing identity"))
	}
	return id, ok
}

func refParam(w http.ResponseWriter, r *http.Request) (domain.Identity, string, bool) {
	id, ok := identity(w, r)
	if !ok {
		return id, "", false
	}
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		writeError(w, r, http.StatusBadRequest, errors.New("ref query parameter is required"))
		return id, "", false
	}
	return id, ref, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, export.ErrSignatureRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, archive.ErrInvalidDate):
		return http.StatusBadRequest
	case errors.Is(err, archive.ErrForeignReference):
		return http.StatusForbidden
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, archive.ErrNoRemote):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func attachment(filename string) string {
	return fmt.Sprintf("attachment; filename=%q", filename)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Msg("request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	writeJSON(w, r, status, api.Error{Error: err.Error()})
}
