package intake

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/jmaxwell/sellforge/pkg/handlers"
	"github.com/jmaxwell/sellforge/pkg/routes"
)

// Handler provides HTTP endpoints for intake operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// TogglesRequest updates the optional companion toggles. Nil fields are left
// unchanged.
type TogglesRequest struct {
	Images *bool `json:"images"`
	Tags   *bool `json:"tags"`
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "intake"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for intake endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/intake",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Snapshot},
			{Method: "DELETE", Pattern: "", Handler: h.Reset},
			{Method: "GET", Pattern: "/validation", Handler: h.Validation},
			{Method: "POST", Pattern: "/documents", Handler: h.UploadDocuments},
			{Method: "POST", Pattern: "/images", Handler: h.UploadImages},
			{Method: "POST", Pattern: "/tags", Handler: h.UploadTags},
			{Method: "PUT", Pattern: "/toggles", Handler: h.Toggles},
		},
	}
}

// Snapshot returns the current intake state.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Snapshot())
}

// Validation returns the current matching gate result.
func (h *Handler) Validation(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Validate())
}

// UploadDocuments processes a multipart upload of primary disclosure documents.
func (h *Handler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.readUploads(r, "files")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	results, err := h.sys.AddDocuments(r.Context(), uploads)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, results)
}

// UploadImages processes a multipart upload of companion images.
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.readUploads(r, "files")
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	results, err := h.sys.AddImages(r.Context(), uploads)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, results)
}

// UploadTags processes a single-file multipart upload of a CSV or XLSX tag table.
func (h *Handler) UploadTags(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	rows, err := h.sys.SetTags(header.Filename, data)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, map[string]int{"rows": rows})
}

// Toggles updates the optional companion toggles.
func (h *Handler) Toggles(w http.ResponseWriter, r *http.Request) {
	var req TogglesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	h.sys.SetToggles(req.Images, req.Tags)
	handlers.RespondJSON(w, http.StatusOK, h.sys.Validate())
}

// Reset discards the current intake state for a fresh batch.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.sys.Reset(); err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readUploads(r *http.Request, field string) ([]Upload, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		return nil, ErrFileTooLarge
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, ErrNoFiles
	}

	var uploads []Upload
	for _, header := range r.MultipartForm.File[field] {
		data, err := readPart(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, Upload{Filename: header.Filename, Data: data})
	}

	return uploads, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, ErrInvalidFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ErrInvalidFile
	}

	return data, nil
}
