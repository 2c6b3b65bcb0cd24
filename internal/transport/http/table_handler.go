package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "sheetcli/internal/errors"
	"sheetcli/internal/exporter"
	"sheetcli/internal/middleware"
	"sheetcli/internal/services"
	"sheetcli/pkg/contracts/domain"
)

const (
	uploadMemoryLimit = 8 << 20
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// LoadRequest loads a remote source instead of an uploaded file
type LoadRequest struct {
	Source string `json:"source" validate:"required,startswith=gsheet:"`
}

// EmailPayload is the body of POST /api/table/email
type EmailPayload struct {
	Host     string `json:"smtp_server" validate:"required,hostname_rfc1123"`
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	From     string `json:"from" validate:"required,email"`
	To       string `json:"to" validate:"required"`
	Subject  string `json:"subject,omitempty"`
	Password string `json:"password" validate:"required"`
}

// TableHandler serves the loaded table
type TableHandler struct {
	service        TableServiceInterface
	validator      *requestValidator
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewTableHandler creates a table handler. Uploads larger than maxUploadBytes
// are rejected.
func NewTableHandler(service TableServiceInterface, maxUploadBytes int64, logger *slog.Logger) *TableHandler {
	return &TableHandler{
		service:        service,
		validator:      newRequestValidator(),
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "table_handler")),
	}
}

// Routes returns the table routes
func (h *TableHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Load)
	r.Get("/", h.View)
	r.Delete("/", h.Clear)
	r.Get("/search", h.Search)
	r.Get("/export", h.Export)
	r.Post("/email", h.Email)

	return r
}

// Load handles POST /api/table
func (h *TableHandler) Load(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var source, displayName string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req LoadRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			apperrors.RenderError(w, r, apperrors.InvalidRequestWithError(err))
			return
		}
		if apiErr := h.validator.Struct(req); apiErr != nil {
			apperrors.RenderError(w, r, apiErr)
			return
		}
		source, displayName = req.Source, req.Source
	} else {
		path, name, err := h.saveUpload(w, r)
		if err != nil {
			h.fail(w, r, "upload", err)
			return
		}
		defer os.RemoveAll(filepath.Dir(path))
		source, displayName = path, name
	}

	summary, err := h.service.LoadAs(ctx, source, displayName)
	if err != nil {
		h.fail(w, r, "load", err)
		return
	}

	h.logger.InfoContext(ctx, "table loaded",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("source", displayName),
		slog.Int("rows", summary.Rows))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// saveUpload writes the multipart "file" field into its own temp directory,
// keeping the uploaded base name so the loader can dispatch on extension.
func (h *TableHandler) saveUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		return "", "", apperrors.NewFileOpenError("could not read upload", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", apperrors.NewAppValidationError("no file selected")
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) {
		return "", "", apperrors.NewAppValidationError("no file selected")
	}

	dir, err := os.MkdirTemp("", "sheetcli-upload-")
	if err != nil {
		return "", "", err
	}
	path := filepath.Join(dir, name)
	out, err := os.Create(path)
	if err != nil {
		os.RemoveAll(dir)
		return "", "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.RemoveAll(dir)
		return "", "", apperrors.NewFileOpenError("could not store upload", err)
	}
	if err := out.Close(); err != nil {
		os.RemoveAll(dir)
		return "", "", err
	}
	return path, name, nil
}

// View handles GET /api/table
func (h *TableHandler) View(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	column := q.Get("sort")
	order := strings.ToLower(q.Get("order"))

	var (
		view domain.TableView
		err  error
	)
	switch {
	case order == "none":
		view, err = h.service.Sort("", domain.SortNone)
	case column != "":
		if order == "" {
			order = string(domain.SortAsc)
		}
		view, err = h.service.Sort(column, domain.SortOrder(order))
	default:
		view, err = h.service.View()
	}
	if err != nil {
		h.fail(w, r, "view", err)
		return
	}

	render.JSON(w, r, viewResponse(view))
}

// Search handles GET /api/table/search
func (h *TableHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		view domain.TableView
		err  error
	)
	if term == "" {
		view, err = h.service.ResetSearch()
	} else {
		view, err = h.service.Search(term)
	}
	if err != nil {
		h.fail(w, r, "search", err)
		return
	}

	render.JSON(w, r, viewResponse(view))
}

// Export handles GET /api/table/export
func (h *TableHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.fail(w, r, "export", apperrors.NewAppValidationError("format must be csv or xlsx").WithContext("format", format))
		return
	}

	view, err := h.service.View()
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="table.`+format+`"`)
	if format == "xlsx" {
		w.Header().Set("Content-Type", xlsxContentType)
		err = exporter.WriteXLSX(w, &view)
	} else {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = exporter.NewCSVWriter().Write(w, &view)
	}
	if err != nil {
		// Headers are already out; all that is left is to log it.
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", format),
			slog.String("error", err.Error()))
	}
}

// Email handles POST /api/table/email
func (h *TableHandler) Email(w http.ResponseWriter, r *http.Request) {
	var p EmailPayload
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		apperrors.RenderError(w, r, apperrors.InvalidRequestWithError(err))
		return
	}
	if apiErr := h.validator.Struct(p); apiErr != nil {
		apperrors.RenderError(w, r, apiErr)
		return
	}

	req := services.EmailRequest{
		Host:    p.Host,
		Port:    p.Port,
		From:    p.From,
		To:      p.To,
		Subject: p.Subject,
	}
	if err := h.service.SendEmail(r.Context(), req, p.Password); err != nil {
		h.fail(w, r, "email", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"sent": true, "to": req.To},
	})
}

// Clear handles DELETE /api/table
func (h *TableHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear()
	render.JSON(w, r, map[string]interface{}{"status": "success"})
}

// Health handles GET /api/health
func (h *TableHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":       "ok",
		"table_loaded": h.service.Loaded(),
	})
}

func (h *TableHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	apiErr := apperrors.FromError(err)
	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, op+" failed",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("error", err.Error()))
	apperrors.RenderError(w, r, apiErr)
}

func viewResponse(view domain.TableView) map[string]interface{} {
	return map[string]interface{}{
		"status": "success",
		"data":   view,
		"count":  len(view.Rows),
	}
}
