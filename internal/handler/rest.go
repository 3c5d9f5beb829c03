package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Madirex/Funkos-Rest-Synchronous/internal/controller"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/model"
	"github.com/Madirex/Funkos-Rest-Synchronous/internal/service"
)

// Version is the application version.
const Version = "1.0.0"

// DefaultBackupFileName is used when a backup request names no file.
const DefaultBackupFileName = "backup.json"

// RESTHandler handles REST API requests for the Funko catalog.
type RESTHandler struct {
	controller   *controller.FunkoController
	logger       *zap.Logger
	importPolicy service.ImportPolicy
	backupDir    string
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(
	c *controller.FunkoController,
	logger *zap.Logger,
	importPolicy service.ImportPolicy,
	backupDir string,
) *RESTHandler {
	return &RESTHandler{
		controller:   c,
		logger:       logger,
		importPolicy: importPolicy,
		backupDir:    backupDir,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/funkos", h.ListFunkos).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/funkos", h.CreateFunko).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/funkos/import", h.ImportFunkos).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/funkos/backup", h.BackupFunkos).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/funkos/{id}", h.GetFunko).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/funkos/{id}", h.UpdateFunko).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/funkos/{id}", h.DeleteFunko).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ReadyCheck handles GET /ready requests. Readiness is probed against
// the catalog itself so a broken store backend reports not ready.
func (h *RESTHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := h.controller.FindAll(r.Context()); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "catalog not ready")
		return
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(HealthResponse{
		Status:  "ready",
		Version: Version,
	}))
}

// ListFunkos handles GET /api/v1/funkos requests. With a ?name= query
// parameter it searches by exact name, otherwise it lists the full
// catalog.
func (h *RESTHandler) ListFunkos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if name := r.URL.Query().Get("name"); name != "" {
		funkos, err := h.controller.FindByName(ctx, name)
		if err != nil {
			h.handleServiceError(w, err, "find funkos by name")
			return
		}
		h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(funkos))
		return
	}

	funkos, err := h.controller.FindAll(ctx)
	if err != nil {
		h.handleServiceError(w, err, "list funkos")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(funkos))
}

// GetFunko handles GET /api/v1/funkos/{id} requests.
func (h *RESTHandler) GetFunko(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	funko, err := h.controller.FindByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "get funko")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(funko))
}

// CreateFunko handles POST /api/v1/funkos requests.
func (h *RESTHandler) CreateFunko(w http.ResponseWriter, r *http.Request) {
	var input model.Funko
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	funko, err := h.controller.Save(r.Context(), &input)
	if err != nil {
		h.handleServiceError(w, err, "create funko")
		return
	}

	h.writeJSON(w, http.StatusCreated, model.NewSuccessResponse(funko))
}

// UpdateFunko handles PUT /api/v1/funkos/{id} requests.
func (h *RESTHandler) UpdateFunko(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var input model.Funko
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	funko, err := h.controller.Update(r.Context(), id, &input)
	if err != nil {
		h.handleServiceError(w, err, "update funko")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(funko))
}

// DeleteFunko handles DELETE /api/v1/funkos/{id} requests, returning
// the removed funko.
func (h *RESTHandler) DeleteFunko(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	funko, err := h.controller.Delete(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "delete funko")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(funko))
}

// ImportFunkos handles POST /api/v1/funkos/import requests. Rows that
// fail are reported in the response but do not abort the rest of the
// import.
func (h *RESTHandler) ImportFunkos(w http.ResponseWriter, r *http.Request) {
	var input ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Path == "" {
		h.writeError(w, http.StatusBadRequest, "request must name the import file path")
		return
	}

	report, err := h.controller.ImportCSV(r.Context(), input.Path, h.importPolicy)
	if err != nil {
		h.logger.Error("import failed", zap.String("path", input.Path), zap.Error(err))
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(report))
}

// BackupFunkos handles POST /api/v1/funkos/backup requests. The
// destination directory and file name default to the configured
// backup directory and backup.json.
func (h *RESTHandler) BackupFunkos(w http.ResponseWriter, r *http.Request) {
	input := BackupRequest{Dir: h.backupDir, FileName: DefaultBackupFileName}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if input.Dir == "" {
			input.Dir = h.backupDir
		}
		if input.FileName == "" {
			input.FileName = DefaultBackupFileName
		}
	}

	if err := h.controller.Backup(r.Context(), input.Dir, input.FileName); err != nil {
		h.handleServiceError(w, err, "backup funkos")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse("backup completed"))
}

// handleServiceError maps catalog errors onto HTTP responses.
func (h *RESTHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "funko not found")
	case errors.Is(err, service.ErrNotValid):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotSaved):
		h.writeError(w, http.StatusConflict, "funko not saved")
	case errors.Is(err, service.ErrNotRemoved):
		h.writeError(w, http.StatusConflict, "funko not removed")
	default:
		h.logger.Error("catalog operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and
// message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
	}
	h.writeJSON(w, status, response)
}
