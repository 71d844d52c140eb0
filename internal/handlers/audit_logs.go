package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hbapte/portfolio-api/internal/middleware"
	"github.com/hbapte/portfolio-api/internal/repositories"
	"github.com/hbapte/portfolio-api/internal/util"
)

type AuditLogHandler struct {
	auditLogs *repositories.AuditLogRepository
	logger    *slog.Logger
}

func NewAuditLogHandler(auditLogs *repositories.AuditLogRepository, logger *slog.Logger) *AuditLogHandler {
	return &AuditLogHandler{auditLogs: auditLogs, logger: logger}
}

// List answers with the page object directly (legacy shape), not wrapped in
// {success, data}.
func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.auditLogs.Search(r.Context(), repositories.AuditLogSearch{
		Term:   queryParam(r, "searchTerm"),
		Action: queryParam(r, "filterAction"),
		Page:   queryParamInt(r, "page", 1),
		Limit:  queryParamInt(r, "limit", 10),
	})
	if err != nil {
		h.logger.Error("audit log search failed", "error", err)
		respondInternalError(w)
		return
	}

	util.JSONResponse(w, http.StatusOK, page)
}

type createAuditLogPayload struct {
	Action  string `json:"action" validate:"required"`
	Details string `json:"details"`
}

// Create records an audit entry attributed to the session's email.
func (h *AuditLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload createAuditLogPayload
	if err := util.ParseJSON(r, &payload); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := util.ValidateStruct(payload); err != nil {
		respondError(w, http.StatusBadRequest, "Action is required")
		return
	}

	actor := ""
	if staff := middleware.StaffFrom(r.Context()); staff != nil {
		actor = staff.Email
	}

	log, err := h.auditLogs.Record(r.Context(), payload.Action, actor, payload.Details, util.MaskIP(util.ClientIP(r)))
	if err != nil {
		h.logger.Error("audit log create failed", "error", err)
		respondInternalError(w)
		return
	}

	respondData(w, http.StatusCreated, log)
}

// queryParam reads a query parameter by name, also accepting the nested
// "params[name]" form some dashboard clients send.
func queryParam(r *http.Request, name string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return r.URL.Query().Get("params[" + name + "]")
}

func queryParamInt(r *http.Request, name string, fallback int) int {
	v := queryParam(r, name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
