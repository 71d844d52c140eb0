package repositories

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hbapte/portfolio-api/internal/storage"
	"github.com/hbapte/portfolio-api/models"
)

// AuditLogRepository stores the admin audit trail. Search and pagination are
// in-memory over a full listing.
type AuditLogRepository struct {
	schema *storage.Schema
}

func NewAuditLogRepository(store storage.Store) *AuditLogRepository {
	return &AuditLogRepository{
		schema: storage.NewSchema(store, "auditlog"),
	}
}

func (r *AuditLogRepository) Record(ctx context.Context, action, actor, details, ipAddress string) (*models.AuditLog, error) {
	rec, err := r.schema.Create(ctx, map[string]any{
		"action":    action,
		"actor":     actor,
		"details":   details,
		"ipAddress": ipAddress,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	return models.AuditLogFromRecord(rec), nil
}

type AuditLogSearch struct {
	Term   string
	Action string
	Page   int
	Limit  int
}

type AuditLogPage struct {
	Logs        []*models.AuditLog `json:"logs"`
	TotalLogs   int                `json:"totalLogs"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	ActionTypes []string           `json:"actionTypes"`
}

// Search filters by free-text term (actor, details) and exact action, sorts
// newest first, and slices out the requested page. ActionTypes is the
// distinct action set over the whole collection, not just the page.
func (r *AuditLogRepository) Search(ctx context.Context, params AuditLogSearch) (*AuditLogPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	records, err := r.schema.List(ctx)
	if err != nil {
		return nil, err
	}

	actions := make(map[string]struct{})
	var logs []*models.AuditLog
	term := strings.ToLower(params.Term)

	for _, rec := range records {
		log := models.AuditLogFromRecord(rec)
		actions[log.Action] = struct{}{}

		if params.Action != "" && log.Action != params.Action {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(log.Actor), term) &&
			!strings.Contains(strings.ToLower(log.Details), term) {
			continue
		}
		logs = append(logs, log)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	actionTypes := make([]string, 0, len(actions))
	for action := range actions {
		actionTypes = append(actionTypes, action)
	}
	sort.Strings(actionTypes)

	total := len(logs)
	totalPages := (total + params.Limit - 1) / params.Limit

	start := (params.Page - 1) * params.Limit
	if start >= total {
		logs = []*models.AuditLog{}
	} else {
		logs = logs[start:min(start+params.Limit, total)]
	}

	return &AuditLogPage{
		Logs:        logs,
		TotalLogs:   total,
		TotalPages:  totalPages,
		CurrentPage: params.Page,
		ActionTypes: actionTypes,
	}, nil
}
