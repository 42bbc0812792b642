package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NureKyrychenkoKyrylo/pharmaSmart/internal/domain"

	"go.uber.org/zap"
)

// AuditRepository appends journal entries. Writes run on the caller's
// transaction: if the audit insert fails, the surrounding mutation aborts too.
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	return &AuditRepository{db: db, logger: logger}
}

// Insert appends one entry. Details are marshaled to JSONB.
func (r *AuditRepository) Insert(ctx context.Context, q Querier, userID *string, action string, details map[string]any) error {
	if action == "" {
		return fmt.Errorf("action is required")
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO audit_logs (user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := q.ExecContext(ctx, query, userID, action, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

// List returns recent entries, newest first. Admin-only at the service layer.
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT log_id, user_id, action, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC, log_id DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	logs := []domain.AuditLog{}
	for rows.Next() {
		var l domain.AuditLog
		var userID sql.NullString
		var details []byte
		if err := rows.Scan(&l.LogID, &userID, &l.Action, &details, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		if userID.Valid {
			l.UserID = &userID.String
		}
		if len(details) > 0 {
			l.Details = details
		} else {
			l.Details = json.RawMessage("{}")
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
	}
	return logs, nil
}
