package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/lead-lens/internal/domain"
)

// AuditRepository appends and reads audit entries. There is no update or delete path.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByRecord(ctx context.Context, recordID string, limit int) ([]domain.AuditEntry, error)
}

type auditRepository struct {
	db DB
}

// NewAuditRepository returns a Postgres-backed implementation.
func NewAuditRepository(db DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (user_id, sf_record_id, action, before_json, after_json, ip, user_agent)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`

	before, err := json.Marshal(entry.Before)
	if err != nil {
		return fmt.Errorf("encode before snapshot: %w", err)
	}
	after, err := json.Marshal(entry.After)
	if err != nil {
		return fmt.Errorf("encode after snapshot: %w", err)
	}

	return r.db.QueryRow(ctx, query,
		entry.UserID,
		entry.SFRecordID,
		string(entry.Action),
		before,
		after,
		entry.IP,
		entry.UserAgent,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByRecord returns the newest entries for a Salesforce record first.
func (r *auditRepository) ListByRecord(ctx context.Context, recordID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, user_id, sf_record_id, action, before_json, after_json, created_at, ip, user_agent
        FROM audit_log WHERE sf_record_id=$1
        ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, query, recordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e             domain.AuditEntry
			action        string
			before, after []byte
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.SFRecordID, &action, &before, &after, &e.CreatedAt, &e.IP, &e.UserAgent); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		if err := decodeSnapshot(before, &e.Before); err != nil {
			return nil, err
		}
		if err := decodeSnapshot(after, &e.After); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func decodeSnapshot(raw []byte, out *map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode audit snapshot: %w", err)
	}
	return nil
}
