package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/lead-lens/internal/domain"
)

// MetadataCacheRepository stores picklist values per (object, field).
type MetadataCacheRepository interface {
	ListByObject(ctx context.Context, objectName string) ([]domain.CachedPicklist, error)
	Upsert(ctx context.Context, entry domain.CachedPicklist) error
}

type metadataCacheRepository struct {
	db DB
}

// NewMetadataCacheRepository returns a Postgres-backed implementation.
func NewMetadataCacheRepository(db DB) MetadataCacheRepository {
	return &metadataCacheRepository{db: db}
}

func (r *metadataCacheRepository) ListByObject(ctx context.Context, objectName string) ([]domain.CachedPicklist, error) {
	const query = `
        SELECT object_name, field_name, metadata, cached_at
        FROM sf_metadata_cache WHERE object_name=$1
        ORDER BY field_name`

	rows, err := r.db.Query(ctx, query, objectName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CachedPicklist
	for rows.Next() {
		var (
			e   domain.CachedPicklist
			raw []byte
		)
		if err := rows.Scan(&e.ObjectName, &e.FieldName, &raw, &e.CachedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &e.Values); err != nil {
			return nil, fmt.Errorf("decode cached picklist %s: %w", e.FieldName, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *metadataCacheRepository) Upsert(ctx context.Context, entry domain.CachedPicklist) error {
	const query = `
        INSERT INTO sf_metadata_cache (object_name, field_name, metadata, cached_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (object_name, field_name)
        DO UPDATE SET metadata = EXCLUDED.metadata, cached_at = EXCLUDED.cached_at`

	values := entry.Values
	if values == nil {
		values = []domain.PicklistValue{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode picklist: %w", err)
	}
	_, err = r.db.Exec(ctx, query, entry.ObjectName, entry.FieldName, raw, entry.CachedAt)
	return err
}
