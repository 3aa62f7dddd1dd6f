package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, record audit.Record) error {
	query, args, err := qb.InsertModel("api_audit", auditTableModel{
		ID:          record.ID,
		APIKey:      record.APIKey,
		Provider:    string(record.Provider),
		RequestURI:  record.RequestURI,
		RequestedAt: record.RequestedAt.UTC(),
		Success:     record.Success,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert api audit query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert api audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) CountSince(ctx context.Context, provider audit.Provider, apiKey string, since time.Time) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("api_audit").
		Where(
			qb.Eq("provider", string(provider)),
			qb.Eq("api_key", apiKey),
			qb.Gte("requested_at", since.UTC()),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count api audit query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count api audit: %w", err)
	}
	return count, nil
}

func (r *AuditRepository) Latest(ctx context.Context, provider audit.Provider, apiKey string) (audit.Record, bool, error) {
	query, args, err := qb.Select("*").From("api_audit").
		Where(
			qb.Eq("provider", string(provider)),
			qb.Eq("api_key", apiKey),
		).
		OrderBy("requested_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return audit.Record{}, false, fmt.Errorf("build select latest api audit query: %w", err)
	}

	var row auditTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return audit.Record{}, false, nil
		}
		return audit.Record{}, false, fmt.Errorf("select latest api audit: %w", err)
	}
	return audit.Record{
		ID:          row.ID,
		APIKey:      row.APIKey,
		Provider:    audit.Provider(row.Provider),
		RequestURI:  row.RequestURI,
		RequestedAt: row.RequestedAt.UTC(),
		Success:     row.Success,
	}, true, nil
}
