package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/dragonmail/dragonmail/internal/database"
	"github.com/dragonmail/dragonmail/internal/model"
	"github.com/lib/pq"
)

type pgActivityRepository struct {
	db *database.Postgres
}

func (r *pgActivityRepository) Append(ctx context.Context, rec model.ActivityRecord) error {
	query := `
		INSERT INTO activity_log (id, channel, username, subject, message_preview,
		       recipients, recipient_list, attachments, success, failed, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Channel,
		rec.User,
		rec.Subject,
		rec.MessagePreview,
		rec.Recipients,
		pq.Array(rec.RecipientList),
		pq.Array(rec.Attachments),
		rec.Success,
		rec.Failed,
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity record: %w", err)
	}
	return nil
}

func (r *pgActivityRepository) List(ctx context.Context, filter ActivityFilter) ([]model.ActivityRecord, error) {
	var conds []string
	var args []interface{}
	if filter.Channel != "" {
		args = append(args, filter.Channel)
		conds = append(conds, fmt.Sprintf("channel = $%d", len(args)))
	}
	if filter.User != "" {
		args = append(args, filter.User)
		conds = append(conds, fmt.Sprintf("username = $%d", len(args)))
	}

	query := `
		SELECT id, channel, username, subject, message_preview,
		       recipients, recipient_list, attachments, success, failed, sent_at
		FROM activity_log
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY sent_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var records []model.ActivityRecord
	for rows.Next() {
		var rec model.ActivityRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Channel,
			&rec.User,
			&rec.Subject,
			&rec.MessagePreview,
			&rec.Recipients,
			pq.Array(&rec.RecipientList),
			pq.Array(&rec.Attachments),
			&rec.Success,
			&rec.Failed,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *pgActivityRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activity_log`); err != nil {
		return fmt.Errorf("failed to clear activity log: %w", err)
	}
	return nil
}
