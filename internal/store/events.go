package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"contentdesk/internal/model"

	"github.com/google/uuid"
)

// TaskEntityID is the event entity id for a task.
func TaskEntityID(id int64) string { return fmt.Sprintf("%s-%d", KindTask, id) }

// EnquiryEntityID is the event entity id for an enquiry.
func EnquiryEntityID(id int64) string { return fmt.Sprintf("%s-%d", KindEnquiry, id) }

// BrandEntityID is the event entity id for a brand.
func BrandEntityID(id int64) string { return fmt.Sprintf("%s-%d", KindBrand, id) }

// AppendEvent records an audit event. Event ids are random UUIDs; ordering within the log
// comes from a monotonically increasing seq column.
func (s Store) AppendEvent(ctx context.Context, actorID, typ, entityID string, payload any) error {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM events`).Scan(&seq); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO events(event_id, entity_id, type, actor_id, payload_json, issued_at_unixms, seq) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), strings.TrimSpace(entityID), typ, strings.TrimSpace(actorID), string(raw), time.Now().UTC().UnixMilli(), seq); err != nil {
		return err
	}
	return tx.Commit()
}

// Events returns events oldest first. An empty entityID returns the whole log.
// limit <= 0 means "all"; otherwise the newest limit events are returned.
func (s Store) Events(ctx context.Context, entityID string, limit int) ([]model.Event, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, entity_id, type, actor_id, payload_json, issued_at_unixms FROM events`
	args := []any{}
	if strings.TrimSpace(entityID) != "" {
		q += ` WHERE entity_id = ?`
		args = append(args, strings.TrimSpace(entityID))
	}
	q += ` ORDER BY seq DESC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		var (
			ev      model.Event
			payload string
			ms      int64
		)
		if err := rows.Scan(&ev.ID, &ev.EntityID, &ev.Type, &ev.ActorID, &payload, &ms); err != nil {
			return nil, err
		}
		ev.TS = time.UnixMilli(ms).UTC()
		if payload != "" && payload != "null" {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err != nil {
				return nil, fmt.Errorf("decode event %s: %w", ev.ID, err)
			}
			ev.Payload = v
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
