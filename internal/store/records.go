package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zanvidmar/vitrina/internal/model"
)

// RecordFilter narrows SelectRecords results.
type RecordFilter struct {
	// Archived filters on the soft-delete flag; nil returns everything.
	Archived *bool
}

// Active and Archived are ready-made filters for the common cases.
var (
	Active   = RecordFilter{Archived: boolPtr(false)}
	Archived = RecordFilter{Archived: boolPtr(true)}
)

func boolPtr(b bool) *bool { return &b }

const recordColumns = `id, title, sort_order, payload, is_archived, created_at, updated_at`

// tableFor maps a collection name to its table, rejecting unknown names so
// nothing unchecked is ever interpolated into SQL.
func tableFor(collection string) (string, error) {
	if !model.ValidCollection(collection) {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return collection, nil
}

// idPlaceholders builds a "?, ?, ?" list and the matching args for an IN clause.
func idPlaceholders(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}

func scanRecord(scan func(...any) error) (*model.Record, error) {
	r := &model.Record{}
	var payload string
	var archived int
	if err := scan(&r.ID, &r.Title, &r.SortOrder, &payload, &archived, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Payload = json.RawMessage(payload)
	r.IsArchived = archived != 0
	return r, nil
}

// SelectRecords returns records from a collection, ordered by sort order
// and then newest first.
func SelectRecords(ctx context.Context, db *sql.DB, collection string, filter RecordFilter) ([]model.Record, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + recordColumns + ` FROM ` + table
	var args []any
	if filter.Archived != nil {
		query += ` WHERE is_archived = ?`
		if *filter.Archived {
			args = append(args, 1)
		} else {
			args = append(args, 0)
		}
	}
	query += ` ORDER BY sort_order, created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning %s record: %w", collection, err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}

// GetRecord returns a record by ID, or nil if it doesn't exist.
func GetRecord(ctx context.Context, db *sql.DB, collection string, id int64) (*model.Record, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM `+table+` WHERE id = ?`, id,
	)
	r, err := scanRecord(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s record: %w", collection, err)
	}
	return r, nil
}

// InsertRecord creates a new record. An empty payload defaults to "{}".
func InsertRecord(ctx context.Context, db *sql.DB, collection, title string, sortOrder int, payload json.RawMessage) (*model.Record, error) {
	table, err := tableFor(collection)
	if err != nil {
		return nil, err
	}
	payload, err = normalizePayload(payload)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (title, sort_order, payload) VALUES (?, ?, ?)`,
		title, sortOrder, string(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s record: %w", collection, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting %s record id: %w", collection, err)
	}

	return GetRecord(ctx, db, collection, id)
}

// UpdateRecord updates a record's title, sort order and payload.
func UpdateRecord(ctx context.Context, db *sql.DB, collection string, id int64, title string, sortOrder int, payload json.RawMessage) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	payload, err = normalizePayload(payload)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE `+table+` SET title = ?, sort_order = ?, payload = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, sortOrder, string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("updating %s record: %w", collection, err)
	}
	return nil
}

// ArchiveRecords soft-deletes the given records. Archiving an already
// archived record is a no-op.
func ArchiveRecords(ctx context.Context, db *sql.DB, collection string, ids []int64) error {
	return setArchived(ctx, db, collection, ids, true)
}

// RestoreRecords clears the soft-delete flag on the given records.
func RestoreRecords(ctx context.Context, db *sql.DB, collection string, ids []int64) error {
	return setArchived(ctx, db, collection, ids, false)
}

func setArchived(ctx context.Context, db *sql.DB, collection string, ids []int64, archived bool) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	flag := 0
	verb := "restoring"
	if archived {
		flag = 1
		verb = "archiving"
	}

	placeholders, args := idPlaceholders(ids)
	args = append([]any{flag}, args...)
	_, err = db.ExecContext(ctx,
		`UPDATE `+table+` SET is_archived = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("%s %s records: %w", verb, collection, err)
	}
	return nil
}

// DeleteRecords permanently removes the given records. There is no undo.
func DeleteRecords(ctx context.Context, db *sql.DB, collection string, ids []int64) error {
	table, err := tableFor(collection)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	placeholders, args := idPlaceholders(ids)
	_, err = db.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return fmt.Errorf("deleting %s records: %w", collection, err)
	}
	return nil
}

func normalizePayload(payload json.RawMessage) (json.RawMessage, error) {
	if len(payload) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("invalid payload JSON")
	}
	return payload, nil
}
