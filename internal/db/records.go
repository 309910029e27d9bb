package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nick-dorsch/dolist/pkg/models"
)

// RecordKey names the record that holds the serialized task collection.
const RecordKey = "do-list-tasks"

// Load reads the task collection. A missing record yields an empty
// collection; an undecodable one yields an empty collection and an error
// wrapping models.ErrCorrupt.
func (db *DB) Load(ctx context.Context) ([]models.Task, error) {
	value, err := db.GetRecord(ctx, RecordKey)
	if err != nil {
		return []models.Task{}, err
	}
	if value == nil {
		return []models.Task{}, nil
	}

	collection, err := models.DecodeTasks([]byte(*value))
	if err != nil {
		return []models.Task{}, err
	}
	return collection, nil
}

// Save replaces the stored task collection.
func (db *DB) Save(ctx context.Context, collection []models.Task) error {
	data, err := models.EncodeTasks(collection)
	if err != nil {
		return err
	}
	if err := db.PutRecord(ctx, RecordKey, string(data)); err != nil {
		return err
	}

	db.triggerChange(ctx)
	return nil
}

// GetRecord returns the value stored under key, or nil if there is none.
func (db *DB) GetRecord(ctx context.Context, key string) (*string, error) {
	var value string
	err := db.QueryRowContext(ctx, `SELECT value FROM records WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return &value, nil
}

func (db *DB) PutRecord(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO records (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`
	if _, err := db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to put record %s: %w", key, err)
	}
	return nil
}
