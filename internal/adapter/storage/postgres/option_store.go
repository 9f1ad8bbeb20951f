package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// OptionStore implements ports.OptionStore over the wcc_options table.
type OptionStore struct {
	pool Pool
}

func NewOptionStore(pool Pool) *OptionStore {
	return &OptionStore{pool: pool}
}

func (s *OptionStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM wcc_options WHERE name = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get option: %w", err)
	}
	return value, true, nil
}

func (s *OptionStore) Set(ctx context.Context, key string, value string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO wcc_options (name, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set option: %w", err)
	}
	return nil
}

// SetIfAbsent stores value unless key already exists and returns the stored value.
// On conflict the no-op DO UPDATE locks the existing row and RETURNING yields
// it, including a row committed by a concurrent writer after this statement began.
func (s *OptionStore) SetIfAbsent(ctx context.Context, key string, value string) (string, error) {
	var stored string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO wcc_options (name, value) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET value = wcc_options.value
		 RETURNING value`,
		key, value).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("set option if absent: %w", err)
	}
	return stored, nil
}
