package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLKV stores blobs in a single key-value table through database/sql.
// The driver is chosen by configuration: sqlite3 for the on-device
// profile, pgx or mysql for hosted deployments.
type SQLKV struct {
	db       *sql.DB
	numbered bool
}

// NewSQLKV prepares the backing table and returns the store. Driver is
// the database/sql driver name the pool was opened with; pgx needs
// numbered placeholders, the rest take `?`.
func NewSQLKV(db *sql.DB, driver string) (*SQLKV, error) {
	if db == nil {
		return nil, errors.New("storage: db is required")
	}
	s := &SQLKV{db: db, numbered: driver == "pgx"}
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv_store (
		k VARCHAR(191) PRIMARY KEY,
		v TEXT NOT NULL,
		updated_at TIMESTAMP NULL
	)`)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// rebind rewrites `?` placeholders to `$n` for drivers that need them.
func (s *SQLKV) rebind(query string) string {
	if !s.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT v FROM kv_store WHERE k = ?`), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLKV) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE kv_store SET v = ?, updated_at = ? WHERE k = ?`), value, now, key)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`INSERT INTO kv_store (k, v, updated_at) VALUES (?, ?, ?)`), key, value, now)
	return err
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM kv_store WHERE k = ?`), key)
	return err
}
