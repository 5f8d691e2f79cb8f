package store

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// StoreRawPayload archives a compressed provider response.
// An identical payload (same hash) is not stored twice; its fetched_at is refreshed instead.
func (s *Store) StoreRawPayload(source, endpoint, locationID string, payload []byte) (int64, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return 0, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("close gzip: %w", err)
	}

	hash := sha256.Sum256(payload)
	hashHex := hex.EncodeToString(hash[:])

	var locationIDNull sql.NullString
	if locationID != "" {
		locationIDNull = sql.NullString{String: locationID, Valid: true}
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO raw_payloads
		(fetched_at, source, endpoint, location_id, payload_compressed, payload_hash, schema_version)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(payload_hash) DO UPDATE SET fetched_at = excluded.fetched_at
		RETURNING id
	`, s.timestamp(), source, endpoint, locationIDNull, buf.Bytes(), hashHex).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert raw payload: %w", err)
	}
	return id, nil
}

// LatestRawPayload returns the newest payload for source/endpoint/location fetched within maxAge.
func (s *Store) LatestRawPayload(source, endpoint, locationID string, maxAge time.Duration) ([]byte, bool, error) {
	var compressed []byte
	err := s.db.QueryRow(`
		SELECT payload_compressed FROM raw_payloads
		WHERE source = ? AND endpoint = ? AND location_id = ? AND fetched_at >= ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`, source, endpoint, locationID, s.timestamp().Add(-maxAge)).Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("latest raw payload: %w", err)
	}

	payload, err := decompress(compressed)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// PruneRawPayloads deletes payloads fetched more than retention ago.
func (s *Store) PruneRawPayloads(retention time.Duration) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM raw_payloads WHERE fetched_at < ?`, s.timestamp().Add(-retention))
	if err != nil {
		return 0, fmt.Errorf("prune raw payloads: %w", err)
	}
	return result.RowsAffected()
}

func decompress(compressed []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
