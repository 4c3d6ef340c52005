package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/plantarium/catalog/internal/domain"
)

// Store is the sqlite-backed persistence layer for canonical offers, the
// append-only price history, and admin-authored normalization overrides.
type Store struct {
	conn *sql.DB
}

// Open opens (creating if necessary) the catalog database at path.
// ":memory:" is accepted for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	s := &Store{conn: conn}
	if err := s.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS canonical_offers (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  retailer_id TEXT NOT NULL,
  url TEXT NOT NULL,
  price_cents INTEGER,
  currency TEXT NOT NULL DEFAULT '',
  in_stock INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL,
  last_checked_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_offers_product ON canonical_offers(product_id);
CREATE INDEX IF NOT EXISTS idx_offers_retailer ON canonical_offers(retailer_id);

CREATE TABLE IF NOT EXISTS price_history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  offer_id TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  in_stock INTEGER NOT NULL,
  recorded_at TEXT NOT NULL,
  FOREIGN KEY(offer_id) REFERENCES canonical_offers(id)
);
CREATE INDEX IF NOT EXISTS idx_history_offer ON price_history(offer_id, recorded_at);

CREATE TABLE IF NOT EXISTS normalization_overrides (
  id TEXT PRIMARY KEY,
  canonical_type TEXT NOT NULL,
  canonical_id TEXT NOT NULL,
  field_path TEXT NOT NULL,
  value_json TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  updated_at TEXT NOT NULL,
  UNIQUE(canonical_type, canonical_id, field_path)
);
CREATE INDEX IF NOT EXISTS idx_overrides_canonical ON normalization_overrides(canonical_type, canonical_id);
`

	_, err := s.conn.Exec(schema)
	return err
}

// GetByID returns the canonical offer row, or (nil, nil) when it does not
// exist.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.CanonicalOffer, error) {
	var (
		offer         domain.CanonicalOffer
		priceCents    sql.NullInt64
		inStock       int
		updatedAt     string
		lastCheckedAt string
	)
	err := s.conn.QueryRowContext(ctx, `
SELECT id, product_id, retailer_id, url, price_cents, currency, in_stock, updated_at, last_checked_at
FROM canonical_offers WHERE id = ?
`, id).Scan(
		&offer.ID, &offer.ProductID, &offer.RetailerID, &offer.URL,
		&priceCents, &offer.Currency, &inStock, &updatedAt, &lastCheckedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get offer %s: %v", domain.ErrStoreFailure, id, err)
	}

	if priceCents.Valid {
		offer.PriceCents = &priceCents.Int64
	}
	offer.InStock = inStock != 0
	if offer.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if offer.LastCheckedAt, err = parseTime(lastCheckedAt); err != nil {
		return nil, err
	}
	return &offer, nil
}

// Upsert inserts or fully replaces a canonical offer row
func (s *Store) Upsert(ctx context.Context, offer *domain.CanonicalOffer) error {
	_, err := s.conn.ExecContext(ctx, `
INSERT INTO canonical_offers (id, product_id, retailer_id, url, price_cents, currency, in_stock, updated_at, last_checked_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  product_id=excluded.product_id,
  retailer_id=excluded.retailer_id,
  url=excluded.url,
  price_cents=excluded.price_cents,
  currency=excluded.currency,
  in_stock=excluded.in_stock,
  updated_at=excluded.updated_at,
  last_checked_at=excluded.last_checked_at
`, offer.ID, offer.ProductID, offer.RetailerID, offer.URL,
		nullInt64(offer.PriceCents), offer.Currency, boolInt(offer.InStock),
		formatTime(offer.UpdatedAt), formatTime(offer.LastCheckedAt))
	if err != nil {
		return fmt.Errorf("%w: upsert offer %s: %v", domain.ErrStoreFailure, offer.ID, err)
	}
	return nil
}

// Update writes the mutable observation fields of an existing offer row
func (s *Store) Update(ctx context.Context, offer *domain.CanonicalOffer) error {
	_, err := s.conn.ExecContext(ctx, `
UPDATE canonical_offers
SET price_cents = ?, currency = ?, in_stock = ?, updated_at = ?, last_checked_at = ?
WHERE id = ?
`, nullInt64(offer.PriceCents), offer.Currency, boolInt(offer.InStock),
		formatTime(offer.UpdatedAt), formatTime(offer.LastCheckedAt), offer.ID)
	if err != nil {
		return fmt.Errorf("%w: update offer %s: %v", domain.ErrStoreFailure, offer.ID, err)
	}
	return nil
}

// TouchLastChecked advances last_checked_at without touching anything else,
// so "probed with no change" is distinguishable from "never probed".
func (s *Store) TouchLastChecked(ctx context.Context, id string, checkedAt time.Time) error {
	_, err := s.conn.ExecContext(ctx, `
UPDATE canonical_offers SET last_checked_at = ? WHERE id = ?
`, formatTime(checkedAt), id)
	if err != nil {
		return fmt.Errorf("%w: touch offer %s: %v", domain.ErrStoreFailure, id, err)
	}
	return nil
}

// Append adds one price history point. The table is append-only; nothing in
// the engine updates or deletes history rows.
func (s *Store) Append(ctx context.Context, point domain.PriceHistoryPoint) error {
	_, err := s.conn.ExecContext(ctx, `
INSERT INTO price_history (offer_id, price_cents, in_stock, recorded_at)
VALUES (?, ?, ?, ?)
`, point.OfferID, point.PriceCents, boolInt(point.InStock), formatTime(point.RecordedAt))
	if err != nil {
		return fmt.Errorf("%w: append history for offer %s: %v", domain.ErrStoreFailure, point.OfferID, err)
	}
	return nil
}

// ListByOffer returns the most recent history points for one offer, newest
// first. limit <= 0 returns everything.
func (s *Store) ListByOffer(ctx context.Context, offerID string, limit int) ([]domain.PriceHistoryPoint, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.conn.QueryContext(ctx, `
SELECT offer_id, price_cents, in_stock, recorded_at
FROM price_history WHERE offer_id = ?
ORDER BY recorded_at DESC, id DESC
LIMIT ?
`, offerID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list history for offer %s: %v", domain.ErrStoreFailure, offerID, err)
	}
	defer rows.Close()

	var out []domain.PriceHistoryPoint
	for rows.Next() {
		var (
			point      domain.PriceHistoryPoint
			inStock    int
			recordedAt string
		)
		if err := rows.Scan(&point.OfferID, &point.PriceCents, &inStock, &recordedAt); err != nil {
			return nil, fmt.Errorf("%w: scan history row: %v", domain.ErrStoreFailure, err)
		}
		point.InStock = inStock != 0
		if point.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, err
		}
		out = append(out, point)
	}
	return out, rows.Err()
}

// ListByCanonical returns the overrides on file for one canonical entity,
// ordered by field path ascending so application order is deterministic.
func (s *Store) ListByCanonical(ctx context.Context, canonicalType domain.CanonicalType, canonicalID string) ([]domain.NormalizationOverride, error) {
	rows, err := s.conn.QueryContext(ctx, `
SELECT id, canonical_type, canonical_id, field_path, value_json, reason, updated_at
FROM normalization_overrides
WHERE canonical_type = ? AND canonical_id = ?
ORDER BY field_path ASC
`, string(canonicalType), canonicalID)
	if err != nil {
		return nil, fmt.Errorf("%w: list overrides for %s %s: %v", domain.ErrStoreFailure, canonicalType, canonicalID, err)
	}
	defer rows.Close()

	var out []domain.NormalizationOverride
	for rows.Next() {
		var (
			row       domain.NormalizationOverride
			valueJSON string
			updatedAt string
		)
		if err := rows.Scan(&row.ID, &row.CanonicalType, &row.CanonicalID, &row.FieldPath, &valueJSON, &row.Reason, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan override row: %v", domain.ErrStoreFailure, err)
		}
		if err := json.Unmarshal([]byte(valueJSON), &row.Value); err != nil {
			return nil, fmt.Errorf("%w: decode override %s value: %v", domain.ErrStoreFailure, row.ID, err)
		}
		if row.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpsertOverride writes one admin override row. The engine itself never calls
// this; it exists for the admin tooling that owns the override lifecycle.
func (s *Store) UpsertOverride(ctx context.Context, row domain.NormalizationOverride) error {
	valueJSON, err := json.Marshal(row.Value)
	if err != nil {
		return fmt.Errorf("%w: encode override %s value: %v", domain.ErrStoreFailure, row.ID, err)
	}
	_, err = s.conn.ExecContext(ctx, `
INSERT INTO normalization_overrides (id, canonical_type, canonical_id, field_path, value_json, reason, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(canonical_type, canonical_id, field_path) DO UPDATE SET
  id=excluded.id,
  value_json=excluded.value_json,
  reason=excluded.reason,
  updated_at=excluded.updated_at
`, row.ID, string(row.CanonicalType), row.CanonicalID, row.FieldPath, string(valueJSON), row.Reason, formatTime(row.UpdatedAt))
	if err != nil {
		return fmt.Errorf("%w: upsert override %s: %v", domain.ErrStoreFailure, row.ID, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parse stored time %q: %v", domain.ErrStoreFailure, s, err)
	}
	return t, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
