package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrQuoteNotFound = errors.New("quote not found")

// Quote is one recorded calculation.
type Quote struct {
	ID               uuid.UUID       `json:"id"`
	RequestID        string          `json:"request_id,omitempty"`
	DestinationZip   string          `json:"destination_zip,omitempty"`
	ServiceCount     int             `json:"service_count"`
	FreeShippingFrom *float64        `json:"free_shipping_from,omitempty"`
	Params           json.RawMessage `json:"params"`
	Response         json.RawMessage `json:"response"`
	CreatedAt        time.Time       `json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS shipping_quotes (
    id                 uuid PRIMARY KEY,
    request_id         text,
    destination_zip    text,
    service_count      integer NOT NULL DEFAULT 0,
    free_shipping_from numeric,
    params             jsonb NOT NULL DEFAULT '{}'::jsonb,
    response           jsonb NOT NULL DEFAULT '{}'::jsonb,
    created_at         timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS shipping_quotes_created_at_idx ON shipping_quotes (created_at DESC);
`

// QuoteLog stores calculated quotes in Postgres for later lookup.
type QuoteLog struct {
	pool *pgxpool.Pool
}

func NewQuoteLog(pool *pgxpool.Pool) *QuoteLog { return &QuoteLog{pool: pool} }

func (l *QuoteLog) EnsureSchema(ctx context.Context) error {
	if _, err := l.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create shipping_quotes: %w", err)
	}
	return nil
}

// Record inserts q. Recording the same id twice is not an error.
func (l *QuoteLog) Record(ctx context.Context, q Quote) error {
	if q.ID == uuid.Nil {
		return errors.New("quote id is required")
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	_, err := l.pool.Exec(ctx, `
        INSERT INTO shipping_quotes (
            id, request_id, destination_zip, service_count, free_shipping_from,
            params, response, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, $8
        )`,
		q.ID,
		nullIfEmpty(q.RequestID),
		nullIfEmpty(q.DestinationZip),
		q.ServiceCount,
		q.FreeShippingFrom,
		string(orEmptyObject(q.Params)),
		string(orEmptyObject(q.Response)),
		q.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (l *QuoteLog) Get(ctx context.Context, id uuid.UUID) (Quote, error) {
	q := Quote{ID: id}
	var (
		requestID, destZip *string
		params, response   []byte
	)
	err := l.pool.QueryRow(ctx, `
        SELECT request_id, destination_zip, service_count, free_shipping_from::float8,
               params, response, created_at
        FROM shipping_quotes
        WHERE id = $1`, id).
		Scan(&requestID, &destZip, &q.ServiceCount, &q.FreeShippingFrom, &params, &response, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Quote{}, ErrQuoteNotFound
		}
		return Quote{}, fmt.Errorf("select quote: %w", err)
	}
	if requestID != nil {
		q.RequestID = *requestID
	}
	if destZip != nil {
		q.DestinationZip = *destZip
	}
	q.Params = json.RawMessage(params)
	q.Response = json.RawMessage(response)
	q.CreatedAt = q.CreatedAt.UTC()
	return q, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmptyObject(b json.RawMessage) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("{}")
	}
	return b
}
