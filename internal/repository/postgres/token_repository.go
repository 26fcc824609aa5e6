package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/token"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TokenRepository implements token.Repository using PostgreSQL.
type TokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Save inserts the token. A record with the same (customer, gateway, value)
// is updated in place; distinct values for one customer coexist.
func (r *TokenRepository) Save(ctx context.Context, t *token.Token) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO recurring_tokens (id, customer_id, gateway_id, token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (customer_id, gateway_id, token)
		 DO UPDATE SET updated_at = EXCLUDED.updated_at`,
		t.ID, t.CustomerID, t.GatewayID, t.Value, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save recurring token: %w", err)
	}
	return nil
}

// GetByValue retrieves a customer's token by its value.
func (r *TokenRepository) GetByValue(ctx context.Context, customerID uuid.UUID, value string) (*token.Token, error) {
	return r.scanToken(r.db(ctx).QueryRow(ctx,
		`SELECT id, customer_id, gateway_id, token, created_at, updated_at
		 FROM recurring_tokens WHERE customer_id = $1 AND token = $2`,
		customerID, value))
}

// GetLatest retrieves the most recently saved token for a customer and gateway.
func (r *TokenRepository) GetLatest(ctx context.Context, customerID uuid.UUID, gatewayID string) (*token.Token, error) {
	return r.scanToken(r.db(ctx).QueryRow(ctx,
		`SELECT id, customer_id, gateway_id, token, created_at, updated_at
		 FROM recurring_tokens WHERE customer_id = $1 AND gateway_id = $2
		 ORDER BY updated_at DESC LIMIT 1`,
		customerID, gatewayID))
}

// ListByCustomer lists all tokens stored for a customer.
func (r *TokenRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*token.Token, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, customer_id, gateway_id, token, created_at, updated_at
		 FROM recurring_tokens WHERE customer_id = $1 ORDER BY updated_at DESC`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recurring tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*token.Token
	for rows.Next() {
		t, err := r.scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *TokenRepository) scanToken(s scanner) (*token.Token, error) {
	t := &token.Token{}
	err := s.Scan(&t.ID, &t.CustomerID, &t.GatewayID, &t.Value, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrTokenNotFound
		}
		return nil, fmt.Errorf("scan recurring token: %w", err)
	}
	return t, nil
}
