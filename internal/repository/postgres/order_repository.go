package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domainErrors "github.com/cassiomorais/hutko-gateway/internal/domain/errors"
	"github.com/cassiomorais/hutko-gateway/internal/domain/order"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// allowedSortColumns is a whitelist of columns valid for ORDER BY.
var allowedSortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"amount":     "amount",
	"status":     "status",
}

// OrderRepository implements order.Repository using PostgreSQL. Writes that
// touch both the order row and its notes run in one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
	txm  *TxManager
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool, txm: NewTxManager(pool)}
}

func (r *OrderRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const orderColumns = `id, reference, kind, customer_id, customer_email,
	        amount, currency, description, status, transaction_id,
	        last_error, version, created_at, updated_at, paid_at`

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	amountStr := centsToNumericString(o.Amount.ValueCents)

	return r.txm.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := r.db(ctx).Exec(ctx,
			`INSERT INTO orders
			 (id, reference, kind, customer_id, customer_email,
			  amount, currency, description, status, transaction_id,
			  last_error, version, created_at, updated_at, paid_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			o.ID, o.Reference, string(o.Kind), o.CustomerID, o.CustomerEmail,
			amountStr, o.Amount.Currency, o.Description, string(o.Status), o.TransactionID,
			o.LastError, o.Version, o.CreatedAt, o.UpdatedAt, o.PaidAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return domainErrors.NewDomainError("duplicate_reference", "order reference already exists", domainErrors.ErrInvalidInput)
			}
			return fmt.Errorf("insert order: %w", err)
		}

		return r.insertNotes(ctx, o)
	})
}

// GetByID retrieves an order by its ID.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.scanOrder(r.db(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
}

// GetByReference retrieves an order by its processor-facing reference.
func (r *OrderRepository) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	return r.scanOrder(r.db(ctx).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE reference = $1`, reference))
}

// Update persists order changes. The version check makes concurrent writers
// fail instead of silently overwriting each other; the caller re-reads under
// the order lock and retries.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	amountStr := centsToNumericString(o.Amount.ValueCents)

	err := r.txm.WithTransaction(ctx, func(ctx context.Context) error {
		tag, err := r.db(ctx).Exec(ctx,
			`UPDATE orders SET
			  status=$1, transaction_id=$2, last_error=$3,
			  amount=$4, currency=$5, version=version+1, updated_at=$6, paid_at=$7
			 WHERE id=$8 AND version=$9`,
			string(o.Status), o.TransactionID, o.LastError,
			amountStr, o.Amount.Currency, time.Now(), o.PaidAt,
			o.ID, o.Version,
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := r.db(ctx).QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, o.ID).Scan(&exists); err != nil {
				return fmt.Errorf("check order existence: %w", err)
			}
			if !exists {
				return domainErrors.ErrOrderNotFound
			}
			return domainErrors.ErrOptimisticLockFailed
		}

		return r.insertNotes(ctx, o)
	})
	if err != nil {
		return err
	}
	o.Version++
	return nil
}

// List lists orders with optional filters.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]*order.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	argIdx := 1

	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*f.Status))
		argIdx++
	}
	if f.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", argIdx)
		args = append(args, string(*f.Kind))
		argIdx++
	}
	if f.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argIdx)
		args = append(args, *f.CustomerID)
		argIdx++
	}

	// Strict whitelist for sort column
	sortBy := "created_at"
	if col, ok := allowedSortColumns[f.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListDueRenewals lists subscription orders still pending at the cutoff.
func (r *OrderRepository) ListDueRenewals(ctx context.Context, cutoff time.Time, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+orderColumns+`
		 FROM orders
		 WHERE kind = $1 AND status = $2 AND created_at <= $3
		 ORDER BY created_at ASC
		 LIMIT $4`,
		string(order.KindSubscription), string(order.StatusPending), cutoff, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due renewals: %w", err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// AddNote inserts a single audit-trail note.
func (r *OrderRepository) AddNote(ctx context.Context, note *order.Note) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO order_notes (id, order_id, note, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		note.ID, note.OrderID, note.Text, note.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order note: %w", err)
	}
	return nil
}

// GetNotes retrieves the audit trail for an order, oldest first.
func (r *OrderRepository) GetNotes(ctx context.Context, orderID uuid.UUID) ([]*order.Note, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id, order_id, note, created_at
		 FROM order_notes WHERE order_id = $1 ORDER BY created_at ASC`, orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order notes: %w", err)
	}
	defer rows.Close()

	var notes []*order.Note
	for rows.Next() {
		n := &order.Note{}
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Text, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// --- helpers ---

// insertNotes flushes in-memory notes; note ids make re-inserts no-ops.
func (r *OrderRepository) insertNotes(ctx context.Context, o *order.Order) error {
	for i := range o.Notes {
		if err := r.AddNote(ctx, &o.Notes[i]); err != nil {
			return err
		}
	}
	return nil
}

// scanOrder scans an order from any source implementing the scanner interface.
func (r *OrderRepository) scanOrder(s scanner) (*order.Order, error) {
	o := &order.Order{}
	var (
		kind      string
		amountStr string
		status    string
	)
	err := s.Scan(
		&o.ID, &o.Reference, &kind, &o.CustomerID, &o.CustomerEmail,
		&amountStr, &o.Amount.Currency, &o.Description, &status, &o.TransactionID,
		&o.LastError, &o.Version, &o.CreatedAt, &o.UpdatedAt, &o.PaidAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	cents, err := numericStringToCents(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	o.Amount.ValueCents = cents

	o.Kind = order.Kind(kind)
	o.Status = order.Status(status)
	return o, nil
}
