package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront-intake/internal/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS inventory (
	product_id TEXT PRIMARY KEY,
	stock      INTEGER NOT NULL CHECK (stock >= 0),
	position   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS orders (
	order_id         TEXT PRIMARY KEY,
	"timestamp"      TIMESTAMPTZ NOT NULL,
	customer_name    TEXT NOT NULL,
	customer_phone   TEXT NOT NULL,
	customer_email   TEXT NOT NULL DEFAULT '',
	customer_address TEXT NOT NULL,
	product_id       TEXT NOT NULL REFERENCES inventory (product_id),
	quantity         INTEGER NOT NULL CHECK (quantity > 0),
	rating           INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
	referral_name    TEXT NOT NULL DEFAULT '',
	referral_contact TEXT NOT NULL DEFAULT ''
);
`

// Postgres stores both tables in a PostgreSQL database. Each commit runs in
// one transaction.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to url and creates the tables when missing.
func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) LoadInventory(ctx context.Context) ([]model.InventoryEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT product_id, stock FROM inventory ORDER BY position, product_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory: %w", err)
	}
	defer rows.Close()

	var out []model.InventoryEntry
	for rows.Next() {
		var e model.InventoryEntry
		if err := rows.Scan(&e.ProductID, &e.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoInventory
	}
	return out, nil
}

func (s *Postgres) SaveInventory(ctx context.Context, entries []model.InventoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return persistErr("begin", err)
	}
	defer tx.Rollback(ctx)

	upsert := `INSERT INTO inventory (product_id, stock, position) VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET stock = EXCLUDED.stock, position = EXCLUDED.position`
	for i, e := range entries {
		if _, err := tx.Exec(ctx, upsert, e.ProductID, e.Stock, i); err != nil {
			return persistErr("save inventory", err)
		}
	}
	return persistErr("commit", tx.Commit(ctx))
}

func (s *Postgres) SetStock(ctx context.Context, entry model.InventoryEntry) error {
	tag, err := s.pool.Exec(ctx, `UPDATE inventory SET stock = $1 WHERE product_id = $2`, entry.Stock, entry.ProductID)
	if err != nil {
		return persistErr("set stock", err)
	}
	if tag.RowsAffected() == 0 {
		return persistErr("set stock", fmt.Errorf("product %q not in inventory table", entry.ProductID))
	}
	return nil
}

func (s *Postgres) Commit(ctx context.Context, rec model.OrderRecord, entry model.InventoryEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return persistErr("begin", err)
	}
	defer tx.Rollback(ctx)

	insert := `INSERT INTO orders (
		order_id, "timestamp",
		customer_name, customer_phone, customer_email, customer_address,
		product_id, quantity, rating,
		referral_name, referral_contact
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.Exec(ctx, insert,
		rec.OrderID, rec.Timestamp,
		rec.Customer.Name, rec.Customer.Phone, rec.Customer.Email, rec.Customer.Address,
		rec.ProductID, rec.Quantity, rec.Rating,
		rec.Referral.Name, rec.Referral.Contact,
	)
	if err != nil {
		return persistErr("append order", err)
	}

	tag, err := tx.Exec(ctx, `UPDATE inventory SET stock = $1 WHERE product_id = $2`, entry.Stock, entry.ProductID)
	if err != nil {
		return persistErr("update stock", err)
	}
	if tag.RowsAffected() == 0 {
		return persistErr("update stock", fmt.Errorf("product %q not in inventory table", entry.ProductID))
	}
	return persistErr("commit", tx.Commit(ctx))
}

func (s *Postgres) Orders(ctx context.Context) ([]model.OrderRecord, error) {
	sql := `SELECT
		order_id, "timestamp",
		customer_name, customer_phone, customer_email, customer_address,
		product_id, quantity, rating,
		referral_name, referral_contact
		FROM orders
		ORDER BY "timestamp", order_id`

	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	defer rows.Close()

	var out []model.OrderRecord
	for rows.Next() {
		var r model.OrderRecord
		err := rows.Scan(
			&r.OrderID, &r.Timestamp,
			&r.Customer.Name, &r.Customer.Phone, &r.Customer.Email, &r.Customer.Address,
			&r.ProductID, &r.Quantity, &r.Rating,
			&r.Referral.Name, &r.Referral.Contact,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}
	return out, nil
}

// Order fetches a single order by id.
func (s *Postgres) Order(ctx context.Context, id string) (model.OrderRecord, error) {
	var r model.OrderRecord
	err := s.pool.QueryRow(ctx, `SELECT
		order_id, "timestamp",
		customer_name, customer_phone, customer_email, customer_address,
		product_id, quantity, rating,
		referral_name, referral_contact
		FROM orders WHERE order_id = $1`, id).Scan(
		&r.OrderID, &r.Timestamp,
		&r.Customer.Name, &r.Customer.Phone, &r.Customer.Email, &r.Customer.Address,
		&r.ProductID, &r.Quantity, &r.Rating,
		&r.Referral.Name, &r.Referral.Contact,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.OrderRecord{}, ErrOrderNotFound
	}
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return r, nil
}

func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
