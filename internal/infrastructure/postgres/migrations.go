package postgres

import (
	"context"
	"fmt"
)

// schema crea las tablas del sistema. Cada sentencia es idempotente (IF NOT EXISTS).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                UUID PRIMARY KEY,
		username          TEXT NOT NULL,
		full_name         TEXT NOT NULL DEFAULT '',
		email             TEXT NOT NULL DEFAULT '',
		role              TEXT NOT NULL CHECK (role IN ('admin', 'staff')),
		password_hash     TEXT NOT NULL,
		recovery_pin_hash TEXT NOT NULL DEFAULT '',
		active            BOOLEAN NOT NULL DEFAULT TRUE,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (LOWER(username))`,
	`CREATE TABLE IF NOT EXISTS generic_drugs (
		id          UUID PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS suppliers (
		id             UUID PRIMARY KEY,
		name           TEXT NOT NULL UNIQUE,
		contact_person TEXT NOT NULL DEFAULT '',
		phone          TEXT NOT NULL DEFAULT '',
		email          TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id            UUID PRIMARY KEY,
		brand_name    TEXT NOT NULL UNIQUE,
		generic_id    UUID REFERENCES generic_drugs(id) ON DELETE SET NULL,
		is_controlled BOOLEAN NOT NULL DEFAULT FALSE,
		reorder_level INT NOT NULL DEFAULT 1 CHECK (reorder_level >= 0),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS batches (
		id                UUID PRIMARY KEY,
		product_id        UUID NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
		supplier_id       UUID REFERENCES suppliers(id) ON DELETE SET NULL,
		batch_number      TEXT NOT NULL,
		expiry_date       DATE NOT NULL,
		quantity          INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		buying_price      NUMERIC(12,2) NOT NULL DEFAULT 0,
		unit_price        NUMERIC(12,2) NOT NULL DEFAULT 0,
		expiry_alert_days INT NOT NULL DEFAULT 60,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (product_id, batch_number)
	)`,
	`CREATE TABLE IF NOT EXISTS sales_transactions (
		id             UUID PRIMARY KEY,
		receipt_number TEXT NOT NULL UNIQUE,
		client_name    TEXT NOT NULL,
		total_amount   NUMERIC(12,2) NOT NULL,
		user_id        UUID NOT NULL REFERENCES users(id),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_created ON sales_transactions (created_at)`,
	`CREATE TABLE IF NOT EXISTS sale_items (
		id             UUID PRIMARY KEY,
		transaction_id UUID NOT NULL REFERENCES sales_transactions(id) ON DELETE CASCADE,
		batch_id       UUID NOT NULL REFERENCES batches(id),
		quantity       INT NOT NULL CHECK (quantity > 0),
		unit_price     NUMERIC(12,2) NOT NULL,
		subtotal       NUMERIC(12,2) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS prescription_details (
		id                  UUID PRIMARY KEY,
		transaction_id      UUID NOT NULL UNIQUE REFERENCES sales_transactions(id) ON DELETE CASCADE,
		patient_age         TEXT NOT NULL DEFAULT '',
		patient_sex         TEXT NOT NULL DEFAULT '',
		prescriber_name     TEXT NOT NULL DEFAULT '',
		medical_institution TEXT NOT NULL DEFAULT '',
		dosage_instructions TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS movements (
		id             UUID PRIMARY KEY,
		seq            BIGSERIAL NOT NULL,
		batch_id       UUID NOT NULL REFERENCES batches(id) ON DELETE RESTRICT,
		type           TEXT NOT NULL CHECK (type IN ('RECEIVE', 'SALE', 'RECONCILE')),
		delta          INT NOT NULL,
		reason         TEXT NOT NULL DEFAULT '',
		user_id        UUID NOT NULL REFERENCES users(id),
		transaction_id UUID REFERENCES sales_transactions(id),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// seq desempata movimientos con el mismo created_at (todas las líneas de una venta) en orden de inserción.
	`ALTER TABLE movements ADD COLUMN IF NOT EXISTS seq BIGSERIAL NOT NULL`,
	`DROP INDEX IF EXISTS idx_movements_batch`,
	`DROP INDEX IF EXISTS idx_movements_created`,
	`CREATE INDEX IF NOT EXISTS idx_movements_batch_seq ON movements (batch_id, created_at, seq)`,
	`CREATE INDEX IF NOT EXISTS idx_movements_created_seq ON movements (created_at, seq)`,
}

// Migrate aplica el esquema. Se ejecuta al arrancar si DB_AUTO_MIGRATE=true.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
