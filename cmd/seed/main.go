// File: cmd/seed/main.go
//
// Creates the schema and optionally seeds an admin profile:
//
//	go run ./cmd/seed -dsn postgres://... -admin-id <identity user id> -admin-email admin@example.com
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id                TEXT PRIMARY KEY,
    email                  TEXT NOT NULL UNIQUE,
    username               TEXT UNIQUE,
    role                   TEXT NOT NULL DEFAULT 'user',
    membership_type        TEXT NOT NULL DEFAULT 'free',
    membership_expires_at  TIMESTAMPTZ,
    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS payment_orders (
    id                TEXT PRIMARY KEY,
    order_id          TEXT NOT NULL UNIQUE,
    user_id           TEXT NOT NULL REFERENCES profiles(user_id),
    amount_fen        BIGINT NOT NULL CHECK (amount_fen > 0),
    plan              TEXT NOT NULL,
    status            TEXT NOT NULL DEFAULT 'pending'
                      CHECK (status IN ('pending','completed','failed')),
    gateway_trade_id  TEXT,
    subject           TEXT,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_payment_orders_user ON payment_orders(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_payment_orders_status ON payment_orders(status);
`

func main() {
	var dsn, adminID, adminEmail string
	flag.StringVar(&dsn, "dsn", "", "postgres connection string")
	flag.StringVar(&adminID, "admin-id", "", "identity user id to grant the admin role")
	flag.StringVar(&adminEmail, "admin-email", "", "email for the admin profile")
	flag.Parse()

	if dsn == "" {
		log.Fatal("-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")

	if adminID != "" && adminEmail != "" {
		const q = `
INSERT INTO profiles (user_id, email, role, membership_type)
VALUES ($1, $2, 'admin', 'lifetime')
ON CONFLICT (user_id) DO UPDATE SET role='admin';`
		if _, err := pool.Exec(ctx, q, adminID, adminEmail); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		log.Printf("admin profile ensured for %s", adminEmail)
	}
}
