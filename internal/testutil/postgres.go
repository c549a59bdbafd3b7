// Package testutil starts a migrated PostgreSQL container for integration
// tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
}

// SetupTestDB starts PostgreSQL, applies the migrations and returns a pool.
// The container is terminated when the test finishes. Skipped under -short.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := migrate.Apply(ctx, pool, logger); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}

	return &TestDB{Container: container, Pool: pool}
}

// Truncate empties every application table and resets identities.
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()

	_, err := db.Pool.Exec(context.Background(),
		`TRUNCATE notifications, payments, order_items, orders, cart_items, products RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

// Product describes a row for SeedProduct.
type Product struct {
	SKU           string
	Title         string
	Price         string
	DiscountPrice string
	Stock         int
	Inactive      bool
}

// SeedProduct inserts p and returns its id.
func (db *TestDB) SeedProduct(t *testing.T, p Product) int64 {
	t.Helper()

	if p.SKU == "" {
		p.SKU = fmt.Sprintf("SKU-%d", time.Now().UnixNano())
	}
	if p.Title == "" {
		p.Title = p.SKU
	}

	discount := decimal.NullDecimal{}
	if p.DiscountPrice != "" {
		discount = decimal.NewNullDecimal(decimal.RequireFromString(p.DiscountPrice))
	}

	var id int64
	err := db.Pool.QueryRow(context.Background(), `
		INSERT INTO products (sku, title, slug, price, discount_price, stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.SKU, p.Title, p.SKU, decimal.RequireFromString(p.Price), discount, p.Stock, !p.Inactive).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", p.SKU, err)
	}
	return id
}

// Stock returns the current stock of a product.
func (db *TestDB) Stock(t *testing.T, productID int64) int {
	t.Helper()

	var stock int
	if err := db.Pool.QueryRow(context.Background(), `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock of product %d: %v", productID, err)
	}
	return stock
}

// Count returns the number of rows in table.
func (db *TestDB) Count(t *testing.T, table string) int {
	t.Helper()

	var n int
	if err := db.Pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
