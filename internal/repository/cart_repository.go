package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// ListByUser returns the user's cart lines in insertion order.
func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]model.CartLine, error) {
	query := `
		SELECT id, user_id, product_id, variant_id, quantity, created_at
		FROM cart_items
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query cart")
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProductID, &l.VariantID, &l.Quantity, &l.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart row")
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart rows")
		return nil, fmt.Errorf("error iterating cart: %w", err)
	}

	return lines, nil
}

// Replace deletes the user's cart and inserts lines in one transaction.
func (r *cartRepository) Replace(ctx context.Context, userID int64, lines []model.CartLine) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = r.ClearByUser(ctx, tx, userID); err != nil {
		return err
	}

	if len(lines) > 0 {
		batch := &pgx.Batch{}
		for _, l := range lines {
			batch.Queue(`
				INSERT INTO cart_items (user_id, product_id, variant_id, quantity)
				VALUES ($1, $2, $3, $4)
			`, userID, l.ProductID, l.VariantID, l.Quantity)
		}

		results := tx.SendBatch(ctx, batch)
		for i := range lines {
			if _, err = results.Exec(); err != nil {
				results.Close()
				r.logger.Error().
					Err(err).
					Int64("user_id", userID).
					Int64("product_id", lines[i].ProductID).
					Msg("failed to insert cart line")
				return fmt.Errorf("failed to insert cart line: %w", err)
			}
		}
		if err = results.Close(); err != nil {
			return fmt.Errorf("failed to insert cart lines: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to commit cart sync")
		return fmt.Errorf("failed to commit cart sync: %w", err)
	}

	r.logger.Debug().
		Int64("user_id", userID).
		Int("count", len(lines)).
		Msg("cart replaced")

	return nil
}

// ClearByUser deletes the user's cart lines within the provided transaction.
func (r *cartRepository) ClearByUser(ctx context.Context, tx pgx.Tx, userID int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
