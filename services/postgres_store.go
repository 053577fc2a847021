package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Shkulipa/auction-contract/auction"
)

// PostgresStore implements auction.Store with PostgreSQL persistence.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection pool for the given DSN and runs the
// schema migration.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS auctions (
		id BIGINT PRIMARY KEY,
		seller TEXT NOT NULL,
		item TEXT NOT NULL,
		starting_price BIGINT NOT NULL,
		discount_rate BIGINT NOT NULL,
		start_at BIGINT NOT NULL,
		end_at BIGINT NOT NULL,
		final_price BIGINT NOT NULL DEFAULT 0,
		stopped BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_auctions_stopped ON auctions(stopped);
	CREATE INDEX IF NOT EXISTS idx_auctions_end_at ON auctions(end_at);
	`

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append stores the auction under the next sequential id. The id is
// allocated inside the insert itself, so concurrent appends cannot collide
// or leave gaps.
func (s *PostgresStore) Append(ctx context.Context, a *auction.Auction) (auction.ID, error) {
	query := `
	INSERT INTO auctions (id, seller, item, starting_price, discount_rate, start_at, end_at)
	SELECT COALESCE(MAX(id) + 1, 0), $1, $2, $3, $4, $5, $6 FROM auctions
	RETURNING id
	`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		string(a.Seller),
		a.Item,
		int64(a.StartingPrice),
		int64(a.DiscountRate),
		a.StartAt,
		a.EndAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting auction: %w", err)
	}
	return auction.ID(id), nil
}

// Get returns the auction with the given id.
func (s *PostgresStore) Get(ctx context.Context, id auction.ID) (*auction.Auction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seller, item, starting_price, discount_rate, start_at, end_at, final_price, stopped
		FROM auctions WHERE id = $1
	`, int64(id))

	a, err := scanAuction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auction.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning auction: %w", err)
	}
	return a, nil
}

// List returns all auctions in id order.
func (s *PostgresStore) List(ctx context.Context) ([]auction.Auction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seller, item, starting_price, discount_rate, start_at, end_at, final_price, stopped
		FROM auctions ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []auction.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning auction: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// MarkSettled flips the stopped flag and records the final price. The
// conditional update makes settlement exclusive at the database level: of
// two concurrent attempts, exactly one matches stopped = FALSE.
func (s *PostgresStore) MarkSettled(ctx context.Context, id auction.ID, finalPrice auction.Amount) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE auctions SET final_price = $2, stopped = TRUE
		WHERE id = $1 AND stopped = FALSE
	`, int64(id), int64(finalPrice))
	if err != nil {
		return fmt.Errorf("updating auction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Nothing matched: either the id is unknown or the auction already
	// settled. Distinguish for the caller.
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return auction.ErrStopped
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (*auction.Auction, error) {
	var (
		a             auction.Auction
		id            int64
		seller        string
		startingPrice int64
		discountRate  int64
		finalPrice    int64
	)
	err := row.Scan(&id, &seller, &a.Item, &startingPrice, &discountRate, &a.StartAt, &a.EndAt, &finalPrice, &a.Stopped)
	if err != nil {
		return nil, err
	}
	a.ID = auction.ID(id)
	a.Seller = auction.AccountID(seller)
	a.StartingPrice = auction.Amount(startingPrice)
	a.DiscountRate = auction.Amount(discountRate)
	a.FinalPrice = auction.Amount(finalPrice)
	return &a, nil
}
