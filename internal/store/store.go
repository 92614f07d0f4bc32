// Package store is a SQLite product catalog that serves the gateway
// contract locally, so the TUI runs without a storefront backend.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/shelf/internal/gateway"
	_ "modernc.org/sqlite"
)

// DefaultPageSize is the number of reviews per feed page.
const DefaultPageSize = 5

// searchLimit caps the suggestions returned by Search.
const searchLimit = 20

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	pageSize int
}

// Product is a catalog entry.
type Product struct {
	ID         string
	Name       string
	Picture    string
	Categories []string
}

// Review is a stored review of a product.
type Review struct {
	ID           string
	ProductID    string
	Rating       int
	Title        string
	Body         string
	Author       string
	CreatedAt    time.Time
	HelpfulCount int
	Recommended  bool
}

var _ gateway.Gateway = (*Store)(nil)

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// Shared cache so every pooled connection sees the same database.
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db, pageSize: DefaultPageSize}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// SetPageSize changes the feed page size. Values below 1 are ignored.
func (s *Store) SetPageSize(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.pageSize = n
	s.mu.Unlock()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		picture TEXT,
		categories TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL REFERENCES products(id),
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		title TEXT NOT NULL,
		body TEXT,
		author TEXT,
		created_at DATETIME NOT NULL,
		helpful_count INTEGER NOT NULL DEFAULT 0,
		recommended INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);
	CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_reviews_rating ON reviews(product_id, rating);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveProducts stores products, returning the count of new rows.
// Existing ids are left untouched.
func (s *Store) SaveProducts(products []Product) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(products) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO products (id, name, picture, categories) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, p := range products {
		cats, err := json.Marshal(nonNil(p.Categories))
		if err != nil {
			return 0, fmt.Errorf("encode categories for %s: %w", p.ID, err)
		}
		res, err := stmt.Exec(p.ID, p.Name, p.Picture, string(cats))
		if err != nil {
			return 0, fmt.Errorf("insert product %s: %w", p.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			newCount++
		}
	}
	return newCount, tx.Commit()
}

// SaveReviews stores reviews, returning the count of new rows.
func (s *Store) SaveReviews(reviews []Review) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(reviews) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO reviews (
			id, product_id, rating, title, body, author, created_at, helpful_count, recommended
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	newCount := 0
	for _, r := range reviews {
		res, err := stmt.Exec(r.ID, r.ProductID, r.Rating, r.Title, r.Body, r.Author,
			r.CreatedAt.UTC(), r.HelpfulCount, boolToInt(r.Recommended))
		if err != nil {
			return 0, fmt.Errorf("insert review %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			newCount++
		}
	}
	return newCount, tx.Commit()
}

// Search returns products whose name or categories contain text,
// case-insensitively, ordered by name.
func (s *Store) Search(ctx context.Context, text string) ([]gateway.ResultItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pattern := "%" + escapeLike(strings.ToLower(strings.TrimSpace(text))) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, picture, categories
		FROM products
		WHERE lower(name) LIKE ? ESCAPE '\' OR lower(categories) LIKE ? ESCAPE '\'
		ORDER BY name
		LIMIT ?
	`, pattern, pattern, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	var items []gateway.ResultItem
	for rows.Next() {
		var it gateway.ResultItem
		var picture sql.NullString
		var cats string
		if err := rows.Scan(&it.ID, &it.DisplayName, &picture, &cats); err != nil {
			return nil, err
		}
		it.ThumbnailRef = picture.String
		if err := json.Unmarshal([]byte(cats), &it.Categories); err != nil {
			return nil, fmt.Errorf("decode categories for %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// FetchFeedPage returns one page of reviews for q.SubjectID.
func (s *Store) FetchFeedPage(ctx context.Context, q gateway.Query) (gateway.FeedPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page := q.Page
	if page < 1 {
		page = 1
	}

	query := `
		SELECT id, rating, title, body, author, created_at, helpful_count
		FROM reviews
		WHERE product_id = ?`
	args := []any{q.SubjectID}
	if q.Filter.Active() {
		query += ` AND rating = ?`
		args = append(args, int(q.Filter))
	}
	query += ` ORDER BY ` + orderBy(q.Sort) + ` LIMIT ? OFFSET ?`
	// One extra row tells us whether another page exists.
	args = append(args, s.pageSize+1, (page-1)*s.pageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return gateway.FeedPage{}, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	var out gateway.FeedPage
	for rows.Next() {
		var it gateway.FeedItem
		var body, author sql.NullString
		if err := rows.Scan(&it.ID, &it.Rating, &it.Title, &body, &author, &it.CreatedAt, &it.HelpfulCount); err != nil {
			return gateway.FeedPage{}, err
		}
		it.Body, it.Author = body.String, author.String
		out.Reviews = append(out.Reviews, it)
	}
	if err := rows.Err(); err != nil {
		return gateway.FeedPage{}, err
	}

	if len(out.Reviews) > s.pageSize {
		out.Reviews = out.Reviews[:s.pageSize]
		out.HasMore = true
	}
	return out, nil
}

// MarkHelpful increments a review's helpful count.
func (s *Store) MarkHelpful(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE reviews SET helpful_count = helpful_count + 1 WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("mark helpful %s: %w", itemID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("review %s: %w", itemID, gateway.ErrNotFound)
	}
	return nil
}

// FetchStats aggregates the reviews of a product.
func (s *Store) FetchStats(ctx context.Context, subjectID string) (gateway.StatsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE id = ?", subjectID).Scan(&exists)
	if err != nil {
		return gateway.StatsSnapshot{}, fmt.Errorf("lookup product: %w", err)
	}
	if exists == 0 {
		return gateway.StatsSnapshot{}, fmt.Errorf("product %s: %w", subjectID, gateway.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rating, COUNT(*), SUM(recommended)
		FROM reviews
		WHERE product_id = ?
		GROUP BY rating
	`, subjectID)
	if err != nil {
		return gateway.StatsSnapshot{}, fmt.Errorf("aggregate reviews: %w", err)
	}
	defer rows.Close()

	snap := gateway.StatsSnapshot{Distribution: make(map[int]int, 5)}
	sum, recommended := 0, 0
	for rows.Next() {
		var rating, count, rec int
		if err := rows.Scan(&rating, &count, &rec); err != nil {
			return gateway.StatsSnapshot{}, err
		}
		snap.Distribution[rating] = count
		snap.Total += count
		sum += rating * count
		recommended += rec
	}
	if err := rows.Err(); err != nil {
		return gateway.StatsSnapshot{}, err
	}

	if snap.Total > 0 {
		snap.Average = float64(sum) / float64(snap.Total)
		snap.RecommendedPct = float64(recommended) / float64(snap.Total) * 100
	}
	return snap, nil
}

// orderBy maps a sort option onto a fixed ORDER BY clause. Never built from
// user input.
func orderBy(s gateway.Sort) string {
	switch s {
	case gateway.SortHighest:
		return "rating DESC, created_at DESC, id"
	case gateway.SortLowest:
		return "rating ASC, created_at DESC, id"
	case gateway.SortMostHelpful:
		return "helpful_count DESC, created_at DESC, id"
	default:
		return "created_at DESC, id"
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
