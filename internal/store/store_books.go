package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateBook inserts a new book and returns it.
func (s *Store) CreateBook(ctx context.Context, title string) (*Book, error) {
	if title == "" {
		return nil, errors.New("book title is required")
	}
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO books (title, created_at) VALUES (?, ?)`,
		title,
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Book{ID: id, Title: title, CreatedAt: now}, nil
}

// GetBook fetches a book by identifier. Returns nil when not found.
func (s *Store) GetBook(ctx context.Context, id int64) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, created_at FROM books WHERE id = ?`, id)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// FindBookByTitle returns the first book matching a title, or nil.
func (s *Store) FindBookByTitle(ctx context.Context, title string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, title, created_at FROM books WHERE title = ? ORDER BY id LIMIT 1`, title)
	book, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find book by title: %w", err)
	}
	return book, nil
}

// ListBooks returns all books ordered by creation time.
func (s *Store) ListBooks(ctx context.Context) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, created_at FROM books ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func scanBook(scanner interface{ Scan(dest ...any) error }) (*Book, error) {
	var (
		id         int64
		title      string
		createdRaw sql.NullString
	)
	if err := scanner.Scan(&id, &title, &createdRaw); err != nil {
		return nil, err
	}
	book := &Book{ID: id, Title: title}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		book.CreatedAt = created
	}
	return book, nil
}
