package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/triill/shelf/data"
)

type books interface {
	CreateBook(book *data.Book) error
	GetBook(bookID string) (*data.Book, error)
	GetAllBooks(filters data.BookFilters) ([]*data.Book, error)
	BookExists(title string, authors []string) (bool, error)
	UpdateBook(book *data.Book) error
	DeleteBook(bookID string) error
	GetBookStats() (data.BookStats, error)
}

// CreateBook inserts a book record. The record id is assigned here and
// the database fills in both timestamps and the initial version.
func (r *repository) CreateBook(book *data.Book) error {
	query := `
		INSERT INTO books (id, title, authors, genre, status, format, rating, description, published_date, publisher, page_count, categories, image_url, language, preview_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING date_added, updated_at, version`
	book.ID = uuid.New().String()
	args := []interface{}{
		book.ID,
		book.Title,
		pq.Array(book.Authors),
		book.Genre,
		book.Status,
		book.Format,
		book.Rating,
		book.Description,
		book.PublishedDate,
		book.Publisher,
		book.PageCount,
		pq.Array(book.Categories),
		book.ImageURL,
		book.Language,
		book.PreviewLink,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.db.QueryRowContext(ctx, query, args...).Scan(&book.DateAdded, &book.UpdatedAt, &book.Version)
}

func (r *repository) GetBook(bookID string) (*data.Book, error) {
	if bookID == "" {
		return nil, ErrRecordNotFound
	}
	query := `
		SELECT id, title, authors, genre, status, format, rating, description, published_date, publisher, page_count, categories, image_url, language, preview_link, date_added, updated_at, version
		FROM books
		WHERE id = $1`
	var book data.Book
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID,
		&book.Title,
		pq.Array(&book.Authors),
		&book.Genre,
		&book.Status,
		&book.Format,
		&book.Rating,
		&book.Description,
		&book.PublishedDate,
		&book.Publisher,
		&book.PageCount,
		pq.Array(&book.Categories),
		&book.ImageURL,
		&book.Language,
		&book.PreviewLink,
		&book.DateAdded,
		&book.UpdatedAt,
		&book.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAllBooks lists books matching the optional genre/status/rating
// filters, ordered by title ascending (case-insensitive) with id as the
// tiebreak. An empty filter value matches every record.
func (r *repository) GetAllBooks(filters data.BookFilters) ([]*data.Book, error) {
	query := `
		SELECT id, title, authors, genre, status, format, rating, description, published_date, publisher, page_count, categories, image_url, language, preview_link, date_added, updated_at, version
		FROM books
		WHERE (genre = $1 OR $1 = '')
		AND (status = $2 OR $2 = '')
		AND (rating = $3 OR $3::numeric IS NULL)
		ORDER BY lower(title) ASC, id ASC`
	var rating sql.NullFloat64
	if filters.Rating != nil {
		rating = sql.NullFloat64{Float64: *filters.Rating, Valid: true}
	}
	args := []interface{}{filters.Genre, filters.Status, rating}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := rows.Scan(
			&book.ID,
			&book.Title,
			pq.Array(&book.Authors),
			&book.Genre,
			&book.Status,
			&book.Format,
			&book.Rating,
			&book.Description,
			&book.PublishedDate,
			&book.Publisher,
			&book.PageCount,
			pq.Array(&book.Categories),
			&book.ImageURL,
			&book.Language,
			&book.PreviewLink,
			&book.DateAdded,
			&book.UpdatedAt,
			&book.Version,
		)
		if err != nil {
			return nil, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// BookExists reports whether a record with the same title
// (case-insensitive) and at least one shared author (case-insensitive)
// is already in the collection.
func (r *repository) BookExists(title string, authors []string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM books
			WHERE lower(title) = lower($1)
			AND EXISTS (
				SELECT 1
				FROM unnest(books.authors) AS a
				JOIN unnest($2::text[]) AS b ON lower(a) = lower(b)
			)
		)`
	var exists bool
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, title, pq.Array(authors)).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) UpdateBook(book *data.Book) error {
	query := `
		UPDATE books
		SET title = $1, authors = $2, genre = $3, status = $4, format = $5, rating = $6, description = $7, published_date = $8,
		publisher = $9, page_count = $10, categories = $11, image_url = $12, language = $13, preview_link = $14,
		updated_at = clock_timestamp(), version = version + 1
		WHERE id = $15 AND version = $16
		RETURNING updated_at, version`
	args := []interface{}{
		book.Title,
		pq.Array(book.Authors),
		book.Genre,
		book.Status,
		book.Format,
		book.Rating,
		book.Description,
		book.PublishedDate,
		book.Publisher,
		book.PageCount,
		pq.Array(book.Categories),
		book.ImageURL,
		book.Language,
		book.PreviewLink,
		book.ID,
		book.Version,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&book.UpdatedAt, &book.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}
	return nil
}

func (r *repository) DeleteBook(bookID string) error {
	if bookID == "" {
		return ErrRecordNotFound
	}
	query := `
		DELETE FROM books
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, bookID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// GetBookStats computes the collection counts with a single aggregate
// query rather than loading rows into memory.
func (r *repository) GetBookStats() (data.BookStats, error) {
	query := `
		SELECT count(*),
			count(*) FILTER (WHERE status = $1),
			count(*) FILTER (WHERE rating = $2),
			count(*) FILTER (WHERE status = $3)
		FROM books`
	var stats data.BookStats
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, data.StatusRead, data.MaxRating, data.StatusUnread).Scan(
		&stats.TotalBooks,
		&stats.ReadBooks,
		&stats.FiveStarBooks,
		&stats.UnreadBooks,
	)
	if err != nil {
		return data.BookStats{}, err
	}
	return stats, nil
}
