package client

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/triill/shelf/data"
	"github.com/triill/shelf/data/dto"
)

// Fetch replaces the local collection with the server's list. The
// loading flag is raised for the duration of the request.
func (c *Client) Fetch(ctx context.Context) error {
	c.setLoading(true)
	defer c.setLoading(false)

	var books []data.Book
	if err := c.do(ctx, http.MethodGet, "/v1/books", nil, &books); err != nil {
		return err
	}
	sortByTitle(books)

	c.mu.Lock()
	c.books = books
	c.mu.Unlock()
	return nil
}

// Loading reports whether a Fetch is in flight.
func (c *Client) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Client) setLoading(v bool) {
	c.mu.Lock()
	c.loading = v
	c.mu.Unlock()
}

// Add creates the book on the server and inserts the returned record
// into the local list at its sorted position. On failure the local
// state is untouched.
func (c *Client) Add(ctx context.Context, body dto.CreateBookRequest) (data.Book, error) {
	var book data.Book
	if err := c.do(ctx, http.MethodPost, "/v1/books", body, &book); err != nil {
		return data.Book{}, err
	}

	c.mu.Lock()
	c.books = append(c.books, book)
	sortByTitle(c.books)
	c.mu.Unlock()
	return book, nil
}

// Update patches the book on the server and replaces the matching local
// record with the returned one, re-sorting in case the title changed.
func (c *Client) Update(ctx context.Context, bookID string, body dto.UpdateBookRequest) (data.Book, error) {
	var book data.Book
	if err := c.do(ctx, http.MethodPatch, "/v1/books/"+bookID, body, &book); err != nil {
		return data.Book{}, err
	}

	c.mu.Lock()
	for i := range c.books {
		if c.books[i].ID == book.ID {
			c.books[i] = book
			break
		}
	}
	sortByTitle(c.books)
	c.mu.Unlock()
	return book, nil
}

// Remove deletes the book on the server and drops it from the local
// list.
func (c *Client) Remove(ctx context.Context, bookID string) error {
	if err := c.do(ctx, http.MethodDelete, "/v1/books/"+bookID, nil, nil); err != nil {
		return err
	}

	c.mu.Lock()
	filtered := c.books[:0]
	for _, b := range c.books {
		if b.ID != bookID {
			filtered = append(filtered, b)
		}
	}
	c.books = filtered
	c.mu.Unlock()
	return nil
}

// sortByTitle orders books case-insensitively by title, then by id so
// that equal titles have a stable order.
func sortByTitle(books []data.Book) {
	sort.SliceStable(books, func(i, j int) bool {
		ti := strings.ToLower(books[i].Title)
		tj := strings.ToLower(books[j].Title)
		if ti != tj {
			return ti < tj
		}
		return books[i].ID < books[j].ID
	})
}
