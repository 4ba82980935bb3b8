package client

import (
	"sort"
	"strings"

	"github.com/triill/shelf/data"
)

// AuthorGroup is one section of the grouped view: a primary author and
// their books ordered by title.
type AuthorGroup struct {
	Author string
	Books  []data.Book
}

// Filter narrows a view after the search query has been applied. Zero
// values leave the corresponding dimension unfiltered.
type Filter struct {
	Genre    string
	Status   string
	FiveStar bool
}

// Books returns a copy of the local collection, ordered by title.
func (c *Client) Books() []data.Book {
	return c.snapshot()
}

// GroupedByAuthor returns the collection grouped by primary author.
// Groups are ordered by author name and books by title within each
// group.
func (c *Client) GroupedByAuthor() []AuthorGroup {
	return groupByAuthor(c.snapshot())
}

// Search returns the grouped view narrowed to books whose title or any
// author contains the query, case-insensitively. A blank query returns
// the full grouped view.
func (c *Client) Search(query string) []AuthorGroup {
	return groupByAuthor(searchBooks(c.snapshot(), query))
}

// Query composes a search with predicate filters, in that order, and
// groups the result by author.
func (c *Client) Query(query string, filter Filter) []AuthorGroup {
	books := searchBooks(c.snapshot(), query)
	filtered := books[:0]
	for _, b := range books {
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.FiveStar && !isFiveStar(b) {
			continue
		}
		filtered = append(filtered, b)
	}
	return groupByAuthor(filtered)
}

// Stats recomputes the collection counters from the local list, using
// the same predicates the server uses.
func (c *Client) Stats() data.BookStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stats data.BookStats
	stats.TotalBooks = int64(len(c.books))
	for _, b := range c.books {
		if b.Status == data.StatusRead {
			stats.ReadBooks++
		}
		if b.Status == data.StatusUnread {
			stats.UnreadBooks++
		}
		if isFiveStar(b) {
			stats.FiveStarBooks++
		}
	}
	return stats
}

func (c *Client) snapshot() []data.Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	books := make([]data.Book, len(c.books))
	copy(books, c.books)
	return books
}

func isFiveStar(b data.Book) bool {
	return b.Rating != nil && *b.Rating == data.MaxRating
}

func primaryAuthor(b data.Book) string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

func searchBooks(books []data.Book, query string) []data.Book {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return books
	}
	matched := books[:0]
	for _, b := range books {
		if bookMatches(b, query) {
			matched = append(matched, b)
		}
	}
	return matched
}

func bookMatches(b data.Book, query string) bool {
	if strings.Contains(strings.ToLower(b.Title), query) {
		return true
	}
	for _, author := range b.Authors {
		if strings.Contains(strings.ToLower(author), query) {
			return true
		}
	}
	return false
}

// groupByAuthor expects books ordered by title; the stable sort on
// author then preserves title order within each group.
func groupByAuthor(books []data.Book) []AuthorGroup {
	sorted := make([]data.Book, len(books))
	copy(sorted, books)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(primaryAuthor(sorted[i])) < strings.ToLower(primaryAuthor(sorted[j]))
	})

	var groups []AuthorGroup
	for _, b := range sorted {
		author := primaryAuthor(b)
		if n := len(groups); n > 0 && strings.EqualFold(groups[n-1].Author, author) {
			groups[n-1].Books = append(groups[n-1].Books, b)
			continue
		}
		groups = append(groups, AuthorGroup{Author: author, Books: []data.Book{b}})
	}
	return groups
}
