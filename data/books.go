package data

import (
	"math"
	"time"

	"github.com/triill/shelf/internal/validator"
)

// Book genres. The genre set is closed: new genres are added here and
// nowhere else.
const (
	GenreRomance     = "Romance"
	GenreDarkRomance = "Dark Romance"
	GenreFantasy     = "Fantasy"
	GenreHorror      = "Horror"
)

// Reading statuses. A book marked read must carry a rating.
const (
	StatusUnread = "unread"
	StatusRead   = "read"
	StatusDNF    = "dnf"
)

// Book formats.
const (
	FormatPhysical = "physical"
	FormatKindle   = "kindle"
	FormatBoth     = "both"
)

// MaxRating is the top of the rating scale. Ratings run from 0.5 to
// MaxRating in half-star steps.
const MaxRating float64 = 5

var (
	Genres   = []string{GenreRomance, GenreDarkRomance, GenreFantasy, GenreHorror}
	Statuses = []string{StatusUnread, StatusRead, StatusDNF}
	Formats  = []string{FormatPhysical, FormatKindle, FormatBoth}
)

// Book defines a book record. ID and DateAdded are assigned at creation
// and never change afterwards; UpdatedAt is refreshed on every update.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	Genre         string    `json:"genre"`
	Status        string    `json:"status"`
	Format        string    `json:"format"`
	Rating        *float64  `json:"rating,omitempty"`
	Description   string    `json:"description,omitempty"`
	PublishedDate string    `json:"publishedDate,omitempty"`
	Publisher     string    `json:"publisher,omitempty"`
	PageCount     int32     `json:"pageCount,omitempty"`
	Categories    []string  `json:"categories,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Language      string    `json:"language,omitempty"`
	PreviewLink   string    `json:"previewLink,omitempty"`
	DateAdded     time.Time `json:"dateAdded"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Version       int32     `json:"-"`
}

// BookStats holds the collection counts returned by the stats endpoint.
// The same predicates back the client-side recomputation, so the two
// sets of numbers cannot drift.
type BookStats struct {
	TotalBooks    int64 `json:"totalBooks"`
	ReadBooks     int64 `json:"readBooks"`
	FiveStarBooks int64 `json:"fiveStarBooks"`
	UnreadBooks   int64 `json:"unreadBooks"`
}

// BookFilters holds the optional list filters. A nil Rating means no
// rating filter.
type BookFilters struct {
	Genre  string
	Status string
	Rating *float64
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 500, "title", "must not be more than 500 bytes long")
	v.Check(len(book.Authors) >= 1, "authors", "must contain at least 1 author")
	v.Check(len(book.Authors) <= 10, "authors", "must not contain more than 10 authors")
	v.Check(validator.Unique(book.Authors), "authors", "must not contain duplicate values")
	for _, author := range book.Authors {
		v.Check(author != "", "authors", "must not contain empty entries")
	}
	v.Check(validator.In(book.Genre, Genres...), "genre", "must be a supported genre")
	v.Check(validator.In(book.Status, Statuses...), "status", "must be one of unread, read or dnf")
	v.Check(validator.In(book.Format, Formats...), "format", "must be one of physical, kindle or both")
	if book.Rating != nil {
		v.Check(ValidRating(*book.Rating), "rating", "must be between 0.5 and 5 in half-star steps")
	}
	if book.Status == StatusRead {
		v.Check(book.Rating != nil, "rating", "must be provided for read books")
	}
	v.Check(len(book.Description) <= 5000, "description", "must not be more than 5000 bytes long")
	v.Check(book.PageCount >= 0, "pageCount", "must not be negative")
	v.Check(validator.Unique(book.Categories), "categories", "must not contain duplicate values")
}

// ValidRating reports whether r sits on the half-star scale.
func ValidRating(r float64) bool {
	return r >= 0.5 && r <= MaxRating && math.Mod(r*2, 1) == 0
}
