package dto

import (
	"encoding/json"

	"github.com/triill/shelf/data"
)

// CreateBookRequest defines the request body for CreateBook. It carries
// every record field except the server-assigned id and timestamps.
type CreateBookRequest struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Genre         string   `json:"genre"`
	Status        string   `json:"status"`
	Format        string   `json:"format"`
	Rating        *float64 `json:"rating"`
	Description   string   `json:"description"`
	PublishedDate string   `json:"publishedDate"`
	Publisher     string   `json:"publisher"`
	PageCount     int32    `json:"pageCount"`
	Categories    []string `json:"categories"`
	ImageURL      string   `json:"imageUrl"`
	Language      string   `json:"language"`
	PreviewLink   string   `json:"previewLink"`
}

// UpdateBookRequest defines the request body for UpdateBook. Every field
// is wrapped in Optional so that only the fields present in the body are
// merged, and an explicit null clears the stored value.
type UpdateBookRequest struct {
	Title         Optional[string]   `json:"title"`
	Authors       Optional[[]string] `json:"authors"`
	Genre         Optional[string]   `json:"genre"`
	Status        Optional[string]   `json:"status"`
	Format        Optional[string]   `json:"format"`
	Rating        Optional[float64]  `json:"rating"`
	Description   Optional[string]   `json:"description"`
	PublishedDate Optional[string]   `json:"publishedDate"`
	Publisher     Optional[string]   `json:"publisher"`
	PageCount     Optional[int32]    `json:"pageCount"`
	Categories    Optional[[]string] `json:"categories"`
	ImageURL      Optional[string]   `json:"imageUrl"`
	Language      Optional[string]   `json:"language"`
	PreviewLink   Optional[string]   `json:"previewLink"`
}

// MarshalJSON serializes only the fields that are set, so a request
// built programmatically keeps the same absent/null/value distinction
// the server reads on the way in.
func (r UpdateBookRequest) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{})
	put := func(key string, set, valid bool, value interface{}) {
		if !set {
			return
		}
		if !valid {
			body[key] = nil
			return
		}
		body[key] = value
	}
	put("title", r.Title.Set, r.Title.Valid, r.Title.Value)
	put("authors", r.Authors.Set, r.Authors.Valid, r.Authors.Value)
	put("genre", r.Genre.Set, r.Genre.Valid, r.Genre.Value)
	put("status", r.Status.Set, r.Status.Valid, r.Status.Value)
	put("format", r.Format.Set, r.Format.Valid, r.Format.Value)
	put("rating", r.Rating.Set, r.Rating.Valid, r.Rating.Value)
	put("description", r.Description.Set, r.Description.Valid, r.Description.Value)
	put("publishedDate", r.PublishedDate.Set, r.PublishedDate.Valid, r.PublishedDate.Value)
	put("publisher", r.Publisher.Set, r.Publisher.Valid, r.Publisher.Value)
	put("pageCount", r.PageCount.Set, r.PageCount.Valid, r.PageCount.Value)
	put("categories", r.Categories.Set, r.Categories.Valid, r.Categories.Value)
	put("imageUrl", r.ImageURL.Set, r.ImageURL.Valid, r.ImageURL.Value)
	put("language", r.Language.Set, r.Language.Valid, r.Language.Value)
	put("previewLink", r.PreviewLink.Set, r.PreviewLink.Valid, r.PreviewLink.Value)
	return json.Marshal(body)
}

// QsListBooks defines the query strings used for listing books.
type QsListBooks struct {
	Filters data.BookFilters
}
