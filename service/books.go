package service

import (
	"errors"

	"github.com/jellydator/ttlcache/v3"
	"github.com/triill/shelf/data"
	"github.com/triill/shelf/data/dto"
	"github.com/triill/shelf/internal/validator"
	"github.com/triill/shelf/repository"
)

const statsCacheKey = "bookStats"

type books interface {
	CreateBook(requestBody dto.CreateBookRequest) (*data.Book, error)
	GetBook(bookID string) (*data.Book, error)
	ListBooks(filters data.BookFilters) ([]*data.Book, error)
	UpdateBook(bookID string, requestBody dto.UpdateBookRequest) (*data.Book, error)
	DeleteBook(bookID string) error
	GetBookStats() (data.BookStats, error)
}

// CreateBook service validates a new book, enforces the duplicate
// policy and persists the record.
func (s *service) CreateBook(requestBody dto.CreateBookRequest) (*data.Book, error) {
	book := &data.Book{
		Title:         requestBody.Title,
		Authors:       requestBody.Authors,
		Genre:         requestBody.Genre,
		Status:        requestBody.Status,
		Format:        requestBody.Format,
		Rating:        requestBody.Rating,
		Description:   requestBody.Description,
		PublishedDate: requestBody.PublishedDate,
		Publisher:     requestBody.Publisher,
		PageCount:     requestBody.PageCount,
		Categories:    requestBody.Categories,
		ImageURL:      requestBody.ImageURL,
		Language:      requestBody.Language,
		PreviewLink:   requestBody.PreviewLink,
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	exists, err := s.repo.BookExists(book.Title, book.Authors)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateRecord
	}
	err = s.repo.CreateBook(book)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(statsCacheKey)
	if book.ImageURL != "" {
		url := book.ImageURL
		s.background(func() {
			s.probeCoverImage(url)
		})
	}
	return book, nil
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(bookID string) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks service retrieves all books matching the optional filters,
// ordered by title.
func (s *service) ListBooks(filters data.BookFilters) ([]*data.Book, error) {
	return s.repo.GetAllBooks(filters)
}

// UpdateBook service merges a partial payload into a stored record.
// Only fields present in the payload change; an explicit null clears the
// stored value; everything else is untouched.
func (s *service) UpdateBook(bookID string, requestBody dto.UpdateBookRequest) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if requestBody.Title.Set {
		book.Title = requestBody.Title.Value
	}
	if requestBody.Authors.Set {
		book.Authors = requestBody.Authors.Value
	}
	if requestBody.Genre.Set {
		book.Genre = requestBody.Genre.Value
	}
	if requestBody.Status.Set {
		book.Status = requestBody.Status.Value
	}
	if requestBody.Format.Set {
		book.Format = requestBody.Format.Value
	}
	if requestBody.Rating.Set {
		if requestBody.Rating.Valid {
			rating := requestBody.Rating.Value
			book.Rating = &rating
		} else {
			book.Rating = nil
		}
	}
	if requestBody.Description.Set {
		book.Description = requestBody.Description.Value
	}
	if requestBody.PublishedDate.Set {
		book.PublishedDate = requestBody.PublishedDate.Value
	}
	if requestBody.Publisher.Set {
		book.Publisher = requestBody.Publisher.Value
	}
	if requestBody.PageCount.Set {
		book.PageCount = requestBody.PageCount.Value
	}
	if requestBody.Categories.Set {
		book.Categories = requestBody.Categories.Value
	}
	if requestBody.ImageURL.Set {
		book.ImageURL = requestBody.ImageURL.Value
	}
	if requestBody.Language.Set {
		book.Language = requestBody.Language.Value
	}
	if requestBody.PreviewLink.Set {
		book.PreviewLink = requestBody.PreviewLink.Value
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEditConflict):
			return nil, ErrEditConflict
		default:
			return nil, err
		}
	}
	s.cache.Delete(statsCacheKey)
	if requestBody.ImageURL.Set && book.ImageURL != "" {
		url := book.ImageURL
		s.background(func() {
			s.probeCoverImage(url)
		})
	}
	return book, nil
}

// DeleteBook service removes a book from the collection.
func (s *service) DeleteBook(bookID string) error {
	err := s.repo.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	s.cache.Delete(statsCacheKey)
	return nil
}

// GetBookStats service returns the collection counts, serving a cached
// aggregate when one is fresh enough.
func (s *service) GetBookStats() (data.BookStats, error) {
	if item := s.cache.Get(statsCacheKey); item != nil {
		return item.Value(), nil
	}
	stats, err := s.repo.GetBookStats()
	if err != nil {
		return data.BookStats{}, err
	}
	s.cache.Set(statsCacheKey, stats, ttlcache.DefaultTTL)
	return stats, nil
}
