package service_test

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triill/shelf/config"
	"github.com/triill/shelf/data"
	"github.com/triill/shelf/data/dto"
	"github.com/triill/shelf/internal/jsonlog"
	"github.com/triill/shelf/repository"
	"github.com/triill/shelf/service"
)

// fakeRepo is an in-memory stand-in for the Postgres repository. It
// mirrors the repository's duplicate and not-found semantics so the
// service layer can be tested without a database.
type fakeRepo struct {
	mu         sync.Mutex
	books      map[string]*data.Book
	statsCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{books: map[string]*data.Book{}}
}

func (r *fakeRepo) CreateBook(book *data.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	book.ID = uuid.New().String()
	book.DateAdded = time.Now()
	book.UpdatedAt = book.DateAdded
	book.Version = 1
	stored := *book
	r.books[book.ID] = &stored
	return nil
}

func (r *fakeRepo) GetBook(bookID string) (*data.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[bookID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func (r *fakeRepo) GetAllBooks(filters data.BookFilters) ([]*data.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	books := []*data.Book{}
	for _, book := range r.books {
		if filters.Genre != "" && book.Genre != filters.Genre {
			continue
		}
		if filters.Status != "" && book.Status != filters.Status {
			continue
		}
		if filters.Rating != nil && (book.Rating == nil || *book.Rating != *filters.Rating) {
			continue
		}
		copied := *book
		books = append(books, &copied)
	}
	return books, nil
}

func (r *fakeRepo) BookExists(title string, authors []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, book := range r.books {
		if !strings.EqualFold(book.Title, title) {
			continue
		}
		for _, a := range book.Authors {
			for _, b := range authors {
				if strings.EqualFold(a, b) {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

func (r *fakeRepo) UpdateBook(book *data.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.books[book.ID]
	if !ok || stored.Version != book.Version {
		return repository.ErrEditConflict
	}
	book.UpdatedAt = time.Now()
	book.Version++
	copied := *book
	r.books[book.ID] = &copied
	return nil
}

func (r *fakeRepo) DeleteBook(bookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[bookID]; !ok {
		return repository.ErrRecordNotFound
	}
	delete(r.books, bookID)
	return nil
}

func (r *fakeRepo) GetBookStats() (data.BookStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statsCalls++
	var stats data.BookStats
	stats.TotalBooks = int64(len(r.books))
	for _, book := range r.books {
		if book.Status == data.StatusRead {
			stats.ReadBooks++
		}
		if book.Status == data.StatusUnread {
			stats.UnreadBooks++
		}
		if book.Rating != nil && *book.Rating == data.MaxRating {
			stats.FiveStarBooks++
		}
	}
	return stats, nil
}

func newTestService(repo repository.Repository) service.Service {
	var wg sync.WaitGroup
	logger := jsonlog.New(io.Discard, jsonlog.LevelError)
	return service.New(config.Config{}, &wg, logger, repo)
}

func createRequest() dto.CreateBookRequest {
	rating := 4.5
	return dto.CreateBookRequest{
		Title:   "Pride and Prejudice",
		Authors: []string{"Jane Austen"},
		Genre:   data.GenreRomance,
		Status:  data.StatusRead,
		Format:  data.FormatPhysical,
		Rating:  &rating,
	}
}

func TestCreateBookThenGet(t *testing.T) {
	svc := newTestService(newFakeRepo())

	created, err := svc.CreateBook(createRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.DateAdded.IsZero())

	got, err := svc.GetBook(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateBookValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	requestBody := createRequest()
	requestBody.Rating = nil // read books must carry a rating
	_, err := svc.CreateBook(requestBody)

	var validationErr *service.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "rating")
}

func TestCreateBookDuplicate(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.CreateBook(createRequest())
	require.NoError(t, err)

	// Same title in a different case with a shared author.
	requestBody := createRequest()
	requestBody.Title = "PRIDE AND PREJUDICE"
	requestBody.Authors = []string{"jane austen", "Someone Else"}
	_, err = svc.CreateBook(requestBody)
	assert.ErrorIs(t, err, service.ErrDuplicateRecord)
}

func TestGetBookNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.GetBook(uuid.New().String())
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
}

func TestUpdateBookMergesOnlyPresentFields(t *testing.T) {
	svc := newTestService(newFakeRepo())

	created, err := svc.CreateBook(createRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateBook(created.ID, dto.UpdateBookRequest{
		Status: dto.Some(data.StatusRead),
		Rating: dto.Some(5.0),
	})
	require.NoError(t, err)

	assert.Equal(t, data.StatusRead, updated.Status)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 5.0, *updated.Rating)

	// Untouched fields survive the merge.
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Authors, updated.Authors)
	assert.Equal(t, created.Genre, updated.Genre)
	assert.Equal(t, created.DateAdded, updated.DateAdded)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateBookNullClearsRating(t *testing.T) {
	svc := newTestService(newFakeRepo())

	created, err := svc.CreateBook(createRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateBook(created.ID, dto.UpdateBookRequest{
		Status: dto.Some(data.StatusUnread),
		Rating: dto.Null[float64](),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Rating)
	assert.Equal(t, data.StatusUnread, updated.Status)
}

func TestUpdateBookNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.UpdateBook(uuid.New().String(), dto.UpdateBookRequest{
		Title: dto.Some("Emma"),
	})
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
}

func TestUpdateBookValidation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	created, err := svc.CreateBook(createRequest())
	require.NoError(t, err)

	_, err = svc.UpdateBook(created.ID, dto.UpdateBookRequest{
		Genre: dto.Some("Biography"),
	})
	var validationErr *service.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "genre")
}

func TestDeleteBook(t *testing.T) {
	svc := newTestService(newFakeRepo())

	created, err := svc.CreateBook(createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(created.ID))
	assert.ErrorIs(t, svc.DeleteBook(created.ID), service.ErrRecordNotFound)

	_, err = svc.GetBook(created.ID)
	assert.ErrorIs(t, err, service.ErrRecordNotFound)
}

func TestGetBookStatsCachesAndInvalidates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.CreateBook(createRequest())
	require.NoError(t, err)

	stats, err := svc.GetBookStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalBooks)
	assert.Equal(t, int64(1), stats.ReadBooks)

	// A second read within the TTL serves the cached aggregate.
	_, err = svc.GetBookStats()
	require.NoError(t, err)
	assert.Equal(t, 1, repo.statsCalls)

	// Any mutation drops the cache.
	requestBody := createRequest()
	requestBody.Title = "Emma"
	_, err = svc.CreateBook(requestBody)
	require.NoError(t, err)

	stats, err = svc.GetBookStats()
	require.NoError(t, err)
	assert.Equal(t, 2, repo.statsCalls)
	assert.Equal(t, int64(2), stats.TotalBooks)
}

func TestRepoErrorPassthrough(t *testing.T) {
	svc := newTestService(errRepo{})

	_, err := svc.ListBooks(data.BookFilters{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, service.ErrRecordNotFound))
}

// errRepo fails every operation, for checking that unexpected repository
// errors are not swallowed or remapped.
type errRepo struct{}

var errBoom = errors.New("boom")

func (errRepo) CreateBook(*data.Book) error                         { return errBoom }
func (errRepo) GetBook(string) (*data.Book, error)                  { return nil, errBoom }
func (errRepo) GetAllBooks(data.BookFilters) ([]*data.Book, error)  { return nil, errBoom }
func (errRepo) BookExists(string, []string) (bool, error)           { return false, errBoom }
func (errRepo) UpdateBook(*data.Book) error                         { return errBoom }
func (errRepo) DeleteBook(string) error                             { return errBoom }
func (errRepo) GetBookStats() (data.BookStats, error)               { return data.BookStats{}, errBoom }
