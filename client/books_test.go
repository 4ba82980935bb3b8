package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/triill/shelf/data"
	"github.com/triill/shelf/data/dto"
)

func TestFetchSortsAndStoresList(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/books", r.URL.Path)
		// Deliberately out of order.
		json.NewEncoder(w).Encode([]data.Book{
			{ID: "2", Title: "zen", Authors: []string{"B"}},
			{ID: "1", Title: "Apple", Authors: []string{"A"}},
		})
	}))
	defer ts.Close()

	c := New(ts.URL)
	require.NoError(t, c.Fetch(context.Background()))
	assert.False(t, c.Loading())

	books := c.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "Apple", books[0].Title)
	assert.Equal(t, "zen", books[1].Title)
}

func TestAddInsertsAtSortedPosition(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var requestBody dto.CreateBookRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&requestBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(data.Book{ID: "new", Title: requestBody.Title, Authors: requestBody.Authors})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.books = []data.Book{
		{ID: "1", Title: "Apple", Authors: []string{"A"}},
		{ID: "2", Title: "Cherry", Authors: []string{"C"}},
	}

	created, err := c.Add(context.Background(), dto.CreateBookRequest{Title: "Banana", Authors: []string{"B"}})
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)

	books := c.Books()
	require.Len(t, books, 3)
	assert.Equal(t, "Banana", books[1].Title)
}

func TestAddFailureLeavesStateUntouched(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "book already exists in your library"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.books = []data.Book{{ID: "1", Title: "Apple", Authors: []string{"A"}}}

	_, err := c.Add(context.Background(), dto.CreateBookRequest{Title: "Apple"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "book already exists in your library", apiErr.Message)

	// The local list is exactly as it was.
	assert.Len(t, c.Books(), 1)
}

func TestUpdateSendsOnlySetFieldsAndResorts(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/v1/books/1", r.URL.Path)

		var fields map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		require.Len(t, fields, 1)
		require.Contains(t, fields, "title")

		json.NewEncoder(w).Encode(data.Book{ID: "1", Title: "Zebra", Authors: []string{"A"}})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.books = []data.Book{
		{ID: "1", Title: "Apple", Authors: []string{"A"}},
		{ID: "2", Title: "Cherry", Authors: []string{"C"}},
	}

	updated, err := c.Update(context.Background(), "1", dto.UpdateBookRequest{
		Title: dto.Some("Zebra"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Zebra", updated.Title)

	// The rename moved the record to the end of the list.
	books := c.Books()
	require.Len(t, books, 2)
	assert.Equal(t, "Cherry", books[0].Title)
	assert.Equal(t, "Zebra", books[1].Title)
}

func TestRemoveDropsLocalRecord(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/v1/books/1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"message": "book successfully deleted"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.books = []data.Book{
		{ID: "1", Title: "Apple", Authors: []string{"A"}},
		{ID: "2", Title: "Cherry", Authors: []string{"C"}},
	}

	require.NoError(t, c.Remove(context.Background(), "1"))
	books := c.Books()
	require.Len(t, books, 1)
	assert.Equal(t, "2", books[0].ID)
}

func TestRemoveFailureLeavesStateUntouched(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "the requested resource could not be found"})
	}))
	defer ts.Close()

	c := New(ts.URL)
	c.books = []data.Book{{ID: "1", Title: "Apple", Authors: []string{"A"}}}

	err := c.Remove(context.Background(), "1")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Len(t, c.Books(), 1)
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway blew up", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(ts.URL)
	err := c.Fetch(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}
