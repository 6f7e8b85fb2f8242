package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBook(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, CreateBookRequest{
		Title:  "The Dispossessed",
		Author: "Ursula K. Le Guin",
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope[BookResponse](t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.ID)
	assert.Equal(t, "The Dispossessed", env.Data.Title)
	assert.Equal(t, "want-to-read", env.Data.Status)
	assert.Nil(t, env.Data.FinishedAt)
}

func TestCreateBook_InvalidStatus(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, map[string]any{
		"title":  "Mystery Book",
		"author": "Nobody",
		"status": "abandoned",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
}

func TestCreateBook_MissingTitle(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, CreateBookRequest{
		Author: "Anonymous",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope[any](t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION", env.Error.Code)
}

func TestListBooks_StatusFilter(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	for _, b := range []CreateBookRequest{
		{Title: "Backlog Book", Author: "A"},
		{Title: "Active Book", Author: "B", Status: "currently-reading"},
		{Title: "Done Book", Author: "C", Status: "read"},
	} {
		w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, b)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := doRequest(t, server, http.MethodGet, "/api/v1/books?status=currently-reading", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[BookListResponse](t, w)
	require.Equal(t, 1, env.Data.Total)
	assert.Equal(t, "Active Book", env.Data.Books[0].Title)

	w = doRequest(t, server, http.MethodGet, "/api/v1/books", session.AccessToken, nil)
	env = decodeEnvelope[BookListResponse](t, w)
	assert.Equal(t, 3, env.Data.Total)
}

func TestListBooks_Query(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	for _, b := range []CreateBookRequest{
		{Title: "Germinal", Author: "Émile Zola"},
		{Title: "Dune", Author: "Frank Herbert"},
	} {
		w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, b)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(t, server, http.MethodGet, "/api/v1/books?q=emile", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[BookListResponse](t, w)
	require.Equal(t, 1, env.Data.Total)
	assert.Equal(t, "Germinal", env.Data.Books[0].Title)
}

func TestGetShelves(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	for _, b := range []CreateBookRequest{
		{Title: "Backlog Book", Author: "A"},
		{Title: "Active Book", Author: "B", Status: "currently-reading"},
		{Title: "Done Book", Author: "C", Status: "read"},
	} {
		w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, b)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doRequest(t, server, http.MethodGet, "/api/v1/books/shelves", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope[ShelvesResponse](t, w)
	assert.Len(t, env.Data.WantToRead, 1)
	assert.Len(t, env.Data.CurrentlyReading, 1)
	assert.Len(t, env.Data.Read, 1)
}

func TestUpdateBook_FinishReading(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, CreateBookRequest{
		Title:  "Piranesi",
		Author: "Susanna Clarke",
		Status: "currently-reading",
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeEnvelope[BookResponse](t, w)

	status := "read"
	rating := 5
	w = doRequest(t, server, http.MethodPatch, "/api/v1/books/"+created.Data.ID, session.AccessToken, UpdateBookRequest{
		Status: &status,
		Rating: &rating,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env := decodeEnvelope[BookResponse](t, w)
	assert.Equal(t, "read", env.Data.Status)
	assert.Equal(t, 5, env.Data.Rating)
	require.NotNil(t, env.Data.FinishedAt)
	assert.False(t, env.Data.FinishedAt.IsZero())
}

func TestUpdateBook_NotOwned(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	owner := registerTestUser(t, server, "owner@example.com", "Owner")
	other := registerTestUser(t, server, "other@example.com", "Other")

	w := doRequest(t, server, http.MethodPost, "/api/v1/books", owner.AccessToken, CreateBookRequest{
		Title:  "Private Book",
		Author: "Owner",
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeEnvelope[BookResponse](t, w)

	title := "Hijacked"
	w = doRequest(t, server, http.MethodPatch, "/api/v1/books/"+created.Data.ID, other.AccessToken, UpdateBookRequest{
		Title: &title,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteBook(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	session := registerTestUser(t, server, "reader@example.com", "Reader")

	w := doRequest(t, server, http.MethodPost, "/api/v1/books", session.AccessToken, CreateBookRequest{
		Title:  "Ephemeral",
		Author: "Gone Soon",
	})
	require.Equal(t, http.StatusOK, w.Code)
	created := decodeEnvelope[BookResponse](t, w)

	w = doRequest(t, server, http.MethodDelete, "/api/v1/books/"+created.Data.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, server, http.MethodGet, "/api/v1/books/"+created.Data.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
