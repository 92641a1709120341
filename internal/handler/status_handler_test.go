package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statustrack/backend/internal/model"
)

func TestStatusCreateEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	token := signupAndLogin(t, router, "a@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/statuses", token, model.CreateStatusRequest{
		Title: "  Deploy failing  ",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var status model.Status
	decodeJSON(t, rec, &status)
	assert.Equal(t, "Deploy failing", status.Title)
	assert.Equal(t, model.StateOpen, status.State)
	assert.Equal(t, int64(1), status.UserID)

	rec = doRequest(t, router, http.MethodPost, "/api/statuses", token, model.CreateStatusRequest{
		Title: "T", State: "done",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/statuses", token, map[string]string{"state": "open"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStatusListEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	adminToken := signupAndLogin(t, router, "admin@example.com")
	userToken := signupAndLogin(t, router, "user@example.com")

	for i := 0; i < 3; i++ {
		rec := doRequest(t, router, http.MethodPost, "/api/statuses", userToken, model.CreateStatusRequest{
			Title: fmt.Sprintf("mine %d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	closed := model.StateClosed
	rec := doRequest(t, router, http.MethodPatch, "/api/statuses/1", userToken, model.UpdateStatusRequest{State: &closed})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/statuses", adminToken, model.CreateStatusRequest{Title: "admin's"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Users see only their own records.
	rec = doRequest(t, router, http.MethodGet, "/api/statuses", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.StatusListResponse
	decodeJSON(t, rec, &resp)
	assert.Len(t, resp.Items, 3)
	assert.Equal(t, int64(3), resp.Meta.Total)

	// Admins see everything.
	rec = doRequest(t, router, http.MethodGet, "/api/statuses", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &resp)
	assert.Equal(t, int64(4), resp.Meta.Total)

	// State filter composes with ownership.
	rec = doRequest(t, router, http.MethodGet, "/api/statuses?state=closed", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &resp)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, model.StateClosed, resp.Items[0].State)

	// Pagination clamps and pages.
	rec = doRequest(t, router, http.MethodGet, "/api/statuses?page=2&size=2", userToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &resp)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	require.NotNil(t, resp.Meta.PreviousPage)
	assert.Equal(t, 1, *resp.Meta.PreviousPage)
	assert.Nil(t, resp.Meta.NextPage)
}

func TestStatusDetailEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	adminToken := signupAndLogin(t, router, "admin@example.com")
	userToken := signupAndLogin(t, router, "user@example.com")

	rec := doRequest(t, router, http.MethodPost, "/api/statuses", userToken, model.CreateStatusRequest{Title: "mine"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/statuses", adminToken, model.CreateStatusRequest{Title: "admin's"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/statuses/1", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/api/statuses/2", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/api/statuses/1", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Missing ids are not-found regardless of who asks.
	rec = doRequest(t, router, http.MethodGet, "/api/statuses/99", userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/api/statuses/abc", userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	title := "updated"
	rec = doRequest(t, router, http.MethodPatch, "/api/statuses/1", userToken, model.UpdateStatusRequest{Title: &title})
	require.Equal(t, http.StatusOK, rec.Code)
	var status model.Status
	decodeJSON(t, rec, &status)
	assert.Equal(t, "updated", status.Title)

	rec = doRequest(t, router, http.MethodPatch, "/api/statuses/2", userToken, model.UpdateStatusRequest{Title: &title})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/statuses/2", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = doRequest(t, router, http.MethodDelete, "/api/statuses/1", userToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(t, router, http.MethodGet, "/api/statuses/1", userToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
