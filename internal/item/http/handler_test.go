package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/item"
)

const (
	ownerID = "11111111-1111-1111-1111-111111111111"
	itemID  = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubService embeds the interface so tests only implement what they call.
type stubService struct {
	item.Service
	get        func(userID, id string) (*item.Detail, error)
	addComment func(userID, id, text string) (*item.Comment, error)
	create     func(ownerID string, req item.CreateRequest) (*item.Item, error)
	remove     func(userID, id string) error
}

func (s *stubService) Delete(_ context.Context, userID, id string) error {
	return s.remove(userID, id)
}

func (s *stubService) Get(_ context.Context, userID, id string) (*item.Detail, error) {
	return s.get(userID, id)
}

func (s *stubService) AddComment(_ context.Context, userID, id, text string) (*item.Comment, error) {
	return s.addComment(userID, id, text)
}

func (s *stubService) Create(_ context.Context, ownerID string, req item.CreateRequest) (*item.Item, error) {
	return s.create(ownerID, req)
}

func newRouter(svc item.Service, userID string) *gin.Engine {
	r := gin.New()
	setUser := func(c *gin.Context) {
		auth.SetUserID(c, userID)
		c.Next()
	}
	RegisterRoutes(r.Group("/v1"), NewHandler(svc), setUser)
	return r
}

func serve(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetItemRendersTimeline(t *testing.T) {
	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc := &stubService{get: func(userID, id string) (*item.Detail, error) {
		return &item.Detail{
			Item: &item.Item{ID: id, OwnerID: ownerID, Name: "Drill", Available: true},
			Timeline: booking.Timeline{
				Last: &booking.Booking{ID: "b-1", Start: start, End: start.Add(time.Hour), Status: booking.StatusApproved},
			},
			Comments: []*item.Comment{},
		}, nil
	}}

	w := serve(newRouter(svc, ownerID), http.MethodGet, "/v1/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ItemDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.LastBooking)
	assert.Equal(t, "b-1", resp.LastBooking.ID)
	assert.Nil(t, resp.NextBooking)
	assert.NotNil(t, resp.Comments)
}

func TestAddCommentWithoutCompletedBooking(t *testing.T) {
	svc := &stubService{addComment: func(string, string, string) (*item.Comment, error) {
		return nil, booking.ErrNoCompletedBooking
	}}

	w := serve(newRouter(svc, ownerID), http.MethodPost, "/v1/items/"+itemID+"/comments", gin.H{"text": "Great"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no completed booking for this item")
}

func TestAddCommentCreated(t *testing.T) {
	svc := &stubService{addComment: func(userID, id, text string) (*item.Comment, error) {
		return &item.Comment{ID: "c-1", ItemID: id, AuthorID: userID, AuthorName: "Booker", Text: text}, nil
	}}

	w := serve(newRouter(svc, ownerID), http.MethodPost, "/v1/items/"+itemID+"/comments", gin.H{"text": "Great"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"author_name":"Booker"`)
}

func TestCreateItemRequiresAvailability(t *testing.T) {
	called := false
	svc := &stubService{create: func(string, item.CreateRequest) (*item.Item, error) {
		called = true
		return &item.Item{ID: itemID}, nil
	}}
	r := newRouter(svc, ownerID)

	w := serve(r, http.MethodPost, "/v1/items", gin.H{"name": "Drill", "description": "Cordless"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)

	w = serve(r, http.MethodPost, "/v1/items", gin.H{"name": "Drill", "description": "Cordless", "available": false})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, called)
}

func TestDeleteItem(t *testing.T) {
	var deleted string
	svc := &stubService{remove: func(userID, id string) error {
		if id != itemID {
			return item.ErrHasBookings
		}
		deleted = id
		return nil
	}}
	r := newRouter(svc, ownerID)

	w := serve(r, http.MethodDelete, "/v1/items/"+itemID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, itemID, deleted)

	w = serve(r, http.MethodDelete, "/v1/items/bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"item has bookings and cannot be deleted"}`, w.Body.String())

	w = serve(r, http.MethodDelete, "/v1/items/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
