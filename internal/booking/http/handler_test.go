package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/events"
	"github.com/nekogravitycat/shareit-backend/internal/metrics"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/apperror"
)

const (
	ownerID   = "11111111-1111-1111-1111-111111111111"
	bookerID  = "22222222-2222-2222-2222-222222222222"
	bookingID = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	itemID    = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubService struct {
	create func(req booking.CreateRequest) (*booking.Booking, error)
	decide func(actorID, id string, approve bool) (*booking.Booking, error)
	get    func(requesterID, id string) (*booking.Booking, error)
	list   func(role booking.Role, userID, state string, from, size int) ([]*booking.Booking, error)
}

func (s *stubService) Create(_ context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	return s.create(req)
}

func (s *stubService) Decide(_ context.Context, actorID, id string, approve bool) (*booking.Booking, error) {
	return s.decide(actorID, id, approve)
}

func (s *stubService) Get(_ context.Context, requesterID, id string) (*booking.Booking, error) {
	return s.get(requesterID, id)
}

func (s *stubService) ListAsBooker(_ context.Context, userID, state string, from, size int) ([]*booking.Booking, error) {
	return s.list(booking.RoleBooker, userID, state, from, size)
}

func (s *stubService) ListAsOwner(_ context.Context, userID, state string, from, size int) ([]*booking.Booking, error) {
	return s.list(booking.RoleOwner, userID, state, from, size)
}

type recordingPublisher struct {
	events.NoopPublisher
	created []events.BookingCreated
	decided []events.BookingDecided
	err     error
}

func (p *recordingPublisher) BookingCreated(_ context.Context, e events.BookingCreated) error {
	p.created = append(p.created, e)
	return p.err
}

func (p *recordingPublisher) BookingDecided(_ context.Context, e events.BookingDecided) error {
	p.decided = append(p.decided, e)
	return p.err
}

type env struct {
	router    *gin.Engine
	service   *stubService
	publisher *recordingPublisher
	metrics   *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		service:   &stubService{},
		publisher: &recordingPublisher{},
		metrics:   metrics.New(),
	}

	// The caller identifies itself through a header; the real router uses the JWT middleware.
	fakeAuth := func(c *gin.Context) {
		uid := c.GetHeader("X-Test-User")
		if uid == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		auth.SetUserID(c, uid)
		c.Next()
	}

	e.router = gin.New()
	RegisterRoutes(e.router.Group("/v1"), NewHandler(e.service, e.publisher, e.metrics), fakeAuth)
	return e
}

func (e *env) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func sampleBooking(status booking.Status) *booking.Booking {
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	return &booking.Booking{
		ID:       bookingID,
		ItemID:   itemID,
		ItemName: "Drill",
		OwnerID:  ownerID,
		BookerID: bookerID,
		Start:    start,
		End:      start.Add(48 * time.Hour),
		Status:   status,
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestCreateBooking(t *testing.T) {
	e := newEnv(t)
	var got booking.CreateRequest
	e.service.create = func(req booking.CreateRequest) (*booking.Booking, error) {
		got = req
		return sampleBooking(booking.StatusWaiting), nil
	}

	start := time.Now().Add(24 * time.Hour).UTC()
	w := e.do(http.MethodPost, "/v1/bookings", bookerID, gin.H{
		"item_id": itemID,
		"start":   start,
		"end":     start.Add(48 * time.Hour),
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, bookerID, got.BookerID)
	assert.Equal(t, itemID, got.ItemID)

	resp := decode[BookingResponse](t, w)
	assert.Equal(t, "WAITING", resp.Status)
	assert.Equal(t, "booker", resp.Role)
	assert.Equal(t, "Drill", resp.Item.Name)

	require.Len(t, e.publisher.created, 1)
	assert.Equal(t, bookingID, e.publisher.created[0].BookingID)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.BookingsCreated))
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	e.service.create = func(booking.CreateRequest) (*booking.Booking, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}

	past := time.Now().Add(-time.Hour).UTC()
	tests := []struct {
		name string
		body any
	}{
		{"missing item", gin.H{"start": time.Now().Add(time.Hour), "end": time.Now().Add(2 * time.Hour)}},
		{"item not uuid", gin.H{"item_id": "drill", "start": time.Now().Add(time.Hour), "end": time.Now().Add(2 * time.Hour)}},
		{"start in past", gin.H{"item_id": itemID, "start": past, "end": past.Add(48 * time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/v1/bookings", bookerID, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, e.publisher.created)
}

func TestCreateBookingDomainErrors(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{booking.ErrOwnBooking, http.StatusNotFound},
		{booking.ErrItemUnavailable, http.StatusBadRequest},
		{booking.ErrInvalidInterval, http.StatusBadRequest},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			e := newEnv(t)
			e.service.create = func(booking.CreateRequest) (*booking.Booking, error) { return nil, tt.err }

			start := time.Now().Add(time.Hour)
			w := e.do(http.MethodPost, "/v1/bookings", bookerID, gin.H{"item_id": itemID, "start": start, "end": start.Add(time.Hour)})

			assert.Equal(t, tt.code, w.Code)
			assert.Empty(t, e.publisher.created)
			assert.Zero(t, testutil.ToFloat64(e.metrics.BookingsCreated))
		})
	}
}

func TestCreateBookingSurvivesPublishFailure(t *testing.T) {
	e := newEnv(t)
	e.publisher.err = errors.New("broker unavailable")
	e.service.create = func(booking.CreateRequest) (*booking.Booking, error) {
		return sampleBooking(booking.StatusWaiting), nil
	}

	start := time.Now().Add(time.Hour)
	w := e.do(http.MethodPost, "/v1/bookings", bookerID, gin.H{"item_id": itemID, "start": start, "end": start.Add(time.Hour)})

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestDecideParsesApprovalCaseInsensitively(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{"false", false},
		{"FALSE", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			e := newEnv(t)
			var got bool
			e.service.decide = func(actorID, id string, approve bool) (*booking.Booking, error) {
				assert.Equal(t, ownerID, actorID)
				assert.Equal(t, bookingID, id)
				got = approve
				status := booking.StatusRejected
				if approve {
					status = booking.StatusApproved
				}
				return sampleBooking(status), nil
			}

			w := e.do(http.MethodPatch, "/v1/bookings/"+bookingID+"?approved="+tt.token, ownerID, nil)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "owner", decode[BookingResponse](t, w).Role)
			require.Len(t, e.publisher.decided, 1)
			assert.Equal(t, tt.want, e.publisher.decided[0].Approved)
		})
	}
}

func TestDecideRejectsMalformedApproval(t *testing.T) {
	e := newEnv(t)
	e.service.decide = func(string, string, bool) (*booking.Booking, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}

	for _, path := range []string{
		"/v1/bookings/" + bookingID,
		"/v1/bookings/" + bookingID + "?approved=yes",
		"/v1/bookings/" + bookingID + "?approved=1",
		"/v1/bookings/not-a-uuid?approved=true",
	} {
		w := e.do(http.MethodPatch, path, ownerID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestDecideRepeatedDecision(t *testing.T) {
	e := newEnv(t)
	e.service.decide = func(string, string, bool) (*booking.Booking, error) {
		return nil, booking.ErrAlreadyApproved
	}

	w := e.do(http.MethodPatch, "/v1/bookings/"+bookingID+"?approved=true", ownerID, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "already approved", decode[map[string]string](t, w)["error"])
	assert.Empty(t, e.publisher.decided)
}

func TestDecideCountsDecisions(t *testing.T) {
	e := newEnv(t)
	e.service.decide = func(_, _ string, approve bool) (*booking.Booking, error) {
		return sampleBooking(booking.StatusApproved), nil
	}

	e.do(http.MethodPatch, "/v1/bookings/"+bookingID+"?approved=true", ownerID, nil)
	e.do(http.MethodPatch, "/v1/bookings/"+bookingID+"?approved=false", ownerID, nil)
	e.do(http.MethodPatch, "/v1/bookings/"+bookingID+"?approved=false", ownerID, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.BookingDecisions.WithLabelValues("approved")))
	assert.Equal(t, 2.0, testutil.ToFloat64(e.metrics.BookingDecisions.WithLabelValues("rejected")))
}

func TestGetBooking(t *testing.T) {
	e := newEnv(t)
	e.service.get = func(requesterID, id string) (*booking.Booking, error) {
		if requesterID != ownerID && requesterID != bookerID {
			return nil, booking.ErrNotParticipant
		}
		return sampleBooking(booking.StatusWaiting), nil
	}

	w := e.do(http.MethodGet, "/v1/bookings/"+bookingID, bookerID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "booker", decode[BookingResponse](t, w).Role)

	w = e.do(http.MethodGet, "/v1/bookings/"+bookingID, "33333333-3333-3333-3333-333333333333", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/v1/bookings/"+bookingID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListRoutesByRole(t *testing.T) {
	e := newEnv(t)
	type call struct {
		role  booking.Role
		state string
		from  int
		size  int
	}
	var calls []call
	e.service.list = func(role booking.Role, userID, state string, from, size int) ([]*booking.Booking, error) {
		calls = append(calls, call{role, state, from, size})
		return []*booking.Booking{sampleBooking(booking.StatusWaiting)}, nil
	}

	w := e.do(http.MethodGet, "/v1/bookings?state=waiting", bookerID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(http.MethodGet, "/v1/bookings/owner?state=CURRENT&from=20&size=5", ownerID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, calls, 2)
	assert.Equal(t, call{booking.RoleBooker, "waiting", 0, 10}, calls[0])
	assert.Equal(t, call{booking.RoleOwner, "CURRENT", 20, 5}, calls[1])

	page := decode[struct {
		Items []BookingResponse `json:"items"`
		From  int               `json:"from"`
		Size  int               `json:"size"`
	}](t, w)
	assert.Equal(t, 20, page.From)
	assert.Equal(t, 5, page.Size)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "owner", page.Items[0].Role)
}

func TestListUnsupportedState(t *testing.T) {
	e := newEnv(t)
	e.service.list = func(_ booking.Role, _, state string, _, _ int) ([]*booking.Booking, error) {
		_, err := booking.ParseState(state)
		return nil, err
	}

	w := e.do(http.MethodGet, "/v1/bookings?state=BOGUS", bookerID, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown state: BOGUS", decode[map[string]string](t, w)["error"])
}

func TestListRejectsOutOfRangePaging(t *testing.T) {
	e := newEnv(t)
	e.service.list = func(booking.Role, string, string, int, int) ([]*booking.Booking, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}

	for _, q := range []string{"from=-1", "size=0", "size=101", "size=abc"} {
		w := e.do(http.MethodGet, "/v1/bookings?"+q, bookerID, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestListPropagatesNotFound(t *testing.T) {
	e := newEnv(t)
	e.service.list = func(booking.Role, string, string, int, int) ([]*booking.Booking, error) {
		return nil, booking.ErrUserNotFound
	}

	w := e.do(http.MethodGet, "/v1/bookings/owner", ownerID, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(booking.ErrUserNotFound))
}
