package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/shareit-backend/internal/auth"
	"github.com/nekogravitycat/shareit-backend/internal/booking"
	"github.com/nekogravitycat/shareit-backend/internal/events"
	"github.com/nekogravitycat/shareit-backend/internal/metrics"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/request"
	"github.com/nekogravitycat/shareit-backend/internal/pkg/response"
)

type Handler struct {
	service   booking.Service
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewHandler wires the booking endpoints. A nil publisher drops events and nil metrics are skipped.
func NewHandler(service booking.Service, publisher events.Publisher, m *metrics.Metrics) *Handler {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Handler{
		service:   service,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if err := body.Validate(h.now()); err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		BookerID: userID,
		ItemID:   body.ItemID,
		Start:    body.Start,
		End:      body.End,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncBookingCreated()
	}
	h.notify(c.Request.Context(), "booking created", b.ID, func(ctx context.Context) error {
		return h.publisher.BookingCreated(ctx, events.BookingCreated{
			BookingID: b.ID,
			ItemID:    b.ItemID,
			ItemName:  b.ItemName,
			OwnerID:   b.OwnerID,
			BookerID:  b.BookerID,
			Start:     b.Start,
			End:       b.End,
			Status:    string(b.Status),
			CreatedAt: b.CreatedAt,
		})
	})

	c.JSON(http.StatusCreated, NewBookingResponseFor(b, userID))
}

// Decide handles PATCH /bookings/:id?approved=true|false.
func (h *Handler) Decide(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	var query DecideBookingRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "approved query parameter is required", err)
		return
	}
	approve, err := query.ParseApproval()
	if err != nil {
		response.Error(c, err)
		return
	}

	userID := auth.GetUserID(c)
	b, err := h.service.Decide(c.Request.Context(), userID, uri.ID, approve)
	if err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IncBookingDecision(approve)
	}
	h.notify(c.Request.Context(), "booking decided", b.ID, func(ctx context.Context) error {
		return h.publisher.BookingDecided(ctx, events.BookingDecided{
			BookingID: b.ID,
			ItemID:    b.ItemID,
			OwnerID:   b.OwnerID,
			BookerID:  b.BookerID,
			Approved:  approve,
			Status:    string(b.Status),
			DecidedAt: b.UpdatedAt,
		})
	})

	c.JSON(http.StatusOK, NewBookingResponseFor(b, userID))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid booking id", err)
		return
	}

	userID := auth.GetUserID(c)
	b, err := h.service.Get(c.Request.Context(), userID, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponseFor(b, userID))
}

// ListAsBooker lists bookings the caller made.
func (h *Handler) ListAsBooker(c *gin.Context) {
	h.list(c, h.service.ListAsBooker)
}

// ListAsOwner lists bookings of items the caller owns.
func (h *Handler) ListAsOwner(c *gin.Context) {
	h.list(c, h.service.ListAsOwner)
}

type listFunc func(ctx context.Context, userID, state string, from, size int) ([]*booking.Booking, error)

func (h *Handler) list(c *gin.Context, fn listFunc) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	userID := auth.GetUserID(c)
	bookings, err := fn(c.Request.Context(), userID, req.State, req.From, req.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageResponse(newBookingList(bookings, userID), req.From, req.Size))
}

// notify publishes an event without failing the request; broker errors are only logged.
func (h *Handler) notify(ctx context.Context, what, bookingID string, publish func(context.Context) error) {
	if err := publish(ctx); err != nil {
		slog.WarnContext(ctx, "publish event failed",
			"event", what,
			"booking_id", bookingID,
			"error", err,
		)
	}
}
