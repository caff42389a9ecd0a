package api

import (
	"errors"
	"net/http"
	"time"

	reqdto "smartpark/internal/handler/dto/request"
	resdto "smartpark/internal/handler/dto/response"
	"smartpark/internal/handler/httperr"
	"smartpark/internal/handler/middleware"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayedHeader       = "Idempotent-Replayed"
)

var (
	errNoActor               = errors.New("authenticated actor missing from context")
	errInvalidIdempotencyKey = errors.New("idempotency key must be a UUID")
)

type BookingHandler struct {
	cmds     commands.BookingCommands
	q        queries.BookingQueries
	calendar *time.Location
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries, calendar *time.Location) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q, calendar: calendar}
}

// @Summary Create booking
// @Description Holds a spot as pending and opens a checkout session
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Makes retries return the first result"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.BookingCreatedResponse
// @Success 200 {object} resdto.BookingCreatedResponse "replayed"
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	idempotencyKey, err := getIdempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}
	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.CreateBooking(c.Request.Context(), req, actor, idempotencyKey)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		c.Header(replayedHeader, "true")
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromCreateBookingResult(result))
}

// @Summary List my bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param cursor query string false "Cursor from the previous page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	var query reqdto.ListBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}

	var after *queries.Cursor
	if query.Cursor != "" {
		after = &queries.Cursor{After: query.Cursor}
	}
	views, next, err := h.q.ListByUser(c.Request.Context(), actor.ID, after, query.Limit)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}

	res := resdto.BookingListResponse{Bookings: resdto.FromBookingViews(views)}
	if next != nil {
		res.NextCursor = &next.After
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingView(view))
}

// @Summary Edit booking
// @Description Moves the booking to a new slot. code 0: applied, code 100: pay amountDue at url
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.EditBookingRequest true "New slot"
// @Success 200 {object} resdto.BookingEditedResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id} [put]
func (h *BookingHandler) Edit(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.EditBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.EditBooking(c.Request.Context(), id, req, actor)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromEditBookingResult(result))
}

// @Summary Cancel booking
// @Description Cancelling an already cancelled booking succeeds without changes
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingCancelledResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.cmds.CancelBooking(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.BookingCancelledResponse{
		BookingID:        result.BookingID,
		AlreadyCancelled: result.AlreadyCancelled,
	})
}

// @Summary Delete booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingDeletedResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.cmds.DeleteBooking(c.Request.Context(), id, actor)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.BookingDeletedResponse{
		BookingID:        result.BookingID,
		ReleasedCapacity: result.ReleasedCapacity,
	})
}

// @Summary List bookings for operators
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param date query string true "Calendar day (YYYY-MM-DD)"
// @Param location_id query string false "Location ID"
// @Param status query string false "pending, booked (default) or cancelled"
// @Success 200 {array} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Router /admin/bookings [get]
func (h *BookingHandler) ListForOperator(c *gin.Context) {
	var query reqdto.OperatorBookingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	date, err := time.ParseInLocation(time.DateOnly, query.Date, h.calendar)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}
	filter := queries.BookingFilter{Date: date, Status: query.Status}
	if query.LocationID != "" {
		id, err := uuid.Parse(query.LocationID)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid location_id", nil)
			return
		}
		filter.LocationID = &id
	}

	views, err := h.q.ListForOperator(c.Request.Context(), filter)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingViews(views))
}

// getIdempotencyKey returns nil when the header is absent.
func getIdempotencyKey(c *gin.Context) (*uuid.UUID, error) {
	keyStr := c.GetHeader(idempotencyKeyHeader)
	if keyStr == "" {
		return nil, nil
	}
	key, err := uuid.Parse(keyStr)
	if err != nil {
		return nil, errInvalidIdempotencyKey
	}
	return &key, nil
}
