package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/service"
)

// BookingService is implemented by service.BookingService.
type BookingService interface {
	Current(ctx context.Context, userID uint64) (*model.Booking, error)
	Create(ctx context.Context, userID, roomID uint64) (uint64, error)
	Update(ctx context.Context, userID, bookingID, roomID uint64) (uint64, error)
}

// BookingHandler serves /booking.  JWTAuth must run first.
type BookingHandler struct {
	Bookings BookingService
	Log      *logger.Logger
}

func NewBookingHandler(bookings BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Log: log}
}

type bookingReq struct {
	RoomID *int64 `json:"roomId" validate:"required"`
}

type bookingResp struct {
	ID   uint64     `json:"id"`
	Room model.Room `json:"Room"`
}

// Get handles GET /booking.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	b, err := h.Bookings.Current(c.Request().Context(), userID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, bookingResp{ID: b.ID, Room: b.Room})
}

// Create handles POST /booking with body {"roomId": n}.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	roomID, ok := h.bindRoom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId is required"})
	}
	id, err := h.Bookings.Create(c.Request().Context(), userID, roomID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// Update handles PUT /booking/:bookingId with body {"roomId": n}.
func (h *BookingHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := strconv.ParseUint(c.Param("bookingId"), 10, 64)
	if err != nil || bookingID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	roomID, ok := h.bindRoom(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId is required"})
	}
	id, err := h.Bookings.Update(c.Request().Context(), userID, bookingID, roomID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id})
}

// bindRoom decodes and validates the body.  Non-positive IDs map to 0,
// which no room has, so the service reports room not found.
func (h *BookingHandler) bindRoom(c echo.Context) (uint64, bool) {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return 0, false
	}
	if err := c.Validate(&req); err != nil {
		return 0, false
	}
	if *req.RoomID <= 0 {
		return 0, true
	}
	return uint64(*req.RoomID), true
}

func (h *BookingHandler) fail(c echo.Context, err error) error {
	return writeServiceError(c, h.Log, err)
}

// writeServiceError maps service errors to HTTP statuses.  Unexpected
// errors are logged and reported as 500 without detail.
func writeServiceError(c echo.Context, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrNotEligible):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": reason(err)})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": reason(err)})
	case errors.Is(err, service.ErrNoVacancy):
		return c.JSON(http.StatusForbidden, echo.Map{"error": reason(err)})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": reason(err)})
	}
	log.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func reason(err error) string {
	var se *service.Error
	if errors.As(err, &se) {
		return se.Reason
	}
	return err.Error()
}
