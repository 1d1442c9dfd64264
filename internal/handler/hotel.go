package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/model"
)

type HotelService interface {
	List(ctx context.Context, userID uint64) ([]model.Hotel, error)
	Rooms(ctx context.Context, userID, hotelID uint64) (*model.Hotel, []model.RoomOccupancy, error)
}

// HotelHandler serves the read-only hotel listing shown before booking.
type HotelHandler struct {
	Hotels HotelService
	Log    *logger.Logger
}

func NewHotelHandler(hotels HotelService, log *logger.Logger) *HotelHandler {
	return &HotelHandler{Hotels: hotels, Log: log}
}

type hotelItem struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type roomItem struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Booked    int    `json:"booked"`
	Vacancies int    `json:"vacancies"`
}

// List handles GET /hotels.  Response JSON contains an "items" array.
func (h *HotelHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotels, err := h.Hotels.List(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	out := make([]hotelItem, 0, len(hotels))
	for _, ht := range hotels {
		out = append(out, hotelItem{ID: ht.ID, Name: ht.Name, Image: ht.Image})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Rooms handles GET /hotels/:hotelId.
func (h *HotelHandler) Rooms(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, err := strconv.ParseUint(c.Param("hotelId"), 10, 64)
	if err != nil || hotelID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	hotel, rooms, err := h.Hotels.Rooms(c.Request().Context(), userID, hotelID)
	if err != nil {
		return writeServiceError(c, h.Log, err)
	}
	items := make([]roomItem, 0, len(rooms))
	for _, r := range rooms {
		items = append(items, roomItem{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Booked: r.Booked, Vacancies: r.Vacancies()})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    hotel.ID,
		"name":  hotel.Name,
		"image": hotel.Image,
		"rooms": items,
	})
}
