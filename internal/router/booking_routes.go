package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// BookingMiddleware is the chain applied to /booking.  Auth must resolve the
// user before RateLimit and Idempotency build their per-user keys.
type BookingMiddleware struct {
	Auth        echo.MiddlewareFunc
	RateLimit   echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

// RegisterBooking registers the hotel booking endpoints.  Every route
// requires a valid session; writes additionally honour Idempotency-Key.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, mw BookingMiddleware) {
	g := e.Group("/booking", mw.Auth, mw.RateLimit)
	g.GET("", h.Get)
	g.POST("", h.Create, mw.Idempotency)
	g.PUT("/:bookingId", h.Update, mw.Idempotency)
}

// RegisterHotels registers the read-only hotel listing behind the same
// auth and rate limit as booking.
func RegisterHotels(e *echo.Echo, h *handler.HotelHandler, mw BookingMiddleware) {
	g := e.Group("/hotels", mw.Auth, mw.RateLimit)
	g.GET("", h.List)
	g.GET("/:hotelId", h.Rooms)
}
