package httpapi

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/airport-board/internal/flights"
	"github.com/i474232898/airport-board/internal/weather"
)

const closedMessage = "AIRPORT IS CURRENTLY CLOSED"

// FlightBoard serves the aggregated board.
type FlightBoard interface {
	Current(ctx context.Context) (flights.Board, error)
}

// WeatherReport serves current conditions at the airport.
type WeatherReport interface {
	Current(ctx context.Context) (weather.Info, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, board FlightBoard, report WeatherReport) {
	api := app.Group("/api")

	api.Get("/flights", func(c *fiber.Ctx) error {
		b, err := board.Current(c.UserContext())
		if err != nil {
			if errors.Is(err, flights.ErrAirportClosed) {
				return c.JSON(fiber.Map{"message": closedMessage})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "API request failed: "+err.Error())
		}
		return c.JSON(b)
	})

	api.Get("/weather", func(c *fiber.Ctx) error {
		info, err := report.Current(c.UserContext())
		if err != nil {
			return weatherError(err)
		}
		return c.JSON(info)
	})
}

func weatherError(err error) *fiber.Error {
	switch {
	case errors.Is(err, weather.ErrAirportClosed):
		return fiber.NewError(fiber.StatusBadRequest, "Airport is closed")
	case errors.Is(err, weather.ErrIncomplete):
		return fiber.NewError(fiber.StatusNotFound, "NWS weather data incomplete")
	case errors.Is(err, weather.ErrNoStationsURL):
		return fiber.NewError(fiber.StatusInternalServerError, "NWS grid did not return stations URL")
	case errors.Is(err, weather.ErrNoStations):
		return fiber.NewError(fiber.StatusInternalServerError, "NWS did not find nearby stations")
	case errors.Is(err, weather.ErrNoStationID):
		return fiber.NewError(fiber.StatusInternalServerError, "Closest station has no ID")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch weather")
	}
}
