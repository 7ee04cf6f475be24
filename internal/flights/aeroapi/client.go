// Package aeroapi fetches airport flight lists from the FlightAware AeroAPI.
package aeroapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/i474232898/airport-board/internal/flights"
	"github.com/i474232898/airport-board/internal/upstream"
)

const (
	DefaultBaseURL  = "https://aeroapi.flightaware.com/aeroapi"
	DefaultMaxPages = 2
)

// Config configures a Client.
type Config struct {
	BaseURL     string
	APIKey      string
	AirportCode string
	MaxPages    int
}

// Client implements flights.Provider.
type Client struct {
	cfg    Config
	caller *upstream.Caller
}

func New(cfg Config, caller *upstream.Caller) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	return &Client{cfg: cfg, caller: caller}
}

func (c *Client) Name() string {
	return "aeroapi"
}

type activeResp struct {
	Arrivals   []*flights.RawFlight `json:"arrivals"`
	Departures []*flights.RawFlight `json:"departures"`
}

// ActiveFlights returns recent and current flights at the airport.
func (c *Client) ActiveFlights(ctx context.Context) (flights.ActiveFlights, error) {
	q := url.Values{}
	q.Set("max_pages", strconv.Itoa(c.cfg.MaxPages))

	var r activeResp
	if err := c.get(ctx, "/airports/"+c.cfg.AirportCode+"/flights", q, &r); err != nil {
		return flights.ActiveFlights{}, errors.Wrap(err, "active flights")
	}
	return flights.ActiveFlights{Arrivals: r.Arrivals, Departures: r.Departures}, nil
}

// ScheduledDepartures returns departures scheduled between start and end.
func (c *Client) ScheduledDepartures(ctx context.Context, start, end time.Time) ([]*flights.RawFlight, error) {
	var r struct {
		ScheduledDepartures []*flights.RawFlight `json:"scheduled_departures"`
	}
	if err := c.get(ctx, c.scheduledPath("scheduled_departures"), c.window(start, end), &r); err != nil {
		return nil, errors.Wrap(err, "scheduled departures")
	}
	return r.ScheduledDepartures, nil
}

// ScheduledArrivals returns arrivals scheduled between start and end.
func (c *Client) ScheduledArrivals(ctx context.Context, start, end time.Time) ([]*flights.RawFlight, error) {
	var r struct {
		ScheduledArrivals []*flights.RawFlight `json:"scheduled_arrivals"`
	}
	if err := c.get(ctx, c.scheduledPath("scheduled_arrivals"), c.window(start, end), &r); err != nil {
		return nil, errors.Wrap(err, "scheduled arrivals")
	}
	return r.ScheduledArrivals, nil
}

func (c *Client) scheduledPath(kind string) string {
	return "/airports/" + c.cfg.AirportCode + "/flights/" + kind
}

func (c *Client) window(start, end time.Time) url.Values {
	q := url.Values{}
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	q.Set("max_pages", strconv.Itoa(c.cfg.MaxPages))
	return q
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return errors.Wrap(err, "parse base url")
	}
	u.Path += path
	u.RawQuery = q.Encode()

	resp, err := c.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, errors.Wrap(err, "new request")
		}
		req.Header.Set("x-apikey", c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}
