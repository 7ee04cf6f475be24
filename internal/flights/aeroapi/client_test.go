package aeroapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/airport-board/internal/upstream"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "secret", AirportCode: "KASG"},
		&upstream.Caller{Name: "aeroapi", Client: srv.Client()})
}

func TestClient_ActiveFlights(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/airports/KASG/flights", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("x-apikey"))
		require.Equal(t, "2", r.URL.Query().Get("max_pages"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "arrivals": [
    {"ident":"SWA123","origin":{"code_icao":"KDAL"},"aircraft_type":"B737","status":"En Route","estimated_on":"2025-03-05T18:00:00Z"},
    null
  ],
  "departures": [
    {"ident":"N123AB","destination":null,"status":"Scheduled","scheduled_off":"2025-03-05T19:00:00Z"}
  ]
}`))
	})

	got, err := c.ActiveFlights(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Arrivals, 2)
	require.Nil(t, got.Arrivals[1])
	require.Equal(t, "SWA123", got.Arrivals[0].Field("ident"))
	require.Equal(t, "KDAL", got.Arrivals[0].Origin)
	require.Equal(t, "2025-03-05T18:00:00Z", got.Arrivals[0].Field("estimated_on"))
	require.Len(t, got.Departures, 1)
	require.Equal(t, "", got.Departures[0].Destination)
}

func TestClient_ScheduledWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	start := time.Date(2025, 3, 5, 0, 0, 0, 0, loc)
	end := time.Date(2025, 3, 5, 23, 59, 59, 0, loc)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/airports/KASG/flights/scheduled_departures":
			require.Equal(t, "2025-03-05T06:00:00Z", r.URL.Query().Get("start"))
			require.Equal(t, "2025-03-06T05:59:59Z", r.URL.Query().Get("end"))
			_, _ = w.Write([]byte(`{"scheduled_departures":[{"ident":"A1","scheduled_off":"2025-03-05T20:00:00Z"}]}`))
		case "/airports/KASG/flights/scheduled_arrivals":
			_, _ = w.Write([]byte(`{"scheduled_arrivals":[{"ident":"B1","scheduled_in":"2025-03-05T21:00:00Z"},{"ident":"B2"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	deps, err := c.ScheduledDepartures(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, deps, 1)

	arrs, err := c.ScheduledArrivals(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, arrs, 2)
	require.Equal(t, "B2", arrs[1].Field("ident"))
}

func TestClient_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.ActiveFlights(context.Background())
	require.ErrorIs(t, err, upstream.ErrUnexpected)
	require.Contains(t, err.Error(), "active flights")
	require.Contains(t, err.Error(), "401")
}

func TestClient_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.ScheduledArrivals(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}
