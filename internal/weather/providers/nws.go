// Package providers holds weather.Provider implementations.
package providers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/i474232898/airport-board/internal/upstream"
	"github.com/i474232898/airport-board/internal/weather"
)

const (
	DefaultNWSBaseURL   = "https://api.weather.gov"
	DefaultNWSUserAgent = "airport-board (flight information display)"

	kmhToMph = 0.621371
)

// NWSConfig configures the National Weather Service provider.
type NWSConfig struct {
	BaseURL   string
	UserAgent string
}

// NWS resolves a coordinate to its closest observation station and reads the latest
// observation. The station list is assumed to be ordered by proximity.
type NWS struct {
	cfg    NWSConfig
	caller *upstream.Caller
}

func NewNWS(cfg NWSConfig, caller *upstream.Caller) *NWS {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNWSBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultNWSUserAgent
	}
	return &NWS{cfg: cfg, caller: caller}
}

func (p *NWS) Name() string {
	return "nws"
}

type pointsResp struct {
	Properties struct {
		ObservationStations string `json:"observationStations"`
	} `json:"properties"`
}

type stationsResp struct {
	Features []struct {
		Properties struct {
			StationIdentifier string `json:"stationIdentifier"`
		} `json:"properties"`
	} `json:"features"`
}

type quantity struct {
	Value *float64 `json:"value"`
}

type observationResp struct {
	Properties struct {
		Temperature     quantity `json:"temperature"`
		WindSpeed       quantity `json:"windSpeed"`
		TextDescription string   `json:"textDescription"`
	} `json:"properties"`
}

func (p *NWS) Current(ctx context.Context, lat, lon float64) (weather.Info, error) {
	var points pointsResp
	pointsURL := p.cfg.BaseURL + "/points/" + formatCoord(lat) + "," + formatCoord(lon)
	if err := p.get(ctx, pointsURL, &points); err != nil {
		return weather.Info{}, errors.Wrap(err, "points")
	}
	stationsURL := points.Properties.ObservationStations
	if stationsURL == "" {
		return weather.Info{}, weather.ErrNoStationsURL
	}

	var stations stationsResp
	if err := p.get(ctx, stationsURL, &stations); err != nil {
		return weather.Info{}, errors.Wrap(err, "stations")
	}
	if len(stations.Features) == 0 {
		return weather.Info{}, weather.ErrNoStations
	}
	stationID := stations.Features[0].Properties.StationIdentifier
	if stationID == "" {
		return weather.Info{}, weather.ErrNoStationID
	}

	var obs observationResp
	if err := p.get(ctx, p.cfg.BaseURL+"/stations/"+stationID+"/observations/latest", &obs); err != nil {
		return weather.Info{}, errors.Wrapf(err, "latest observation %s", stationID)
	}
	props := obs.Properties
	if props.Temperature.Value == nil || props.WindSpeed.Value == nil {
		return weather.Info{}, weather.ErrIncomplete
	}

	return weather.Info{
		Temp:      *props.Temperature.Value,
		WindSpeed: KmhToMph(*props.WindSpeed.Value),
		Summary:   props.TextDescription,
	}, nil
}

// KmhToMph converts and rounds half to even.
func KmhToMph(kmh float64) int {
	return int(math.RoundToEven(kmh * kmhToMph))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *NWS) get(ctx context.Context, rawURL string, out any) error {
	resp, err := p.caller.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, errors.Wrap(err, "new request")
		}
		req.Header.Set("User-Agent", p.cfg.UserAgent)
		req.Header.Set("Accept", "application/geo+json")
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
