// Package weather looks up the current temperature for a city from a
// MetaWeather-style location API.
//
// A lookup is two requests: the location search endpoint resolves a city name
// to a location identifier (woeid), and the location detail endpoint returns
// the consolidated forecast for it. Element 0 of the consolidated forecast is
// treated as the current conditions.
package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/ztprofile/pkg/config"
	"github.com/vanderheijden86/ztprofile/pkg/debug"
	"github.com/vanderheijden86/ztprofile/pkg/metrics"
)

// Common errors.
var (
	ErrLocationNotFound = errors.New("location not found")
	ErrNoForecast       = errors.New("no consolidated weather in response")
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Provider returns the current temperature in degrees Celsius for a city.
type Provider interface {
	CurrentTemperature(ctx context.Context, city string) (float64, error)
}

// Location is one entry of the location search response.
type Location struct {
	Title string `json:"title"`
	WOEID int64  `json:"woeid"`
}

// Conditions is one entry of the consolidated weather list.
type Conditions struct {
	ApplicableDate string  `json:"applicable_date"`
	StateName      string  `json:"weather_state_name"`
	Temp           float64 `json:"the_temp"`
	MinTemp        float64 `json:"min_temp"`
	MaxTemp        float64 `json:"max_temp"`
}

type locationDetail struct {
	Title        string       `json:"title"`
	Consolidated []Conditions `json:"consolidated_weather"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// Client talks to the location API. It performs no retries and sets no
// timeout of its own; callers bound a lookup with the context they pass.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the configured base URL.
func NewClient(cfg config.WeatherConfig, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentTemperature resolves city to a location and returns the_temp of the
// first consolidated weather entry.
func (c *Client) CurrentTemperature(ctx context.Context, city string) (float64, error) {
	defer metrics.Timer(metrics.WeatherFetch)()
	defer debug.LogEnterExit("weather " + city)()

	loc, err := c.Search(ctx, city)
	if err != nil {
		return 0, err
	}

	cond, err := c.Current(ctx, loc.WOEID)
	if err != nil {
		return 0, err
	}
	return cond.Temp, nil
}

// Search returns the first location matching city.
func (c *Client) Search(ctx context.Context, city string) (Location, error) {
	endpoint := c.baseURL + "/search/?query=" + url.QueryEscape(city)

	var results []Location
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return Location{}, fmt.Errorf("searching %q: %w", city, err)
	}
	if len(results) == 0 {
		return Location{}, fmt.Errorf("searching %q: %w", city, ErrLocationNotFound)
	}
	return results[0], nil
}

// Current returns the first consolidated weather entry for a location.
func (c *Client) Current(ctx context.Context, woeid int64) (Conditions, error) {
	endpoint := c.baseURL + "/" + strconv.FormatInt(woeid, 10)

	var detail locationDetail
	if err := c.getJSON(ctx, endpoint, &detail); err != nil {
		return Conditions{}, fmt.Errorf("location %d: %w", woeid, err)
	}
	if len(detail.Consolidated) == 0 {
		return Conditions{}, fmt.Errorf("location %d: %w", woeid, ErrNoForecast)
	}
	return detail.Consolidated[0], nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
