package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	googleMapsBaseURL  = "https://maps.googleapis.com/maps/api"
	defaultHTTPTimeout = 8 * time.Second
	addressSuffix      = ", Singapore"
)

// ErrNoResults is returned when a lookup succeeded but found nothing usable.
var ErrNoResults = errors.New("geo: no results")

// GoogleProvider implements Provider with the Google Maps Geocoding,
// Distance Matrix and Places Nearby Search APIs.
type GoogleProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewGoogleProvider creates a provider against the public Google Maps API.
func NewGoogleProvider(apiKey string) *GoogleProvider {
	return NewGoogleProviderWithOptions(apiKey, googleMapsBaseURL, nil)
}

// NewGoogleProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewGoogleProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) *GoogleProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleMapsBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &GoogleProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Geocode resolves an address in Singapore to its first candidate's coordinates.
func (g *GoogleProvider) Geocode(ctx context.Context, address string) (Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return Coordinates{}, fmt.Errorf("geo: address is required")
	}

	var resp googleGeocodeResponse
	if err := g.get(ctx, "/geocode/json", url.Values{"address": {trimmed + addressSuffix}}, &resp); err != nil {
		return Coordinates{}, err
	}
	if resp.Status != "OK" {
		return Coordinates{}, statusError("geocode", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return Coordinates{}, ErrNoResults
	}

	loc := resp.Results[0].Geometry.Location
	return Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}, nil
}

// Distance returns the route distance in meters from the Distance Matrix API.
func (g *GoogleProvider) Distance(ctx context.Context, from, to Coordinates) (int, error) {
	params := url.Values{
		"origins":      {formatLatLng(from)},
		"destinations": {formatLatLng(to)},
	}

	var resp googleDistanceMatrixResponse
	if err := g.get(ctx, "/distancematrix/json", params, &resp); err != nil {
		return 0, err
	}
	if resp.Status != "" && resp.Status != "OK" {
		return 0, statusError("distance matrix", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, ErrNoResults
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "" && element.Status != "OK" {
		return 0, statusError("distance matrix element", element.Status, "")
	}
	return element.Distance.Value, nil
}

// Nearby runs a Places Nearby Search. ZERO_RESULTS is an empty list, not an error.
func (g *GoogleProvider) Nearby(ctx context.Context, center Coordinates, radiusMeters int, category string) ([]Place, error) {
	params := url.Values{
		"location": {formatLatLng(center)},
		"radius":   {strconv.Itoa(radiusMeters)},
		"type":     {category},
	}

	var resp googleNearbyResponse
	if err := g.get(ctx, "/place/nearbysearch/json", params, &resp); err != nil {
		return nil, err
	}
	switch resp.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return []Place{}, nil
	default:
		return nil, statusError("nearby search", resp.Status, resp.ErrorMessage)
	}

	places := make([]Place, 0, len(resp.Results))
	for _, r := range resp.Results {
		places = append(places, Place{
			Name: r.Name,
			Location: Coordinates{
				Latitude:  r.Geometry.Location.Lat,
				Longitude: r.Geometry.Location.Lng,
			},
			Rating: r.Rating,
		})
	}
	return places, nil
}

func (g *GoogleProvider) get(ctx context.Context, path string, params url.Values, out any) error {
	if g.apiKey == "" {
		return fmt.Errorf("geo: google maps api key is required")
	}

	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", g.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("geo: build request %s: %w", path, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geo: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("geo: %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("geo: decode %s: %w", path, err)
	}
	return nil
}

func formatLatLng(c Coordinates) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func statusError(lookup, status, message string) error {
	if status == "ZERO_RESULTS" || status == "NOT_FOUND" {
		return fmt.Errorf("geo: %s: %s: %w", lookup, status, ErrNoResults)
	}
	if message != "" {
		return fmt.Errorf("geo: %s failed: %s - %s", lookup, status, message)
	}
	return fmt.Errorf("geo: %s failed: %s", lookup, status)
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleGeocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		FormattedAddress string         `json:"formatted_address"`
		Geometry         googleGeometry `json:"geometry"`
	} `json:"results"`
}

type googleDistanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
		} `json:"elements"`
	} `json:"rows"`
}

type googleNearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		Name     string         `json:"name"`
		Geometry googleGeometry `json:"geometry"`
		Rating   *float64       `json:"rating"`
	} `json:"results"`
}
