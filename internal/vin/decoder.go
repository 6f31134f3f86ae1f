package vin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ukydev/fleet-maintenance/internal/models"
)

// DecodedVehicle holds the vehicle attributes derived from a VIN.
type DecodedVehicle struct {
	VIN   string `json:"vin"`
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year"`
}

// Decoder resolves a VIN to vehicle attributes.
type Decoder interface {
	Decode(ctx context.Context, vin string) (*DecodedVehicle, error)
}

// HTTPDecoder queries the NHTSA vPIC DecodeVinValues endpoint.
type HTTPDecoder struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDecoder creates a VIN decoder against the given vPIC base URL,
// e.g. "https://vpic.nhtsa.dot.gov/api/vehicles".
func NewHTTPDecoder(baseURL string) *HTTPDecoder {
	return &HTTPDecoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type vpicResponse struct {
	Results []struct {
		Make      string `json:"Make"`
		Model     string `json:"Model"`
		ModelYear string `json:"ModelYear"`
		ErrorCode string `json:"ErrorCode"`
	} `json:"Results"`
}

// Decode looks the VIN up and returns the decoded attributes. A VIN the
// upstream service cannot resolve yields a ValidationError.
func (d *HTTPDecoder) Decode(ctx context.Context, vin string) (*DecodedVehicle, error) {
	if len(vin) != 17 {
		return nil, &models.ValidationError{Field: "vin", Reason: "must be 17 characters"}
	}

	u := fmt.Sprintf("%s/DecodeVinValues/%s?format=json", d.baseURL, url.PathEscape(vin))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vin decode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vin decode request failed: status %d", resp.StatusCode)
	}

	var body vpicResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("vin decode response malformed: %w", err)
	}
	if len(body.Results) == 0 {
		return nil, &models.ValidationError{Field: "vin", Reason: "could not be decoded"}
	}

	result := body.Results[0]
	if result.Make == "" {
		return nil, &models.ValidationError{Field: "vin", Reason: "could not be decoded"}
	}

	year, _ := strconv.Atoi(result.ModelYear)
	return &DecodedVehicle{
		VIN:   vin,
		Make:  result.Make,
		Model: result.Model,
		Year:  year,
	}, nil
}
