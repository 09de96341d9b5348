package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-estimator/estimator"
	"rental-estimator/geo"
	"rental-estimator/models"
	"rental-estimator/services"
	"rental-estimator/utils"
)

type recordingPredictor struct {
	got   models.FeatureVector
	calls int
	err   error
}

func (p *recordingPredictor) Predict(_ context.Context, features models.FeatureVector) (float64, error) {
	p.calls++
	p.got = features
	if p.err != nil {
		return 0, p.err
	}
	return 3275.25, nil
}

func newTestServer(predictor estimator.Predictor) http.Handler {
	logger := utils.NewNopLogger()
	pipeline := services.NewPipeline(
		services.NewEnricher(geo.NewStaticProvider(), logger),
		services.NewImputer(),
		1, 0, logger,
	)
	return NewServer(pipeline, predictor, logger).Router()
}

func validForm() url.Values {
	return url.Values{
		"size":              {"900"},
		"bedrooms":          {"Studio"},
		"address":           {"1 Tanjong Pagar Plaza"},
		"property_type":     {"HDB Flat"},
		"furnishing":        {""},
		"agent_description": {"Renovated unit with park view"},
	}
}

func postForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestFormPageRendersChoices(t *testing.T) {
	h := newTestServer(estimator.NewFixedPredictor())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<option value="7&#43;">7&#43;</option>`)
	assert.Contains(t, body, `<option value="Good Class Bungalow">`)
	assert.NotContains(t, body, "Estimated rent")
}

func TestFormSubmitShowsPrediction(t *testing.T) {
	predictor := &recordingPredictor{}
	rec := postForm(newTestServer(predictor), validForm())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "S$ 3275.25")
	assert.Contains(t, rec.Body.String(), `<option value="Studio" selected>`)

	require.Equal(t, 1, predictor.calls)
	v := predictor.got
	assert.Equal(t, 1, v.Bathrooms)
	assert.Equal(t, "Partially Furnished", v.Furnishing)
	assert.Equal(t, 2013, v.BuiltYear)
	assert.Equal(t, 450, v.MetersToMRT)
	assert.Equal(t, 450, v.MetersToSchool)
	assert.Equal(t, 10750, *v.MetersToCBD)
	assert.Equal(t, 4.0, *v.RestaurantsRating)
	assert.True(t, v.Renovated)
	assert.True(t, v.View)
	assert.False(t, v.New)
}

func TestFormSubmitValidationErrors(t *testing.T) {
	predictor := &recordingPredictor{}
	form := validForm()
	form.Del("address")
	form.Set("size", "big")
	form.Set("bedrooms", "12")

	rec := postForm(newTestServer(predictor), form)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Not a valid integer value.")
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Not a valid choice.")
	assert.Equal(t, 0, predictor.calls)
}

func TestFormSubmitModelFailure(t *testing.T) {
	rec := postForm(newTestServer(&recordingPredictor{err: errors.New("model down")}), validForm())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not be computed")
}

func TestEstimateJSON(t *testing.T) {
	predictor := &recordingPredictor{}
	rec := postJSON(newTestServer(predictor), `{
  "size": 1250,
  "bedrooms": "7+",
  "address": "Sentosa Cove",
  "property_type": "Bungalow House",
  "furnishing": "Fully Furnished",
  "built_year": 2020,
  "agent_description": "Penthouse on a high floor with sea view"
}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Estimate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 3275.25, got.Prediction)
	assert.Equal(t, 7, got.Features.Bathrooms)
	assert.Equal(t, 2020, got.Features.BuiltYear)
	assert.Equal(t, "Fully Furnished", got.Features.Furnishing)
	assert.True(t, got.Features.Penthouse)
	assert.True(t, got.Features.HighFloor)
	assert.True(t, got.Features.View)
}

func TestEstimateJSONValidation(t *testing.T) {
	rec := postJSON(newTestServer(&recordingPredictor{}), `{"bedrooms": "3", "property_type": "Castle"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var got struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Validation failed", got.Error)
	assert.Contains(t, got.Fields, "size")
	assert.Contains(t, got.Fields, "address")
	assert.Equal(t, "Not a valid choice.", got.Fields["property_type"])
	assert.NotContains(t, got.Fields, "bedrooms")
}

func TestEstimateJSONBadBody(t *testing.T) {
	rec := postJSON(newTestServer(&recordingPredictor{}), `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(estimator.NewFixedPredictor()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.NewValidationError()))
	assert.Equal(t, http.StatusBadRequest, statusFor(&models.UnknownBedroomsError{Value: "x"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
