package api

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"rental-estimator/models"
)

// EstimateRequest is the JSON body of POST /api/estimate. It carries the same
// fields as the estimation form.
type EstimateRequest struct {
	Size             *int   `json:"size"`
	Bedrooms         string `json:"bedrooms"`
	Bathrooms        *int   `json:"bathrooms"`
	Address          string `json:"address"`
	PropertyType     string `json:"property_type"`
	Furnishing       string `json:"furnishing"`
	BuiltYear        *int   `json:"built_year"`
	MetersToMRT      *int   `json:"meters_to_mrt"`
	AgentDescription string `json:"agent_description"`
}

// Record validates the request and converts it to a ListingRecord. It
// returns a *models.ValidationError listing every invalid field.
func (r EstimateRequest) Record() (models.ListingRecord, error) {
	verr := models.NewValidationError()

	rec := models.ListingRecord{
		Address:          strings.TrimSpace(r.Address),
		Bedrooms:         strings.TrimSpace(r.Bedrooms),
		PropertyType:     strings.TrimSpace(r.PropertyType),
		Furnishing:       strings.TrimSpace(r.Furnishing),
		AgentDescription: strings.TrimSpace(r.AgentDescription),
		SizeSqft:         r.Size,
		Bathrooms:        r.Bathrooms,
		BuiltYear:        r.BuiltYear,
		MetersToMRT:      r.MetersToMRT,
	}

	switch {
	case rec.SizeSqft == nil:
		verr.Add("size", "This field is required.")
	case *rec.SizeSqft <= 0:
		verr.Add("size", "Must be a positive number.")
	}

	switch {
	case rec.Bedrooms == "":
		verr.Add("bedrooms", "This field is required.")
	case !models.Contains(models.BedroomChoices, rec.Bedrooms):
		verr.Add("bedrooms", "Not a valid choice.")
	}

	if rec.Address == "" {
		verr.Add("address", "This field is required.")
	}

	switch {
	case rec.PropertyType == "":
		verr.Add("property_type", "This field is required.")
	case !models.Contains(models.PropertyTypes, rec.PropertyType):
		verr.Add("property_type", "Not a valid choice.")
	}

	if rec.Furnishing != "" && !models.Contains(models.FurnishingChoices, rec.Furnishing) {
		verr.Add("furnishing", "Not a valid choice.")
	}
	if rec.Bathrooms != nil && *rec.Bathrooms < 0 {
		verr.Add("bathrooms", "Must not be negative.")
	}
	if rec.MetersToMRT != nil && *rec.MetersToMRT < 0 {
		verr.Add("meters_to_mrt", "Must not be negative.")
	}

	if verr.HasErrors() {
		return models.ListingRecord{}, verr
	}
	return rec, nil
}

// requestFromForm reads the form inputs into an EstimateRequest. Integer
// inputs that do not parse are reported in the returned ValidationError.
func requestFromForm(form url.Values) (EstimateRequest, *models.ValidationError) {
	verr := models.NewValidationError()

	optionalInt := func(field string) *int {
		raw := strings.TrimSpace(form.Get(field))
		if raw == "" {
			return nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			verr.Add(field, "Not a valid integer value.")
			return nil
		}
		return &n
	}

	req := EstimateRequest{
		Size:             optionalInt("size"),
		Bedrooms:         form.Get("bedrooms"),
		Bathrooms:        optionalInt("bathrooms"),
		Address:          form.Get("address"),
		PropertyType:     form.Get("property_type"),
		Furnishing:       form.Get("furnishing"),
		BuiltYear:        optionalInt("built_year"),
		MetersToMRT:      optionalInt("meters_to_mrt"),
		AgentDescription: form.Get("agent_description"),
	}
	return req, verr
}

// mergeValidation combines parse errors with validation errors. Parse errors
// win for the same field.
func mergeValidation(parse *models.ValidationError, err error) error {
	if !parse.HasErrors() {
		return err
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		for field, msg := range verr.Fields {
			if _, exists := parse.Fields[field]; !exists {
				parse.Add(field, msg)
			}
		}
	}
	return parse
}
