package services

import (
	"strconv"

	"rental-estimator/models"
)

// Fallback values for missing fields, taken from the training set.
const (
	DefaultMetersToSchool = 9689 // maximum
	DefaultMetersToMRT    = 450  // median
	DefaultFurnishing     = models.PartiallyFurnished
	DefaultBuiltYear      = 2013 // median
)

// Imputer fills the missing fields of an enriched record with fixed values
// and lays the result out as a FeatureVector. Present values are never
// overwritten. Coordinates, the CBD distance and the restaurant rating have
// no fallback and stay nil.
type Imputer struct{}

// NewImputer creates an Imputer.
func NewImputer() *Imputer {
	return &Imputer{}
}

// Impute returns the model-ready vector for rec. It fails with
// *models.UnknownBedroomsError when bedrooms is outside the closed set.
func (im *Imputer) Impute(rec models.EnrichedRecord) (models.FeatureVector, error) {
	bathrooms, err := imputeBathrooms(rec.Bedrooms, rec.Bathrooms)
	if err != nil {
		return models.FeatureVector{}, err
	}

	furnishing := rec.Furnishing
	if furnishing == "" {
		furnishing = DefaultFurnishing
	}

	return models.FeatureVector{
		Size:              copyInt(rec.SizeSqft),
		Bedrooms:          rec.Bedrooms,
		Bathrooms:         bathrooms,
		Latitude:          copyFloat(rec.Latitude),
		Longitude:         copyFloat(rec.Longitude),
		MetersToCBD:       copyInt(rec.MetersToCBD),
		MetersToSchool:    intOr(rec.MetersToSchool, DefaultMetersToSchool),
		RestaurantsRating: copyFloat(rec.RestaurantsRating),
		PropertyType:      rec.PropertyType,
		Furnishing:        furnishing,
		BuiltYear:         intOr(rec.BuiltYear, DefaultBuiltYear),
		MetersToMRT:       intOr(rec.MetersToMRT, DefaultMetersToMRT),
		HighFloor:         rec.HighFloor,
		New:               rec.New,
		Renovated:         rec.Renovated,
		View:              rec.View,
		Penthouse:         rec.Penthouse,
	}, nil
}

// imputeBathrooms keeps a present count; otherwise one bathroom per bedroom,
// with Room and Studio counting as one and 7+ as seven.
func imputeBathrooms(bedrooms string, bathrooms *int) (int, error) {
	if bathrooms != nil {
		return *bathrooms, nil
	}
	if !models.Contains(models.BedroomChoices, bedrooms) {
		return 0, &models.UnknownBedroomsError{Value: bedrooms}
	}

	switch bedrooms {
	case models.BedroomsRoom, models.BedroomsStudio:
		return 1, nil
	case models.BedroomsSeven:
		return 7, nil
	default:
		n, err := strconv.Atoi(bedrooms)
		if err != nil {
			return 0, &models.UnknownBedroomsError{Value: bedrooms}
		}
		return n, nil
	}
}

func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
