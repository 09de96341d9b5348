package models

// FeatureNames is the column order the model transform was fitted on.
// Position and spelling are part of the model contract.
var FeatureNames = []string{
	"size",
	"bedrooms",
	"bathrooms",
	"latitude",
	"longitude",
	"meters_to_cbd",
	"meters_to_school",
	"restaurants_rating",
	"property_type",
	"furnishing",
	"built_year",
	"meters_to_mrt",
	"high_floor",
	"new",
	"renovated",
	"view",
	"penthouse",
}

// FeatureVector is the model-ready input for one listing. The pointer
// fields have no imputation rule and stay nil when their lookup failed.
type FeatureVector struct {
	Size              *int     `json:"size"`
	Bedrooms          string   `json:"bedrooms"`
	Bathrooms         int      `json:"bathrooms"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	MetersToCBD       *int     `json:"meters_to_cbd"`
	MetersToSchool    int      `json:"meters_to_school"`
	RestaurantsRating *float64 `json:"restaurants_rating"`
	PropertyType      string   `json:"property_type"`
	Furnishing        string   `json:"furnishing"`
	BuiltYear         int      `json:"built_year"`
	MetersToMRT       int      `json:"meters_to_mrt"`
	HighFloor         bool     `json:"high_floor"`
	New               bool     `json:"new"`
	Renovated         bool     `json:"renovated"`
	View              bool     `json:"view"`
	Penthouse         bool     `json:"penthouse"`
}

// Names returns FeatureNames.
func (FeatureVector) Names() []string {
	return append([]string(nil), FeatureNames...)
}

// Values returns the vector in FeatureNames order. Missing values are nil.
func (v FeatureVector) Values() []any {
	return []any{
		intOrNil(v.Size),
		v.Bedrooms,
		v.Bathrooms,
		floatOrNil(v.Latitude),
		floatOrNil(v.Longitude),
		intOrNil(v.MetersToCBD),
		v.MetersToSchool,
		floatOrNil(v.RestaurantsRating),
		v.PropertyType,
		v.Furnishing,
		v.BuiltYear,
		v.MetersToMRT,
		v.HighFloor,
		v.New,
		v.Renovated,
		v.View,
		v.Penthouse,
	}
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
