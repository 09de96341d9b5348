package models

import "time"

// RawListing holds one scraped listing card as text, exactly as it is
// appended to the raw CSV. No field is parsed at this stage.
type RawListing struct {
	Name                       string `json:"name"`
	Address                    string `json:"address"`
	Price                      string `json:"price"`
	Size                       string `json:"size"`
	Bedrooms                   string `json:"bedrooms"`
	Bathrooms                  string `json:"bathrooms"`
	PropertyTypeFurnishingYear string `json:"property_type_furnishing_year"`
	MRTDistance                string `json:"mrt_distance"`
	AgentDescription           string `json:"agent_description"`

	URL       string    `json:"url"`
	RunID     string    `json:"run_id"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Field is a single isolated text fragment of a listing card. Present is
// false when the card has no node for the field at all.
type Field struct {
	Text    string
	Present bool
}

// Has returns a present Field.
func Has(text string) Field { return Field{Text: text, Present: true} }

// Fragments are the per-field text nodes of one listing, already isolated
// from the page by the scraper (or rebuilt from a stored RawListing).
type Fragments struct {
	Name    Field
	Address Field
	Price   Field
	// Sizes holds every area-like fragment on the card, e.g. "1,023 sqft"
	// and "S$ 3.42 psf"; only the sqft one is kept.
	Sizes []string
	// Rooms is the whole rooms block text; Beds and Baths are its two
	// sub-labels when the block carries them.
	Rooms Field
	Beds  Field
	Baths Field
	// Details are the badges of the property type / furnishing / year block.
	Details          []string
	MRT              Field
	AgentDescription Field
	URL              string
}

// ListingRecord is a parsed listing (or form submission) with each field
// coerced to its semantic type. A nil pointer or empty string means missing.
type ListingRecord struct {
	Name             string `json:"name"`
	Address          string `json:"address"`
	Price            string `json:"price"`
	SizeSqft         *int   `json:"size_sqft"`
	Bedrooms         string `json:"bedrooms"`
	Bathrooms        *int   `json:"bathrooms"`
	PropertyType     string `json:"property_type"`
	Furnishing       string `json:"furnishing"`
	BuiltYear        *int   `json:"built_year"`
	MetersToMRT      *int   `json:"meters_to_mrt"`
	AgentDescription string `json:"agent_description"`
	URL              string `json:"url,omitempty"`
}

// EnrichedRecord is a ListingRecord plus the geospatial and text-derived
// features. Geo fields are nil when their lookup failed or was skipped.
type EnrichedRecord struct {
	ListingRecord

	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	MetersToCBD       *int     `json:"meters_to_cbd"`
	SchoolLatitude    *float64 `json:"school_latitude"`
	SchoolLongitude   *float64 `json:"school_longitude"`
	MetersToSchool    *int     `json:"meters_to_school"`
	RestaurantsRating *float64 `json:"restaurants_rating"`

	HighFloor bool `json:"high_floor"`
	New       bool `json:"new"`
	Renovated bool `json:"renovated"`
	View      bool `json:"view"`
	Penthouse bool `json:"penthouse"`
}

// Estimate is the outcome of one price estimation.
type Estimate struct {
	Prediction float64       `json:"prediction"`
	Features   FeatureVector `json:"features"`
}

// BatchSummary holds the computed analytics over one processed batch.
type BatchSummary struct {
	TotalListings      int
	ExtractionFailures int
	Geocoded           int
	AverageSizeSqft    float64
	AverageMonthlyRent float64
	MinMonthlyRent     float64
	MaxMonthlyRent     float64
	MostExpensive      *ListingRecord
	ByPropertyType     map[string]int
	ByBedrooms         map[string]int
	FlagCounts         map[string]int
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
