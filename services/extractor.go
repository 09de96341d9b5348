package services

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"rental-estimator/models"
	"rental-estimator/utils"
)

// fragmentSep joins multi-node fields in the raw CSV.
const fragmentSep = " | "

var (
	// intRegexp captures the first integer, allowing thousands separators.
	intRegexp = regexp.MustCompile(`\d[\d,]*`)
	// bedsRegexp captures a bed count with an optional "+" suffix.
	bedsRegexp = regexp.MustCompile(`(\d+)\s*(\+)?`)
	// distanceRegexp captures "400 m" or "1.2 km".
	distanceRegexp = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(km|m)\b`)
	// sqftRegexp captures an area whose number sits directly before the unit.
	sqftRegexp = regexp.MustCompile(`(?i)(?:^|[^\d.,])(\d[\d,]*)\s*sqft\b`)
	// yearRegexp captures a four-digit built year.
	yearRegexp = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// Extractor turns isolated listing fragments into typed ListingRecords.
type Extractor struct {
	logger *utils.Logger
}

// NewExtractor creates an Extractor with the given logger.
func NewExtractor(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract parses one listing. Missing sub-fields become empty values; only a
// description without its quoted segment is an error.
func (e *Extractor) Extract(f models.Fragments) (models.ListingRecord, error) {
	rec := models.ListingRecord{
		Name:     normaliseText(f.Name.Text),
		Address:  normaliseText(f.Address.Text),
		Price:    normaliseText(f.Price.Text),
		SizeSqft: ParseSize(f.Sizes),
		URL:      strings.TrimSpace(f.URL),
	}

	rec.Bedrooms, rec.Bathrooms = ParseRooms(f.Rooms, f.Beds, f.Baths)
	rec.PropertyType, rec.Furnishing, rec.BuiltYear = ParseDetails(f.Details)
	rec.MetersToMRT = ParseMRTDistance(f.MRT)

	if f.AgentDescription.Present {
		desc, err := ParseDescription(f.AgentDescription.Text)
		if err != nil {
			return models.ListingRecord{}, err
		}
		rec.AgentDescription = desc
	}

	return rec, nil
}

// ExtractBatch parses every listing, skipping (and logging) the ones whose
// description is malformed. It returns the records and the skipped count.
func (e *Extractor) ExtractBatch(batch []models.Fragments) ([]models.ListingRecord, int) {
	records := make([]models.ListingRecord, 0, len(batch))
	failed := 0

	for _, f := range batch {
		rec, err := e.Extract(f)
		if err != nil {
			var malformed *models.MalformedDescriptionError
			if errors.As(err, &malformed) {
				e.logger.Warn("[extractor] Skipping %q: %v", normaliseText(f.Name.Text), err)
			} else {
				e.logger.Error("[extractor] Skipping %q: %v", normaliseText(f.Name.Text), err)
			}
			failed++
			continue
		}
		records = append(records, rec)
	}

	e.logger.Info("[extractor] Extracted %d → %d records (skipped %d)", len(batch), len(records), failed)
	return records, failed
}

// ParseRooms derives bedrooms and bathrooms from the rooms block.
// "Room" and "Studio" listings never carry a bathroom count.
func ParseRooms(rooms, beds, baths models.Field) (string, *int) {
	if !rooms.Present {
		return "", nil
	}
	if strings.Contains(rooms.Text, models.BedroomsRoom) {
		return models.BedroomsRoom, nil
	}
	if strings.Contains(rooms.Text, models.BedroomsStudio) {
		return models.BedroomsStudio, nil
	}

	bedrooms := ""
	if beds.Present {
		if m := bedsRegexp.FindStringSubmatch(beds.Text); m != nil {
			n, err := strconv.Atoi(m[1])
			switch {
			case err != nil || n < 1:
			case n >= 7 || m[2] == "+":
				bedrooms = models.BedroomsSeven
			default:
				bedrooms = strconv.Itoa(n)
			}
		}
	}

	var bathrooms *int
	if baths.Present {
		bathrooms = parseInt(baths.Text)
	}
	return bedrooms, bathrooms
}

// ParseSize returns the floor area from the first fragment measured in sqft.
// Fragments in any other unit, such as price per square foot, are ignored.
func ParseSize(sizes []string) *int {
	for _, s := range sizes {
		if strings.Contains(strings.ToLower(s), "psf") {
			continue
		}
		if m := sqftRegexp.FindStringSubmatch(s); m != nil {
			if n := parseInt(m[1]); n != nil {
				return n
			}
		}
	}
	return nil
}

// ParseDescription returns the text between the first pair of double quotes
// of a `Listed by <agent> "<description>"` string.
func ParseDescription(text string) (string, error) {
	start := strings.IndexByte(text, '"')
	if start < 0 {
		return "", &models.MalformedDescriptionError{Text: text}
	}
	end := strings.IndexByte(text[start+1:], '"')
	if end < 0 {
		return "", &models.MalformedDescriptionError{Text: text}
	}
	return text[start+1 : start+1+end], nil
}

// ParseMRTDistance returns the walking distance to the nearest MRT station in
// meters, or nil when the listing has no MRT block.
func ParseMRTDistance(mrt models.Field) *int {
	if !mrt.Present {
		return nil
	}
	m := distanceRegexp.FindStringSubmatch(mrt.Text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil
	}
	if m[2] == "km" {
		v *= 1000
	}
	return models.IntPtr(int(v + 0.5))
}

// ParseDetails classifies the badges of the details block into property
// type, furnishing and built year. Unrecognised badges are ignored.
func ParseDetails(details []string) (propertyType, furnishing string, builtYear *int) {
	for _, d := range details {
		d = normaliseText(d)
		switch {
		case d == "":
		case models.Contains(models.PropertyTypes, d):
			propertyType = d
		case models.Contains(models.FurnishingChoices, d):
			furnishing = d
		default:
			if m := yearRegexp.FindStringSubmatch(d); m != nil && builtYear == nil {
				year, _ := strconv.Atoi(m[1])
				builtYear = models.IntPtr(year)
			}
		}
	}
	return propertyType, furnishing, builtYear
}

// FromRaw rebuilds the fragments of a stored raw listing row so it can be
// re-extracted offline.
func FromRaw(r models.RawListing) models.Fragments {
	field := func(s string) models.Field {
		s = strings.TrimSpace(s)
		return models.Field{Text: s, Present: s != ""}
	}

	f := models.Fragments{
		Name:             field(r.Name),
		Address:          field(r.Address),
		Price:            field(r.Price),
		Sizes:            splitFragments(r.Size),
		Beds:             field(r.Bedrooms),
		Baths:            field(r.Bathrooms),
		Details:          splitFragments(r.PropertyTypeFurnishingYear),
		MRT:              field(r.MRTDistance),
		AgentDescription: field(r.AgentDescription),
		URL:              r.URL,
	}
	f.Rooms = field(strings.TrimSpace(r.Bedrooms + " " + r.Bathrooms))
	return f
}

// JoinFragments joins multi-node fields for the raw CSV.
func JoinFragments(parts []string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = normaliseText(p); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, fragmentSep)
}

func splitFragments(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, strings.TrimSpace(fragmentSep))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseInt(s string) *int {
	match := intRegexp.FindString(s)
	if match == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.ReplaceAll(match, ",", ""))
	if err != nil {
		return nil
	}
	return &n
}
