package models

// Bedroom categories accepted by the model.
const (
	BedroomsRoom   = "Room"
	BedroomsStudio = "Studio"
	BedroomsSeven  = "7+"
)

// BedroomChoices is the closed set of bedroom values, in form order.
var BedroomChoices = []string{BedroomsRoom, BedroomsStudio, "1", "2", "3", "4", "5", "6", BedroomsSeven}

// PropertyTypes is the closed set of property type categories.
var PropertyTypes = []string{
	"Condominium",
	"Apartment",
	"HDB Flat",
	"Semi-Detached House",
	"Good Class Bungalow",
	"Corner Terrace",
	"Detached House",
	"Executive Condominium",
	"Terraced House",
	"Bungalow House",
	"Cluster House",
}

// Furnishing values.
const (
	FullyFurnished     = "Fully Furnished"
	PartiallyFurnished = "Partially Furnished"
	Unfurnished        = "Unfurnished"
)

// FurnishingChoices is the closed set of furnishing values.
var FurnishingChoices = []string{FullyFurnished, PartiallyFurnished, Unfurnished}

// Contains reports whether v is one of set.
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
