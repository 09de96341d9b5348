package api

import (
	"errors"
	"net/url"

	"rental-estimator/models"
)

type option struct {
	Value    string
	Selected bool
}

// formView is the data rendered into the estimation page.
type formView struct {
	Values       url.Values
	Errors       map[string]string
	Message      string
	Prediction   string
	Bedrooms     []option
	PropertyType []option
	Furnishing   []option
}

func newFormView(values url.Values) formView {
	if values == nil {
		values = url.Values{}
	}
	return formView{
		Values:       values,
		Errors:       map[string]string{},
		Bedrooms:     options(models.BedroomChoices, values.Get("bedrooms")),
		PropertyType: options(models.PropertyTypes, values.Get("property_type")),
		Furnishing:   options(append([]string{""}, models.FurnishingChoices...), values.Get("furnishing")),
	}
}

func (v formView) withError(message string) formView {
	v.Message = message
	return v
}

// withFailure shows field errors for validation failures and a generic
// message otherwise.
func (v formView) withFailure(err error) formView {
	var verr *models.ValidationError
	var unknown *models.UnknownBedroomsError
	switch {
	case errors.As(err, &verr):
		v.Errors = verr.Fields
	case errors.As(err, &unknown):
		v.Errors = map[string]string{"bedrooms": "Not a valid choice."}
	default:
		v.Message = "The estimate could not be computed. Please try again later."
	}
	return v
}

func options(values []string, selected string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		out = append(out, option{Value: v, Selected: v == selected})
	}
	return out
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Rental Price Estimator</title>
  <style>
    body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
    label { display: block; margin-top: .8rem; font-weight: bold; }
    input, select, textarea { width: 100%; padding: .3rem; }
    .error { color: #b00020; font-size: .9rem; }
    .prediction { font-size: 1.4rem; margin-top: 1.5rem; }
  </style>
</head>
<body>
  <h1>Rental Price Estimator</h1>
  {{with .Message}}<p class="error">{{.}}</p>{{end}}
  <form method="post" action="/">
    <label for="size">Size (in sqft):</label>
    <input id="size" name="size" type="number" value="{{.Values.Get "size"}}">
    {{with index .Errors "size"}}<span class="error">{{.}}</span>{{end}}

    <label for="bedrooms">Bedrooms:</label>
    <select id="bedrooms" name="bedrooms">
      {{range .Bedrooms}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}
    </select>
    {{with index .Errors "bedrooms"}}<span class="error">{{.}}</span>{{end}}

    <label for="bathrooms">Bathrooms:</label>
    <input id="bathrooms" name="bathrooms" type="number" value="{{.Values.Get "bathrooms"}}">
    {{with index .Errors "bathrooms"}}<span class="error">{{.}}</span>{{end}}

    <label for="address">Address:</label>
    <textarea id="address" name="address">{{.Values.Get "address"}}</textarea>
    {{with index .Errors "address"}}<span class="error">{{.}}</span>{{end}}

    <label for="property_type">Property type:</label>
    <select id="property_type" name="property_type">
      {{range .PropertyType}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}
    </select>
    {{with index .Errors "property_type"}}<span class="error">{{.}}</span>{{end}}

    <label for="furnishing">Furnishing:</label>
    <select id="furnishing" name="furnishing">
      {{range .Furnishing}}<option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Value}}</option>{{end}}
    </select>
    {{with index .Errors "furnishing"}}<span class="error">{{.}}</span>{{end}}

    <label for="built_year">Built year:</label>
    <input id="built_year" name="built_year" type="number" value="{{.Values.Get "built_year"}}">
    {{with index .Errors "built_year"}}<span class="error">{{.}}</span>{{end}}

    <label for="meters_to_mrt">Meters to MRT:</label>
    <input id="meters_to_mrt" name="meters_to_mrt" type="number" value="{{.Values.Get "meters_to_mrt"}}">
    {{with index .Errors "meters_to_mrt"}}<span class="error">{{.}}</span>{{end}}

    <label for="agent_description">Agent description:</label>
    <textarea id="agent_description" name="agent_description">{{.Values.Get "agent_description"}}</textarea>

    <p><button type="submit">Estimate</button></p>
  </form>
  {{with .Prediction}}<p class="prediction">Estimated rent: <strong>S$ {{.}}</strong> per month</p>{{end}}
</body>
</html>
`
