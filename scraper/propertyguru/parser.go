package propertyguru

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"rental-estimator/config"
	"rental-estimator/models"
	"rental-estimator/services"
)

// SearchSummary is the result count block at the top of the first page.
type SearchSummary struct {
	TotalProperties int
	Pages           int
}

// Card is one listing card isolated from a results page: its raw CSV row and
// the per-field fragments the extractor works on.
type Card struct {
	Raw       models.RawListing
	Fragments models.Fragments
}

// ParseSummary reads the total property count and the number of result
// pages. "2,345 Properties for rent" gives 2345.
func ParseSummary(html []byte, sel config.Selectors) (SearchSummary, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return SearchSummary{}, fmt.Errorf("parse summary page: %w", err)
	}

	summaryText := strings.TrimSpace(doc.Find(sel.SearchSummary).First().Text())
	fields := strings.Fields(summaryText)
	if len(fields) == 0 {
		return SearchSummary{}, fmt.Errorf("search summary %q not found", sel.SearchSummary)
	}
	total, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return SearchSummary{}, fmt.Errorf("parse property count %q: %w", fields[0], err)
	}

	// The last numbered pagination link is the page count; arrows and
	// ellipses are skipped.
	pages := 0
	doc.Find(sel.Pagination).First().Find("li").Each(func(_ int, li *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(li.Text())); err == nil && n > pages {
			pages = n
		}
	})

	return SearchSummary{TotalProperties: total, Pages: pages}, nil
}

// ParsePage isolates every listing card on a results page. Relative links
// are resolved against pageURL.
func ParsePage(html []byte, sel config.Selectors, pageURL string) ([]Card, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	base, _ := url.Parse(pageURL)

	var cards []Card
	doc.Find(sel.Card).Each(func(_ int, s *goquery.Selection) {
		cards = append(cards, parseCard(s, sel, base))
	})
	return cards, nil
}

func parseCard(s *goquery.Selection, sel config.Selectors, base *url.URL) Card {
	f := models.Fragments{
		Name:             textField(s.Find(sel.Name)),
		Address:          textField(s.Find(sel.Address)),
		Price:            textField(s.Find(sel.Price)),
		Sizes:            texts(s.Find(sel.Size)),
		Details:          texts(s.Find(sel.Details)),
		MRT:              textField(s.Find(sel.MRT)),
		AgentDescription: textField(s.Find(sel.Agent)),
	}

	rooms := s.Find(sel.Rooms).First()
	if rooms.Length() > 0 {
		f.Rooms = models.Has(clean(rooms.Text()))
		f.Beds = textField(rooms.Find(sel.Beds))
		f.Baths = textField(rooms.Find(sel.Baths))
	}

	if href, ok := s.Find(sel.Link).First().Attr("href"); ok {
		f.URL = resolve(base, href)
	}

	return Card{Raw: rawRow(f), Fragments: f}
}

// rawRow lays the fragments out as the persisted text columns. A Room or
// Studio marker in the rooms block wins over any bed sub-label.
func rawRow(f models.Fragments) models.RawListing {
	bedrooms := f.Beds.Text
	switch {
	case strings.Contains(f.Rooms.Text, models.BedroomsRoom):
		bedrooms = models.BedroomsRoom
	case strings.Contains(f.Rooms.Text, models.BedroomsStudio):
		bedrooms = models.BedroomsStudio
	}

	return models.RawListing{
		Name:                       f.Name.Text,
		Address:                    f.Address.Text,
		Price:                      f.Price.Text,
		Size:                       services.JoinFragments(f.Sizes),
		Bedrooms:                   bedrooms,
		Bathrooms:                  f.Baths.Text,
		PropertyTypeFurnishingYear: services.JoinFragments(f.Details),
		MRTDistance:                f.MRT.Text,
		AgentDescription:           f.AgentDescription.Text,
		URL:                        f.URL,
	}
}

func textField(s *goquery.Selection) models.Field {
	if s.Length() == 0 {
		return models.Field{}
	}
	return models.Has(clean(s.First().Text()))
}

func texts(s *goquery.Selection) []string {
	var out []string
	s.Each(func(_ int, n *goquery.Selection) {
		if t := clean(n.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || base == nil {
		return strings.TrimSpace(href)
	}
	return base.ResolveReference(ref).String()
}
