package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed data/airport_lounges.json
var rawLounges []byte

// StatusUnavailable is the status flag that hides a lounge from search
// results unless the caller explicitly asks for unavailable lounges.
const StatusUnavailable = "Temporarily Unavailable"

type Location struct {
	Terminal string `json:"terminal"`
	Area     string `json:"area"`
	Details  string `json:"details"`
}

// Lounge is one immutable reference record. PointSpent defaults to 1 when
// the data file omits it.
type Lounge struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	OpeningHours string   `json:"openingHours"`
	Location     Location `json:"location"`
	Amenities    []string `json:"amenities"`
	Conditions   []string `json:"conditions,omitempty"`
	PointSpent   int      `json:"pointSpent,omitempty"`
	Status       string   `json:"status,omitempty"`
}

type Airport struct {
	Name   string   `json:"name"`
	Code   string   `json:"code"`
	Lounge []Lounge `json:"lounge"`
}

type cityData struct {
	City    string    `json:"city"`
	Airport []Airport `json:"airport"`
}

// Catalog holds the loaded lounge reference data. It is read-only after
// construction and safe to share across sessions without locking.
type Catalog struct {
	byAirport map[string][]Lounge
	byID      map[string]Lounge
}

// Load parses the embedded data file. Called once at process start.
func Load() (*Catalog, error) {
	var cities map[string]cityData
	if err := json.Unmarshal(rawLounges, &cities); err != nil {
		return nil, fmt.Errorf("parse lounge data: %w", err)
	}

	airports := make([]Airport, 0, len(cities))
	for _, city := range cities {
		airports = append(airports, city.Airport...)
	}
	return New(airports), nil
}

// New builds a catalog from already-parsed airport records.
func New(airports []Airport) *Catalog {
	c := &Catalog{
		byAirport: make(map[string][]Lounge, len(airports)),
		byID:      make(map[string]Lounge),
	}
	for _, airport := range airports {
		code := strings.ToUpper(strings.TrimSpace(airport.Code))
		if code == "" {
			continue
		}
		for _, lounge := range airport.Lounge {
			if lounge.PointSpent <= 0 {
				lounge.PointSpent = 1
			}
			c.byAirport[code] = append(c.byAirport[code], lounge)
			c.byID[strings.ToLower(lounge.ID)] = lounge
		}
	}
	for code := range c.byAirport {
		lounges := c.byAirport[code]
		sort.SliceStable(lounges, func(i, j int) bool {
			if lounges[i].PointSpent != lounges[j].PointSpent {
				return lounges[i].PointSpent < lounges[j].PointSpent
			}
			return lounges[i].ID < lounges[j].ID
		})
	}
	return c
}

// Query narrows a Find call. Terminal is exact-match; Amenities is
// conjunctive with case-insensitive exact amenity strings.
type Query struct {
	AirportCode        string
	Terminal           string
	Amenities          []string
	IncludeUnavailable bool
}

// Find returns lounges matching the query, sorted by (pointSpent asc, id
// asc). An unknown airport code yields an empty result, not an error.
func (c *Catalog) Find(q Query) []Lounge {
	lounges := c.byAirport[strings.ToUpper(strings.TrimSpace(q.AirportCode))]

	results := make([]Lounge, 0, len(lounges))
	for _, lounge := range lounges {
		if lounge.Status == StatusUnavailable && !q.IncludeUnavailable {
			continue
		}
		if q.Terminal != "" && lounge.Location.Terminal != q.Terminal {
			continue
		}
		if !hasAllAmenities(lounge.Amenities, q.Amenities) {
			continue
		}
		results = append(results, lounge)
	}
	return results
}

// Get resolves a lounge by id, case-insensitively.
func (c *Catalog) Get(id string) (Lounge, bool) {
	lounge, ok := c.byID[strings.ToLower(strings.TrimSpace(id))]
	return lounge, ok
}

// PointCost returns the point cost of a lounge, reporting whether the id
// resolves at all.
func (c *Catalog) PointCost(id string) (int, bool) {
	lounge, ok := c.Get(id)
	if !ok {
		return 0, false
	}
	return lounge.PointSpent, true
}

func hasAllAmenities(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(strings.TrimSpace(w), h) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
