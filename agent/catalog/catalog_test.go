package catalog

import (
	"reflect"
	"testing"
)

func TestLoadEmbeddedData(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, ok := c.Get("szx_t3_joyee"); !ok {
		t.Fatal("expected szx_t3_joyee in embedded catalog")
	}
	if _, ok := c.Get("pvg_t1_fl09"); !ok {
		t.Fatal("expected pvg_t1_fl09 in embedded catalog")
	}
}

func TestFindSortedByPointCostThenID(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := c.Find(Query{AirportCode: "szx"})
	ids := loungeIDs(got)
	want := []string{"szx_t3_joyee", "szx_t3_quiet_zone", "szx_t3_sky_pearl"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("Find(szx) ids = %v, want %v", ids, want)
	}

	// Repeated identical queries must be identical.
	again := c.Find(Query{AirportCode: "szx"})
	if !reflect.DeepEqual(loungeIDs(again), ids) {
		t.Fatalf("repeated query differs: %v vs %v", loungeIDs(again), ids)
	}
}

func TestFindExcludesUnavailable(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, lounge := range c.Find(Query{AirportCode: "SZX"}) {
		if lounge.ID == "szx_t3_first_class" {
			t.Fatal("unavailable lounge must be excluded by default")
		}
	}

	withUnavailable := c.Find(Query{AirportCode: "SZX", IncludeUnavailable: true})
	found := false
	for _, lounge := range withUnavailable {
		if lounge.ID == "szx_t3_first_class" {
			found = true
		}
	}
	if !found {
		t.Fatal("IncludeUnavailable must surface the flagged lounge")
	}
}

func TestFindAmenityFilterIsConjunctiveAndExact(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := c.Find(Query{AirportCode: "szx", Amenities: []string{"Wifi Access"}})
	for _, lounge := range got {
		if lounge.ID == "szx_t3_quiet_zone" {
			t.Fatal("lounge without Wifi Access must be filtered out")
		}
	}
	if len(got) == 0 {
		t.Fatal("expected at least one wifi lounge at SZX")
	}

	// "Wifi" is not an exact amenity string and must match nothing.
	if got := c.Find(Query{AirportCode: "szx", Amenities: []string{"Wifi"}}); len(got) != 0 {
		t.Fatalf("partial amenity string matched %d lounges", len(got))
	}

	both := c.Find(Query{AirportCode: "szx", Amenities: []string{"wifi access", "Shower Facility (Chargeable)"}})
	if len(both) != 1 || both[0].ID != "szx_t3_sky_pearl" {
		t.Fatalf("conjunctive filter = %v, want only szx_t3_sky_pearl", loungeIDs(both))
	}
}

func TestFindTerminalExactMatch(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	t2 := c.Find(Query{AirportCode: "PVG", Terminal: "T2"})
	if len(t2) != 1 || t2[0].ID != "pvg_t2_vip69" {
		t.Fatalf("Find(PVG, T2) = %v, want only pvg_t2_vip69", loungeIDs(t2))
	}

	if got := c.Find(Query{AirportCode: "PVG", Terminal: "T"}); len(got) != 0 {
		t.Fatalf("terminal filter must be exact, got %v", loungeIDs(got))
	}
}

func TestFindUnknownAirportIsEmptyNotError(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.Find(Query{AirportCode: "XXX"}); len(got) != 0 {
		t.Fatalf("unknown airport returned %d lounges", len(got))
	}
}

func TestPointCostDefaultsToOne(t *testing.T) {
	t.Parallel()

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// pvg_t2_vip69 has no pointSpent in the data file.
	cost, ok := c.PointCost("PVG_T2_VIP69")
	if !ok {
		t.Fatal("id lookup must be case-insensitive")
	}
	if cost != 1 {
		t.Fatalf("PointCost() = %d, want default 1", cost)
	}

	if _, ok := c.PointCost("missing_lounge"); ok {
		t.Fatal("unknown lounge id must not resolve")
	}
}

func loungeIDs(lounges []Lounge) []string {
	ids := make([]string, 0, len(lounges))
	for _, l := range lounges {
		ids = append(ids, l.ID)
	}
	return ids
}
