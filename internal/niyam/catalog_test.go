package niyam

import "testing"

func TestBirthYearFromDOB(t *testing.T) {
	tests := []struct {
		name string
		dob  string
		want int
	}{
		{"year first", "2005-03-14", 2005},
		{"day first", "14-03-2005", 2005},
		{"whitespace trimmed", "  1990-01-01  ", 1990},
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"garbage", "not-a-date", 0},
		{"partial", "2005-03", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BirthYearFromDOB(tt.dob); got != tt.want {
				t.Errorf("BirthYearFromDOB(%q) = %d, want %d", tt.dob, got, tt.want)
			}
		})
	}
}

func TestAgeGroupForDOB(t *testing.T) {
	tests := []struct {
		name string
		dob  string
		want AgeGroup
	}{
		{"born 2011", "2011-01-01", Born2011OrLater},
		{"born 2015", "2015-06-20", Born2011OrLater},
		{"born 2010", "2010-12-31", Born1981To2010},
		{"born 1981", "1981-01-01", Born1981To2010},
		{"born 1980", "1980-12-31", Born1980OrEarlier},
		{"born 1950 day first", "05-05-1950", Born1980OrEarlier},
		{"unparseable falls back", "bad", Born1981To2010},
		{"empty falls back", "", Born1981To2010},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeGroupForDOB(tt.dob); got != tt.want {
				t.Errorf("AgeGroupForDOB(%q) = %q, want %q", tt.dob, got, tt.want)
			}
		})
	}
}

func TestListForAgeGroup(t *testing.T) {
	tests := []struct {
		group     AgeGroup
		wantCount int
		firstKey  string
		lastKey   string
	}{
		{Born2011OrLater, 30, "jin_pooja", "no_tv_phone_11pm_to_6am"},
		{Born1981To2010, 30, "jin_pooja", "no_tv_phone_11pm_to_6am"},
		{Born1980OrEarlier, 30, "jin_pooja", "restrict_social_media_1_hour"},
	}

	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			items := ListForAgeGroup(tt.group)
			if len(items) != tt.wantCount {
				t.Fatalf("got %d items, want %d", len(items), tt.wantCount)
			}
			if items[0].Key != tt.firstKey {
				t.Errorf("first item = %q, want %q", items[0].Key, tt.firstKey)
			}
			if items[len(items)-1].Key != tt.lastKey {
				t.Errorf("last item = %q, want %q", items[len(items)-1].Key, tt.lastKey)
			}
			for _, item := range items {
				if item.Points <= 0 {
					t.Errorf("item %q has non-positive points %d", item.Key, item.Points)
				}
				if item.En == "" || item.Gu == "" {
					t.Errorf("item %q missing label", item.Key)
				}
			}
		})
	}
}

func TestListForAgeGroupPointsVaryByBand(t *testing.T) {
	// The same niyam can carry a different weight per band.
	pointsFor := func(group AgeGroup, key string) int {
		for _, item := range ListForAgeGroup(group) {
			if item.Key == key {
				return item.Points
			}
		}
		t.Fatalf("key %q not in group %q", key, group)
		return 0
	}

	if got := pointsFor(Born2011OrLater, "seven_navkar_sleep_eight_wake"); got != 20 {
		t.Errorf("child band points = %d, want 20", got)
	}
	if got := pointsFor(Born1981To2010, "seven_navkar_sleep_eight_wake"); got != 10 {
		t.Errorf("middle band points = %d, want 10", got)
	}
}

func TestPoints(t *testing.T) {
	list := ListForAgeGroup(Born1981To2010)

	if got := Points(nil, list); got != 0 {
		t.Errorf("nil checklist = %d, want 0", got)
	}

	checked := map[string]bool{
		"jin_pooja": true, // 20
		"samayik":   true, // 40
		"navkarshi": false,
		"not_a_key": true, // not in this band, ignored
	}
	if got := Points(checked, list); got != 60 {
		t.Errorf("Points = %d, want 60", got)
	}
}

func TestAgeGroupLabel(t *testing.T) {
	tests := []struct {
		group AgeGroup
		want  string
	}{
		{Born2011OrLater, "Sambhav Bal Jyoti"},
		{Born1981To2010, "Sambhav Yuva Shakti"},
		{Born1980OrEarlier, "Sambhav Gaurav"},
	}
	for _, tt := range tests {
		if got := AgeGroupLabel(tt.group); got != tt.want {
			t.Errorf("AgeGroupLabel(%q) = %q, want %q", tt.group, got, tt.want)
		}
	}
}
