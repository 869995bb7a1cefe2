/*
Copyright © 2024 the regionmask authors.
This file is part of regionmask.

regionmask is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

regionmask is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with regionmask.  If not, see <http://www.gnu.org/licenses/>.
*/

package regionmask

import (
	"errors"
	"reflect"
	"testing"
)

func TestLoadRegions(t *testing.T) {
	records, err := LoadRegions()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) == 0 {
		t.Fatal("the bundled catalog is empty")
	}
	for i, r := range records {
		if r.Name == "" || r.Continent == "" || r.Polygonal == nil {
			t.Fatalf("record %d is incomplete: %+v", i, r)
		}
	}

	// The catalog order is fixed, so repeated loads see the same
	// sequence.
	again, err := LoadRegions()
	if err != nil {
		t.Fatal(err)
	}
	if len(again) != len(records) {
		t.Fatalf("want %d records but have %d", len(records), len(again))
	}
	for i := range records {
		if records[i].Name != again[i].Name {
			t.Fatalf("record %d: want %q but have %q", i, records[i].Name, again[i].Name)
		}
	}
}

func TestLoadRegionsContinents(t *testing.T) {
	records, err := LoadRegions()
	if err != nil {
		t.Fatal(err)
	}
	have := make(map[string]bool)
	for _, r := range records {
		have[r.Continent] = true
	}
	for _, want := range []string{
		"Africa", "Asia", "Europe", "North America", "South America", "Oceania",
	} {
		if !have[want] {
			t.Errorf("catalog has no records for %s", want)
		}
	}
}

func TestLoadRegionsBadData(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{`},
		{"not a collection", `{"type": "Feature"}`},
		{"non-polygonal geometry", `{"type": "FeatureCollection", "features": [
			{"properties": {"name": "X", "continent": "Y"},
			 "geometry": {"type": "Point", "coordinates": [0, 0]}}]}`},
		{"missing attributes", `{"type": "FeatureCollection", "features": [
			{"properties": {"name": "X"},
			 "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}]}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := loadRegionsFromGeoJSON([]byte(test.data))
			if err == nil {
				t.Fatal("want an error but have none")
			}
			var ce *ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("want a ConfigurationError but have %T: %v", err, err)
			}
		})
	}
}

func TestFilterRegions(t *testing.T) {
	records, err := LoadRegions()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("empty filter returns input unchanged", func(t *testing.T) {
		have := FilterRegions(records, nil)
		if !reflect.DeepEqual(records, have) {
			t.Error("empty filter should return the catalog unchanged")
		}
	})

	t.Run("country and continent matches", func(t *testing.T) {
		have := FilterRegions(records, []string{"Oceania", "South Africa"})
		if len(have) == 0 {
			t.Fatal("want matches but have none")
		}
		if have[0].Name != "South Africa" {
			t.Errorf("country matches come first: want South Africa but have %q", have[0].Name)
		}
		for _, r := range have[1:] {
			if r.Continent != "Oceania" {
				t.Errorf("want only Oceania after the country matches but have %q (%s)",
					r.Name, r.Continent)
			}
		}
	})

	t.Run("double match is kept twice", func(t *testing.T) {
		have := FilterRegions(records, []string{"Australia", "Oceania"})
		n := 0
		for _, r := range have {
			if r.Name == "Australia" {
				n++
			}
		}
		if n != 2 {
			t.Errorf("Australia matches by name and by continent: want 2 rows but have %d", n)
		}
	})

	t.Run("unknown names match nothing", func(t *testing.T) {
		if have := FilterRegions(records, []string{"Atlantis"}); len(have) != 0 {
			t.Errorf("want an empty result but have %d records", len(have))
		}
	})
}
