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
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"

	"github.com/spatialgrid/regionmask/grid"
)

//go:embed country_data/countries.geojson
var countryData []byte

// A RegionRecord is one country polygon from the region catalog: the
// country name, the continent it belongs to, and its geometry in
// EPSG:4326. Records are immutable after load.
type RegionRecord struct {
	geom.Polygonal
	Name      string
	Continent string
}

// LoadRegions loads the bundled country catalog. The records come back
// in the catalog's fixed order. A missing or unparsable catalog is a
// ConfigurationError.
func LoadRegions() ([]RegionRecord, error) {
	return loadRegionsFromGeoJSON(countryData)
}

type geoJSONFeature struct {
	Properties struct {
		Name      string `json:"name"`
		Continent string `json:"continent"`
	} `json:"properties"`
	Geometry geojson.Geometry `json:"geometry"`
}

type featureCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

func loadRegionsFromGeoJSON(data []byte) ([]RegionRecord, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	if fc.Type != "FeatureCollection" {
		return nil, &ConfigurationError{
			Err: fmt.Errorf("expected a FeatureCollection but got %q", fc.Type)}
	}
	records := make([]RegionRecord, 0, len(fc.Features))
	for i, f := range fc.Features {
		g, err := geojson.FromGeoJSON(&f.Geometry)
		if err != nil {
			return nil, &ConfigurationError{
				Err: fmt.Errorf("feature %d (%s): %v", i, f.Properties.Name, err)}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, &ConfigurationError{
				Err: fmt.Errorf("feature %d (%s): geometry is %T, not polygonal",
					i, f.Properties.Name, g)}
		}
		if f.Properties.Name == "" || f.Properties.Continent == "" {
			return nil, &ConfigurationError{
				Err: fmt.Errorf("feature %d is missing a name or continent attribute", i)}
		}
		records = append(records, RegionRecord{
			Polygonal: p,
			Name:      f.Properties.Name,
			Continent: f.Properties.Continent,
		})
	}
	return records, nil
}

// LoadRegionsFromShapefile reads a region catalog from a shapefile with
// "name" and "continent" attribute columns, reprojecting geometries to
// EPSG:4326 if necessary. It allows a caller to substitute its own
// catalog for the bundled one via WithCatalog.
func LoadRegionsFromShapefile(path string) ([]RegionRecord, error) {
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	defer dec.Close()

	srcSR, err := dec.SR()
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	dstSR, err := proj.Parse(grid.LonLatProj)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	trans, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	var records []RegionRecord
	for {
		g, fields, more := dec.DecodeRowFields("name", "continent")
		if !more {
			break
		}
		gg, err := g.Transform(trans)
		if err != nil {
			return nil, &ConfigurationError{Err: err}
		}
		p, ok := gg.(geom.Polygonal)
		if !ok {
			return nil, &ConfigurationError{
				Err: fmt.Errorf("row %d: geometry is %T, not polygonal", len(records), gg)}
		}
		records = append(records, RegionRecord{
			Polygonal: p,
			Name:      fields["name"],
			Continent: fields["continent"],
		})
	}
	if err := dec.Error(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	return records, nil
}
