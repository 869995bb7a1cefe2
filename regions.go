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

// Package regionmask rasterizes country and continent polygons onto the
// grid of an existing dataset and derives land and region masks from
// them, for clipping climate-data-record variables to regions of
// interest.
package regionmask

import (
	"fmt"

	"github.com/ctessum/geom"

	"github.com/spatialgrid/regionmask/grid"
)

// FillValue marks cells outside every region polygon in the rasterized
// code layers. Codes are 1-based, so 0 and FillValue never name a region.
const FillValue = 255

// Names of the variables produced by MakeRegionsDataset and the masks
// derived from them.
const (
	CountryCodeVar   = "country_code"
	ContinentCodeVar = "continent_code"
	LandVar          = "land"
	RegionsVar       = "regions"
)

// A Masker builds region rasters and masks. The zero configuration uses
// the bundled country catalog and no error observer; both can be
// replaced with options. A Masker is immutable after construction and
// holds no state across calls.
type Masker struct {
	load     func() ([]RegionRecord, error)
	observer ErrorObserver
}

// An Option configures a Masker.
type Option func(*Masker)

// WithCatalog replaces the bundled country catalog with a caller-supplied
// loader, for example one wrapping LoadRegionsFromShapefile.
func WithCatalog(load func() ([]RegionRecord, error)) Option {
	return func(m *Masker) { m.load = load }
}

// WithErrorObserver registers an observer that is notified of every
// error a Masker operation returns, before the error reaches the caller.
func WithErrorObserver(o ErrorObserver) Option {
	return func(m *Masker) { m.observer = o }
}

// NewMasker creates a Masker.
func NewMasker(opts ...Option) *Masker {
	m := &Masker{load: LoadRegions}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var defaultMasker = NewMasker()

// fail hands err to the observer, if any, and returns it.
func (m *Masker) fail(err error) error {
	if m.observer != nil {
		m.observer.ObserveError(err)
	}
	return err
}

// FilterRegions selects the records whose country name or continent name
// exactly matches an entry of names: country-name matches first in
// catalog order, then continent matches in catalog order. A record
// matching both ways appears twice. A nil or empty names returns records
// unchanged. Names matching nothing silently contribute nothing, so an
// entirely unknown filter yields an empty set rather than an error.
func FilterRegions(records []RegionRecord, names []string) []RegionRecord {
	if len(names) == 0 {
		return records
	}
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}
	var out []RegionRecord
	for _, r := range records {
		if nameSet[r.Name] {
			out = append(out, r)
		}
	}
	for _, r := range records {
		if nameSet[r.Continent] {
			out = append(out, r)
		}
	}
	return out
}

// A codeAssignment holds the per-record integer codes for one
// rasterization call and the code-to-name lookups attached to the output
// variables. Codes are call-local: the same name may receive a different
// code in another call with a different filter.
type codeAssignment struct {
	countryCodes   []float64
	continentCodes []float64
	countryNames   map[int]string
	continentNames map[int]string
}

// assignCodes numbers records 1..N in order for the country layer, and
// numbers continents 1..M by first appearance for the continent layer.
// First-seen enumeration keeps the numbering reproducible across runs.
func assignCodes(records []RegionRecord) (*codeAssignment, error) {
	if len(records) >= FillValue {
		return nil, &InvalidArgumentError{Arg: "regions",
			Err: fmt.Errorf("%d records cannot be coded in uint8 with %d reserved as fill",
				len(records), FillValue)}
	}
	a := &codeAssignment{
		countryCodes:   make([]float64, len(records)),
		continentCodes: make([]float64, len(records)),
		countryNames:   make(map[int]string, len(records)),
		continentNames: make(map[int]string),
	}
	continentCode := make(map[string]int)
	for i, r := range records {
		a.countryCodes[i] = float64(i + 1)
		a.countryNames[i+1] = r.Name
		if _, ok := continentCode[r.Continent]; !ok {
			code := len(continentCode) + 1
			continentCode[r.Continent] = code
			a.continentNames[code] = r.Continent
		}
	}
	for i, r := range records {
		code, ok := continentCode[r.Continent]
		if !ok {
			return nil, &InternalConsistencyError{
				Msg: fmt.Sprintf("no continent code assigned for %q (record %d, %s)",
					r.Continent, i, r.Name)}
		}
		a.continentCodes[i] = float64(code)
	}
	return a, nil
}

// MakeRegionsDataset rasterizes country and continent polygons onto the
// grid of template. The result shares template's coordinates and spatial
// chunking and holds two uint8 variables, country_code and
// continent_code, with FillValue outside every polygon. The inverse
// lookups are attached as the country_names and continent_names
// attributes of the respective variables. If regions is non-empty, only
// records whose country or continent name appears in it are rasterized,
// and codes are renumbered over the filtered order.
func (m *Masker) MakeRegionsDataset(template *grid.Dataset, regions []string) (*grid.Dataset, error) {
	if template == nil {
		return nil, m.fail(&InvalidArgumentError{Arg: "template",
			Err: fmt.Errorf("template dataset is nil")})
	}
	if _, err := template.Mapping(); err != nil {
		return nil, m.fail(&InvalidArgumentError{Arg: "template", Err: err})
	}

	records, err := m.load()
	if err != nil {
		return nil, m.fail(err)
	}
	records = FilterRegions(records, regions)

	codes, err := assignCodes(records)
	if err != nil {
		return nil, m.fail(err)
	}

	feats := make([]grid.Feature, len(records))
	for i, r := range records {
		feats[i] = grid.Feature{
			Polygonal: r.Polygonal,
			Fields: map[string]float64{
				CountryCodeVar:   codes.countryCodes[i],
				ContinentCodeVar: codes.continentCodes[i],
			},
		}
	}
	props := map[string]grid.VarProps{
		CountryCodeVar:   {Name: CountryCodeVar, DType: grid.Uint8, Fill: FillValue},
		ContinentCodeVar: {Name: ContinentCodeVar, DType: grid.Uint8, Fill: FillValue},
	}
	out, err := grid.RasterizeFeatures(template, feats,
		[]string{CountryCodeVar, ContinentCodeVar}, props)
	if err != nil {
		return nil, m.fail(err)
	}

	// The codes are time-invariant.
	out.DropCoord(grid.TimeCoord)

	out.Var(CountryCodeVar).Attrs["country_names"] = codes.countryNames
	out.Var(ContinentCodeVar).Attrs["continent_names"] = codes.continentNames
	return out, nil
}

// GetLandMask rasterizes the full catalog onto dataset's grid and
// reduces it to a single boolean variable, land, true wherever a country
// code is present (code != FillValue).
func (m *Masker) GetLandMask(dataset *grid.Dataset) (*grid.Dataset, error) {
	rd, err := m.MakeRegionsDataset(dataset, nil)
	if err != nil {
		return nil, err
	}
	return codeMask(rd, LandVar, func(country, continent float64) bool {
		return country != FillValue
	}), nil
}

// GetRegionsMask rasterizes the regions selected by the given names onto
// dataset's grid and reduces them to a single boolean variable, regions,
// true wherever a country or continent code is present.
func (m *Masker) GetRegionsMask(dataset *grid.Dataset, regions []string) (*grid.Dataset, error) {
	rd, err := m.MakeRegionsDataset(dataset, regions)
	if err != nil {
		return nil, err
	}
	return codeMask(rd, RegionsVar, func(country, continent float64) bool {
		return country != FillValue || continent != FillValue
	}), nil
}

// codeMask derives a boolean variable from the two code layers of a
// regions dataset and drops the code layers.
func codeMask(rd *grid.Dataset, name string, keep func(country, continent float64) bool) *grid.Dataset {
	country := rd.Var(CountryCodeVar)
	continent := rd.Var(ContinentCodeVar)
	mask := &grid.Variable{
		Dims:  append([]string{}, country.Dims...),
		Data:  country.Data.Copy(),
		DType: grid.Bool,
		Fill:  0,
		Attrs: make(map[string]interface{}),
	}
	for i := range mask.Data.Elements {
		if keep(country.Data.Elements[i], continent.Data.Elements[i]) {
			mask.Data.Elements[i] = 1
		} else {
			mask.Data.Elements[i] = 0
		}
	}
	rd.DropVar(CountryCodeVar)
	rd.DropVar(ContinentCodeVar)
	rd.AddVar(name, mask)
	return rd
}

// MaskDatasetByLand returns dataset with every cell outside the union of
// all country polygons set to the fill value. The variables themselves
// are unchanged in name and number; no code layers are produced.
func (m *Masker) MaskDatasetByLand(dataset *grid.Dataset) (*grid.Dataset, error) {
	records, err := m.load()
	if err != nil {
		return nil, m.fail(err)
	}
	return m.clip(dataset, records)
}

// MaskDatasetByRegions returns dataset with every cell outside the
// selected regions set to the fill value. If no catalog entry matches
// the given names, every cell is outside and the result is fully
// filled.
func (m *Masker) MaskDatasetByRegions(dataset *grid.Dataset, regions []string) (*grid.Dataset, error) {
	records, err := m.load()
	if err != nil {
		return nil, m.fail(err)
	}
	return m.clip(dataset, FilterRegions(records, regions))
}

func (m *Masker) clip(dataset *grid.Dataset, records []RegionRecord) (*grid.Dataset, error) {
	if dataset == nil {
		return nil, m.fail(&InvalidArgumentError{Arg: "dataset",
			Err: fmt.Errorf("dataset is nil")})
	}
	if _, err := dataset.Mapping(); err != nil {
		return nil, m.fail(&InvalidArgumentError{Arg: "dataset", Err: err})
	}
	out, err := grid.ClipByGeometry(dataset, unionPolygons(records))
	if err != nil {
		return nil, m.fail(err)
	}
	return out, nil
}

// unionPolygons folds the records' geometries into a single composite
// polygon. An empty record set yields an empty polygon covering nothing.
func unionPolygons(records []RegionRecord) geom.Polygonal {
	var u geom.Polygonal = geom.Polygon{}
	for i, r := range records {
		if i == 0 {
			u = r.Polygonal
			continue
		}
		u = u.Union(r.Polygonal)
	}
	return u
}

// MakeRegionsDataset rasterizes country and continent codes onto the
// grid of template using the bundled catalog. See Masker.MakeRegionsDataset.
func MakeRegionsDataset(template *grid.Dataset, regions []string) (*grid.Dataset, error) {
	return defaultMasker.MakeRegionsDataset(template, regions)
}

// GetLandMask derives a boolean land mask for dataset's grid using the
// bundled catalog. See Masker.GetLandMask.
func GetLandMask(dataset *grid.Dataset) (*grid.Dataset, error) {
	return defaultMasker.GetLandMask(dataset)
}

// GetRegionsMask derives a boolean mask of the named regions for
// dataset's grid using the bundled catalog. See Masker.GetRegionsMask.
func GetRegionsMask(dataset *grid.Dataset, regions []string) (*grid.Dataset, error) {
	return defaultMasker.GetRegionsMask(dataset, regions)
}

// MaskDatasetByLand clips dataset to the union of all country polygons
// in the bundled catalog. See Masker.MaskDatasetByLand.
func MaskDatasetByLand(dataset *grid.Dataset) (*grid.Dataset, error) {
	return defaultMasker.MaskDatasetByLand(dataset)
}

// MaskDatasetByRegions clips dataset to the union of the named regions'
// polygons from the bundled catalog. See Masker.MaskDatasetByRegions.
func MaskDatasetByRegions(dataset *grid.Dataset, regions []string) (*grid.Dataset, error) {
	return defaultMasker.MaskDatasetByRegions(dataset, regions)
}
