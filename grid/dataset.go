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

// Package grid provides an in-memory model for gridded geospatial
// datasets and the spatial operations (feature rasterization and
// geometry clipping) that the regionmask package builds its masks on.
package grid

import (
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/ctessum/geom/proj"
)

// LonLatProj is the spatial reference for geographic (EPSG:4326) grids,
// in Proj4 format.
const LonLatProj = "+proj=longlat +datum=WGS84 +no_defs"

// Names of the spatial coordinate variables every grid-mapped dataset
// must carry.
const (
	LonCoord = "lon"
	LatCoord = "lat"
)

// DType is the declared storage type of a variable. Values are held as
// float64 in memory regardless; DType records how they are to be
// interpreted and encoded.
type DType int

const (
	Float64 DType = iota
	Uint8
	Bool
)

func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("DType(%d)", int(d))
}

// A Variable is a single named array in a Dataset: its data, the names of
// the dimensions the data is laid out over, a declared storage type, a
// fill value marking cells with no data, and free-form attributes.
type Variable struct {
	Dims  []string
	Data  *sparse.DenseArray
	DType DType
	Fill  float64
	Attrs map[string]interface{}
}

// NewVariable allocates a zero-filled float64 variable with the given
// dimension names and shape.
func NewVariable(dims []string, shape ...int) *Variable {
	return &Variable{
		Dims:  dims,
		Data:  sparse.ZerosDense(shape...),
		DType: Float64,
		Fill:  math.NaN(),
		Attrs: make(map[string]interface{}),
	}
}

// Copy returns a deep copy of v.
func (v *Variable) Copy() *Variable {
	o := &Variable{
		Dims:  append([]string{}, v.Dims...),
		Data:  v.Data.Copy(),
		DType: v.DType,
		Fill:  v.Fill,
		Attrs: make(map[string]interface{}),
	}
	for k, val := range v.Attrs {
		o.Attrs[k] = val
	}
	return o
}

// A Dataset is a collection of named data variables and coordinate
// variables sharing a set of dimensions, together with chunking and
// coordinate-reference metadata. Variable order is preserved.
type Dataset struct {
	varNames   []string
	vars       map[string]*Variable
	coordNames []string
	coords     map[string]*Variable

	Attrs map[string]interface{}

	// Chunks gives the chunk size for each dimension, for consumers
	// that process the data in deferred blocks.
	Chunks map[string]int

	// CRS is the coordinate reference system of the spatial
	// coordinates, in Proj4 format. An empty CRS is interpreted as
	// LonLatProj.
	CRS string
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		vars:   make(map[string]*Variable),
		coords: make(map[string]*Variable),
		Attrs:  make(map[string]interface{}),
		Chunks: make(map[string]int),
	}
}

// AddVar adds or replaces the data variable named name.
func (d *Dataset) AddVar(name string, v *Variable) {
	if _, ok := d.vars[name]; !ok {
		d.varNames = append(d.varNames, name)
	}
	d.vars[name] = v
}

// Var returns the data variable named name, or nil if there is none.
func (d *Dataset) Var(name string) *Variable { return d.vars[name] }

// DropVar removes the data variable named name if it exists, along
// with the chunk settings of any dimension nothing else uses.
func (d *Dataset) DropVar(name string) {
	v, ok := d.vars[name]
	if !ok {
		return
	}
	delete(d.vars, name)
	for i, n := range d.varNames {
		if n == name {
			d.varNames = append(d.varNames[:i], d.varNames[i+1:]...)
			break
		}
	}
	d.pruneChunks(v.Dims)
}

// VarNames returns the names of the data variables in insertion order.
func (d *Dataset) VarNames() []string {
	return append([]string{}, d.varNames...)
}

// AddCoord adds or replaces the coordinate variable named name.
func (d *Dataset) AddCoord(name string, v *Variable) {
	if _, ok := d.coords[name]; !ok {
		d.coordNames = append(d.coordNames, name)
	}
	d.coords[name] = v
}

// Coord returns the coordinate variable named name, or nil if there is
// none.
func (d *Dataset) Coord(name string) *Variable { return d.coords[name] }

// DropCoord removes the coordinate variable named name if it exists,
// along with the chunk settings of any dimension nothing else uses.
func (d *Dataset) DropCoord(name string) {
	c, ok := d.coords[name]
	if !ok {
		return
	}
	delete(d.coords, name)
	for i, n := range d.coordNames {
		if n == name {
			d.coordNames = append(d.coordNames[:i], d.coordNames[i+1:]...)
			break
		}
	}
	d.pruneChunks(c.Dims)
}

// pruneChunks removes the chunk entries of the given dimensions if no
// remaining variable or coordinate is laid out over them.
func (d *Dataset) pruneChunks(dims []string) {
	for _, dim := range dims {
		if d.dimInUse(dim) {
			continue
		}
		delete(d.Chunks, dim)
	}
}

func (d *Dataset) dimInUse(dim string) bool {
	for _, v := range d.vars {
		for _, n := range v.Dims {
			if n == dim {
				return true
			}
		}
	}
	for _, c := range d.coords {
		for _, n := range c.Dims {
			if n == dim {
				return true
			}
		}
	}
	return false
}

// CoordNames returns the names of the coordinate variables in insertion
// order.
func (d *Dataset) CoordNames() []string {
	return append([]string{}, d.coordNames...)
}

// copyGridMeta copies d's coordinates, chunking, CRS and attributes onto
// a new, variable-less dataset.
func (d *Dataset) copyGridMeta() *Dataset {
	o := NewDataset()
	for _, name := range d.coordNames {
		o.AddCoord(name, d.coords[name].Copy())
	}
	for k, v := range d.Chunks {
		o.Chunks[k] = v
	}
	for k, v := range d.Attrs {
		o.Attrs[k] = v
	}
	o.CRS = d.CRS
	return o
}

// A Mapping describes a dataset's regular spatial grid: the cell-center
// coordinates along each axis, the cell sizes, and the parsed spatial
// reference.
type Mapping struct {
	Lon, Lat []float64
	Dx, Dy   float64
	SR       *proj.SR
}

// Mapping validates d's spatial grid metadata and returns it. It fails
// if the lon or lat coordinate is missing or not one-dimensional, if the
// coordinate spacing is irregular, or if the CRS cannot be parsed.
func (d *Dataset) Mapping() (*Mapping, error) {
	lon, err := d.axis(LonCoord)
	if err != nil {
		return nil, err
	}
	lat, err := d.axis(LatCoord)
	if err != nil {
		return nil, err
	}
	dx, err := spacing(LonCoord, lon)
	if err != nil {
		return nil, err
	}
	dy, err := spacing(LatCoord, lat)
	if err != nil {
		return nil, err
	}
	crs := d.CRS
	if crs == "" {
		crs = LonLatProj
	}
	sr, err := proj.Parse(crs)
	if err != nil {
		return nil, fmt.Errorf("grid: parsing CRS %q: %v", crs, err)
	}
	return &Mapping{Lon: lon, Lat: lat, Dx: dx, Dy: dy, SR: sr}, nil
}

func (d *Dataset) axis(name string) ([]float64, error) {
	c := d.coords[name]
	if c == nil {
		return nil, fmt.Errorf("grid: dataset has no %q coordinate", name)
	}
	if len(c.Data.Shape) != 1 {
		return nil, fmt.Errorf("grid: coordinate %q must be one-dimensional but has shape %v",
			name, c.Data.Shape)
	}
	if c.Data.Shape[0] < 2 {
		return nil, fmt.Errorf("grid: coordinate %q must have at least 2 values", name)
	}
	return append([]float64{}, c.Data.Elements...), nil
}

func spacing(name string, vals []float64) (float64, error) {
	d := vals[1] - vals[0]
	const tol = 1.e-6
	for i := 2; i < len(vals); i++ {
		if math.Abs((vals[i]-vals[i-1])-d) > tol*math.Abs(d) {
			return 0, fmt.Errorf("grid: coordinate %q is not evenly spaced", name)
		}
	}
	return d, nil
}

// spatialLast reports whether v's two trailing dimensions are (lat, lon),
// the layout the spatial operations require, and returns the product of
// the leading dimension lengths.
func spatialLast(v *Variable) (leading int, ok bool) {
	n := len(v.Dims)
	if n < 2 || v.Dims[n-2] != LatCoord || v.Dims[n-1] != LonCoord {
		return 0, false
	}
	leading = 1
	for _, l := range v.Data.Shape[:n-2] {
		leading *= l
	}
	return leading, true
}
