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

package grid

import (
	"fmt"

	"github.com/ctessum/cdf"
)

// ReadCDF reads a NetCDF classic file into a Dataset, for use as a grid
// template. Variables named after one of their own dimensions become
// coordinate variables; all numeric values are widened to float64.
// Chunks are set to the full length of each dimension.
func ReadCDF(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("grid: opening NetCDF file: %v", err)
	}
	d := NewDataset()
	for _, name := range f.Header.Variables() {
		dims := f.Header.Dimensions(name)
		lengths := f.Header.Lengths(name)
		n := 1
		for _, l := range lengths {
			n *= l
		}
		r := f.Reader(name, nil, nil)
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("grid: reading NetCDF variable %q: %v", name, err)
		}
		vals, err := toFloats(buf)
		if err != nil {
			return nil, fmt.Errorf("grid: NetCDF variable %q: %v", name, err)
		}
		v := NewVariable(dims, lengths...)
		copy(v.Data.Elements, vals)
		for _, a := range f.Header.Attributes(name) {
			v.Attrs[a] = f.Header.GetAttribute(name, a)
		}
		if isCoord(name, dims) {
			d.AddCoord(name, v)
		} else {
			d.AddVar(name, v)
		}
		for i, dim := range dims {
			d.Chunks[dim] = lengths[i]
		}
	}
	if d.Coord(LonCoord) != nil && d.Coord(LatCoord) != nil {
		d.CRS = LonLatProj
	}
	return d, nil
}

// isCoord reports whether a variable follows the NetCDF coordinate
// convention of being named after one of its dimensions.
func isCoord(name string, dims []string) bool {
	for _, dim := range dims {
		if dim == name {
			return true
		}
	}
	return false
}

func toFloats(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int8:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", buf)
	}
}
