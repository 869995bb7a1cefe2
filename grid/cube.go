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

import "sort"

// TimeCoord is the name of the temporal coordinate NewCube attaches.
const TimeCoord = "time"

// cubeTimeSteps is the number of daily steps in a synthetic cube.
const cubeTimeSteps = 5

// NewCube creates a synthetic global geographic dataset for use as a
// grid template: width×height cells of res degrees, cell-center lon/lat
// coordinates starting at the lower-left corner of the globe, and a
// time coordinate of daily steps. Each entry of vars becomes a data
// variable over (time, lat, lon) holding that uniform value.
func NewCube(width, height int, res float64, vars map[string]float64) *Dataset {
	d := NewDataset()
	d.CRS = LonLatProj

	lon := NewVariable([]string{LonCoord}, width)
	for i := 0; i < width; i++ {
		lon.Data.Set(-180+res*(float64(i)+0.5), i)
	}
	lon.Attrs["units"] = "degrees_east"
	d.AddCoord(LonCoord, lon)

	lat := NewVariable([]string{LatCoord}, height)
	for j := 0; j < height; j++ {
		lat.Data.Set(-90+res*(float64(j)+0.5), j)
	}
	lat.Attrs["units"] = "degrees_north"
	d.AddCoord(LatCoord, lat)

	tc := NewVariable([]string{TimeCoord}, cubeTimeSteps)
	for k := 0; k < cubeTimeSteps; k++ {
		tc.Data.Set(float64(k), k)
	}
	tc.Attrs["units"] = "days since 2010-01-01"
	d.AddCoord(TimeCoord, tc)

	d.Chunks[TimeCoord] = 1
	d.Chunks[LatCoord] = height
	d.Chunks[LonCoord] = width

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := NewVariable([]string{TimeCoord, LatCoord, LonCoord},
			cubeTimeSteps, height, width)
		for i := range v.Data.Elements {
			v.Data.Elements[i] = vars[name]
		}
		d.AddVar(name, v)
	}
	return d
}
