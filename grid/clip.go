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
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// ClipByGeometry returns a copy of ds in which every spatial cell whose
// center lies outside g has been set to the owning variable's fill value
// (NaN for float64 variables). Variables whose trailing dimensions are
// not (lat, lon) are copied unchanged; leading dimensions such as time
// are masked uniformly. A nil g clips every cell.
func ClipByGeometry(ds *Dataset, g geom.Polygonal) (*Dataset, error) {
	m, err := ds.Mapping()
	if err != nil {
		return nil, err
	}

	// Index the constituent polygons so that most cell centers are
	// rejected by a bounds check. Polygons keep their interior rings,
	// so holes are honored.
	tree := rtree.NewTree(25, 50)
	if g != nil {
		for _, p := range g.Polygons() {
			if len(p) == 0 {
				continue
			}
			tree.Insert(p)
		}
	}

	ny, nx := len(m.Lat), len(m.Lon)
	outside := make([]bool, ny*nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			center := geom.Point{X: m.Lon[i], Y: m.Lat[j]}
			in := false
			for _, c := range tree.SearchIntersect(center.Bounds()) {
				if center.Within(c.(geom.Polygon)) != geom.Outside {
					in = true
					break
				}
			}
			outside[j*nx+i] = !in
		}
	}

	out := ds.copyGridMeta()
	for _, name := range ds.VarNames() {
		v := ds.Var(name).Copy()
		leading, ok := spatialLast(v)
		if !ok {
			out.AddVar(name, v)
			continue
		}
		fill := v.Fill
		if v.DType == Float64 {
			fill = math.NaN()
		}
		for l := 0; l < leading; l++ {
			base := l * ny * nx
			for c, omit := range outside {
				if omit {
					v.Data.Elements[base+c] = fill
				}
			}
		}
		out.AddVar(name, v)
	}
	return out, nil
}
