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
	"math"

	"github.com/ctessum/sparse"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

// A Feature is a polygonal geometry together with the numeric field
// values to be burned into raster cells the geometry covers.
type Feature struct {
	geom.Polygonal
	Fields map[string]float64
}

// VarProps declares the output variable for one rasterized field.
type VarProps struct {
	Name  string
	DType DType
	Fill  float64
}

// indexedFeature tracks a feature's position in the input slice so that
// overlaps can be resolved in favor of the later feature.
type indexedFeature struct {
	geom.Polygonal
	row int
}

// RasterizeFeatures burns the given fields of a sequence of polygon
// features onto the spatial grid of template. The returned dataset
// carries a copy of every template coordinate and chunk setting, and one
// variable per entry of fields with the dtype and fill value declared in
// props and dimensions (lat, lon).
//
// A cell takes a feature's field values if its center lies within the
// feature's polygon. Features are burned in slice order; where polygons
// overlap, the later feature wins. Cells covered by no feature hold the
// fill value.
func RasterizeFeatures(template *Dataset, feats []Feature, fields []string,
	props map[string]VarProps) (*Dataset, error) {

	m, err := template.Mapping()
	if err != nil {
		return nil, err
	}
	for _, field := range fields {
		if _, ok := props[field]; !ok {
			return nil, fmt.Errorf("grid: no variable properties for field %q", field)
		}
	}

	tree := rtree.NewTree(25, 50)
	for i, ft := range feats {
		if ft.Polygonal == nil {
			return nil, fmt.Errorf("grid: feature %d has no geometry", i)
		}
		tree.Insert(&indexedFeature{Polygonal: ft.Polygonal, row: i})
	}

	ny, nx := len(m.Lat), len(m.Lon)
	arrs := make(map[string]*sparse.DenseArray, len(fields))
	for _, field := range fields {
		a := sparse.ZerosDense(ny, nx)
		for i := range a.Elements {
			a.Elements[i] = props[field].Fill
		}
		arrs[field] = a
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			center := geom.Point{X: m.Lon[i], Y: m.Lat[j]}
			cell := cellBounds(center, m.Dx, m.Dy)
			row := -1
			for _, f := range tree.SearchIntersect(cell) {
				ft := f.(*indexedFeature)
				if ft.row <= row {
					continue
				}
				if center.Within(ft.Polygonal) != geom.Outside {
					row = ft.row
				}
			}
			if row < 0 {
				continue
			}
			for _, field := range fields {
				if val, ok := feats[row].Fields[field]; ok {
					arrs[field].Set(val, j, i)
				}
			}
		}
	}

	out := template.copyGridMeta()
	for _, field := range fields {
		p := props[field]
		name := p.Name
		if name == "" {
			name = field
		}
		out.AddVar(name, &Variable{
			Dims:  []string{LatCoord, LonCoord},
			Data:  arrs[field],
			DType: p.DType,
			Fill:  p.Fill,
			Attrs: make(map[string]interface{}),
		})
	}
	return out, nil
}

func cellBounds(center geom.Point, dx, dy float64) *geom.Bounds {
	hx, hy := math.Abs(dx)/2, math.Abs(dy)/2
	return &geom.Bounds{
		Min: geom.Point{X: center.X - hx, Y: center.Y - hy},
		Max: geom.Point{X: center.X + hx, Y: center.Y + hy},
	}
}
