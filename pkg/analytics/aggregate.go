// Package analytics computes weight-per-hectare (WPH) aggregates over planted records.
//
// Every grouped figure is a ratio of sums: total expected weight over total planted area
// of the group. A group with zero area has WPH 0. Lists are ordered by WPH descending
// and keep encounter order on ties.
//
// The matrix ranks regions differently: by the arithmetic mean of the WPH of the product
// cells in that region, not by the region's own ratio of sums.
package analytics

import (
	"sort"

	"github.com/google/uuid"
)

const (
	UnknownProduct = "Unknown Product"
	UnknownRegion  = "Unknown Region"
)

// Row is one planted record with the display names of its references resolved.
// A nil name means the reference is null.
type Row struct {
	ProductID   *uuid.UUID
	ProductName *string
	RegionID    *uuid.UUID
	RegionName  *string
	Weight      float64
	Area        float64
}

func (r Row) productLabel() string {
	if r.ProductName == nil {
		return UnknownProduct
	}
	return *r.ProductName
}

func (r Row) regionLabel() string {
	if r.RegionName == nil {
		return UnknownRegion
	}
	return *r.RegionName
}

// Filter narrows the rows an aggregate is computed over.
type Filter struct {
	RegionID  *uuid.UUID
	ProductID *uuid.UUID
}

// Match reports whether r passes f.
func (f Filter) Match(r Row) bool {
	if f.RegionID != nil && (r.RegionID == nil || *r.RegionID != *f.RegionID) {
		return false
	}
	if f.ProductID != nil && (r.ProductID == nil || *r.ProductID != *f.ProductID) {
		return false
	}
	return true
}

// WPH returns weight/area, or 0 when area is 0.
func WPH(weight, area float64) float64 {
	if area == 0 {
		return 0
	}
	return weight / area
}

// Group is the aggregate of the rows sharing one label.
type Group struct {
	Name        string
	TotalWeight float64
	TotalArea   float64
	WPH         float64
	RecordCount int
}

// Total sums all rows into one unnamed group.
func Total(rows []Row) Group {
	var g Group
	for _, r := range rows {
		g.TotalWeight += r.Weight
		g.TotalArea += r.Area
		g.RecordCount++
	}
	g.WPH = WPH(g.TotalWeight, g.TotalArea)
	return g
}

// groupBy sums rows per label in first-seen order and sorts the result stably by WPH.
func groupBy(rows []Row, label func(Row) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range rows {
		name := label(r)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name})
		}
		groups[i].TotalWeight += r.Weight
		groups[i].TotalArea += r.Area
		groups[i].RecordCount++
	}
	for i := range groups {
		groups[i].WPH = WPH(groups[i].TotalWeight, groups[i].TotalArea)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].WPH > groups[j].WPH
	})
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

// ByProduct groups rows by product display name.
func ByProduct(rows []Row) []Group {
	return groupBy(rows, Row.productLabel)
}

// ByRegion groups rows by region display name.
func ByRegion(rows []Row) []Group {
	return groupBy(rows, Row.regionLabel)
}

// MatrixRegion is one region of the matrix with its product cells.
type MatrixRegion struct {
	Name       string
	AverageWPH float64
	Products   []Group
}

// Matrix groups rows by region and then by product. Cells are ordered by WPH within each
// region; regions are ordered by the mean of their cell WPH values.
func Matrix(rows []Row) []MatrixRegion {
	index := make(map[string]int)
	var names []string
	var buckets [][]Row
	for _, r := range rows {
		name := r.regionLabel()
		i, ok := index[name]
		if !ok {
			i = len(names)
			index[name] = i
			names = append(names, name)
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], r)
	}

	regions := make([]MatrixRegion, len(names))
	for i, name := range names {
		cells := ByProduct(buckets[i])
		var sum float64
		for _, c := range cells {
			sum += c.WPH
		}
		var avg float64
		if len(cells) > 0 {
			avg = sum / float64(len(cells))
		}
		regions[i] = MatrixRegion{Name: name, AverageWPH: avg, Products: cells}
	}
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].AverageWPH > regions[j].AverageWPH
	})
	return regions
}
