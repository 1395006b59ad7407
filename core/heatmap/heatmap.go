// Package heatmap buckets tickets by change size and complexity.
package heatmap

import (
	"fmt"
	"math"

	"github.com/huangsam/pilotkpi/schema"
)

// Upper bounds (inclusive) of the first two line and file buckets.
var (
	lineBounds = []int{300, 1000}
	fileBounds = []int{3, 10}
)

// Build counts tickets into the 3×3 grid of line buckets by file buckets.
// Cells are row-major: lines first, then files. Every ticket lands in exactly one cell.
func Build(tickets []schema.AggregatedTicket) schema.HeatMap {
	rows, cols := len(schema.LineBuckets), len(schema.FileBuckets)
	cells := make([]schema.HeatMapCell, rows*cols)
	for r, lines := range schema.LineBuckets {
		for c, files := range schema.FileBuckets {
			cells[r*cols+c] = schema.HeatMapCell{Lines: lines, Files: files}
		}
	}

	for _, t := range tickets {
		cell := &cells[bucket(t.LinesChanged, lineBounds)*cols+bucket(t.FilesChanged, fileBounds)]
		if t.Pilot {
			cell.Pilot++
		} else {
			cell.NonPilot++
		}
	}

	for i := range cells {
		cells[i].Differential = Differential(cells[i].Pilot, cells[i].NonPilot)
		cells[i].Label = fmt.Sprintf("%d/%d", cells[i].Pilot, cells[i].NonPilot)
	}

	return schema.HeatMap{
		Rows:  append([]string(nil), schema.LineBuckets...),
		Cols:  append([]string(nil), schema.FileBuckets...),
		Cells: cells,
	}
}

// Differential returns round((p - np) / (p + np) × 100), or 0 for an empty cell.
func Differential(pilot, nonPilot int) int {
	total := pilot + nonPilot
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(pilot-nonPilot) / float64(total) * 100))
}

// bucket returns the index of the first bound that v does not exceed,
// or len(bounds) for the open-ended last bucket.
func bucket(v int, bounds []int) int {
	for i, b := range bounds {
		if v <= b {
			return i
		}
	}
	return len(bounds)
}
