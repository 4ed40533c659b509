package engine

import (
	"context"
	"math"
	"sort"
	"strings"
)

const (
	minTableRows    = 3
	minTableCells   = 3
	minSharedAnchor = 2
)

// GeometryTableEngine finds tables in word geometry: runs of consecutive
// lines that split into several cells whose edges line up.
type GeometryTableEngine struct {
	text TextEngine
}

func NewGeometryTableEngine(text TextEngine) *GeometryTableEngine {
	return &GeometryTableEngine{text: text}
}

func (e *GeometryTableEngine) Tables(ctx context.Context, path string, maxPages int) ([]Table, error) {
	pages, err := e.text.Words(ctx, path, maxPages)
	if err != nil {
		return nil, err
	}
	var tables []Table
	for i, words := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, rows := range DetectTables(words) {
			tables = append(tables, Table{Page: i + 1, Rows: rows})
		}
	}
	return tables, nil
}

type cell struct {
	text   string
	x0, x1 float64
}

// DetectTables returns the cell grids found among one page's words.
func DetectTables(words []Word) [][][]string {
	lines := GroupLines(words)
	if len(lines) == 0 {
		return nil
	}
	gap := CharWidth(words) * 2

	cells := make([][]cell, len(lines))
	for i, line := range lines {
		cells[i] = splitCells(line, gap)
	}

	tol := CharWidth(words)
	var grids [][][]string
	start := -1
	for i := 0; i <= len(cells); i++ {
		ok := i < len(cells) && len(cells[i]) >= minTableCells &&
			(start < 0 || i == start || aligned(cells[i-1], cells[i], tol))
		if ok {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && i-start >= minTableRows {
			grids = append(grids, toGrid(cells[start:i]))
		}
		start = -1
		if i < len(cells) && len(cells[i]) >= minTableCells {
			start = i
		}
	}
	return grids
}

func splitCells(line []Word, gap float64) []cell {
	var out []cell
	for _, w := range line {
		if n := len(out); n > 0 && w.X-out[n-1].x1 <= gap {
			out[n-1].text += " " + w.Text
			out[n-1].x1 = math.Max(out[n-1].x1, w.Right())
			continue
		}
		out = append(out, cell{text: w.Text, x0: w.X, x1: w.Right()})
	}
	return out
}

// aligned reports whether two rows share enough left or right cell edges.
func aligned(a, b []cell, tol float64) bool {
	shared := 0
	for _, ca := range a {
		for _, cb := range b {
			if math.Abs(ca.x0-cb.x0) <= tol || math.Abs(ca.x1-cb.x1) <= tol {
				shared++
				break
			}
		}
	}
	return shared >= minSharedAnchor
}

// toGrid merges overlapping cell spans into columns and lays every row
// out over them.
func toGrid(rows [][]cell) [][]string {
	type span struct{ x0, x1 float64 }
	var all []span
	for _, r := range rows {
		for _, c := range r {
			all = append(all, span{c.x0, c.x1})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].x0 < all[j].x0 })

	var cols []span
	for _, s := range all {
		if n := len(cols); n > 0 && s.x0 <= cols[n-1].x1 {
			cols[n-1].x1 = math.Max(cols[n-1].x1, s.x1)
			continue
		}
		cols = append(cols, s)
	}

	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = make([]string, len(cols))
		for _, c := range r {
			mid := (c.x0 + c.x1) / 2
			for k, col := range cols {
				if mid >= col.x0 && mid <= col.x1 {
					grid[i][k] = strings.TrimSpace(grid[i][k] + " " + c.text)
					break
				}
			}
		}
	}
	return grid
}
