package engine

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

const defaultCharWidth = 6.0

// GroupLines clusters words into visual lines, top to bottom, each sorted
// left to right.
func GroupLines(words []Word) [][]Word {
	if len(words) == 0 {
		return nil
	}
	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].X < sorted[j].X
	})

	var lines [][]Word
	var current []Word
	var lineTop float64
	for _, w := range sorted {
		tol := math.Max(2, w.H*0.5)
		if len(current) > 0 && math.Abs(w.Top-lineTop) > tol {
			lines = append(lines, current)
			current = nil
		}
		if len(current) == 0 {
			lineTop = w.Top
		}
		current = append(current, w)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
	}
	return lines
}

// CharWidth estimates the average glyph width of a set of words.
func CharWidth(words []Word) float64 {
	var width float64
	var runes int
	for _, w := range words {
		n := utf8.RuneCountInString(w.Text)
		if n == 0 || w.W <= 0 {
			continue
		}
		width += w.W
		runes += n
	}
	if runes == 0 {
		return defaultCharWidth
	}
	return width / float64(runes)
}

// RenderLayout turns positioned words into monospace text where each word
// starts at the character column matching its x position.
func RenderLayout(words []Word) string {
	lines := GroupLines(words)
	if len(lines) == 0 {
		return ""
	}
	cw := CharWidth(words)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		col := 0
		for j, w := range line {
			target := int(math.Round(w.X / cw))
			if j > 0 && target <= col {
				target = col + 1
			}
			if target > col {
				b.WriteString(strings.Repeat(" ", target-col))
				col = target
			}
			b.WriteString(w.Text)
			col += utf8.RuneCountInString(w.Text)
		}
	}
	return b.String()
}
