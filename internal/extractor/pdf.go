// Package extractor pulls the text out of PDF statement files so the flavour
// line rules can match it like any other text export.
package extractor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the text content of each page of a PDF file. Row-based
// extraction is tried first because it preserves the statement's table
// layout best; coordinate-grouped extraction is the fallback for PDFs whose
// text objects aren't row-ordered.
func ExtractText(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf library crashed on %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", path)
	}

	pages = extractByRow(r, numPages)
	if readable(pages) {
		return pages, nil
	}

	pages = extractByContent(r, numPages)
	if readable(pages) {
		return pages, nil
	}

	return nil, fmt.Errorf("no readable text in pdf %s, it may be scanned or use custom font encodings", path)
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent reconstructs lines from the raw text objects, grouping by
// Y coordinate and ordering by X within each row.
func extractByContent(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		type piece struct {
			x float64
			s string
		}
		rows := make(map[int][]piece)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], piece{x: t.X, s: t.S})
		}

		// PDF Y coordinates grow bottom-to-top.
		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			pieces := rows[y]
			sort.Slice(pieces, func(a, b int) bool { return pieces[a].x < pieces[b].x })
			var b strings.Builder
			var prevX float64
			for j, p := range pieces {
				if j > 0 && p.x-prevX > 15 {
					// large horizontal gap, treat as column separator
					b.WriteString("  ")
				}
				b.WriteString(p.s)
				prevX = p.x
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// readable reports whether the extracted pages look like text instead of the
// garbage that identity-encoded fonts produce.
func readable(pages []string) bool {
	total, plain := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < 128 && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
				strings.ContainsRune(".,-/:;()'\"%&+*", r)) {
				plain++
			}
		}
	}
	return total > 50 && float64(plain)/float64(total) > 0.6
}
