package hstats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Bars of the bin with the most samples are drawn this long.
const maxBarLength = 60

// String renders the histogram as a text table followed by a summary line.
func (h *Histogram[T]) String() string {
	var buf strings.Builder

	bins := h.Bins()
	lowers := make([]string, len(bins))
	uppers := make([]string, len(bins))
	col1, col2 := utf8.RuneCountInString("Start"), utf8.RuneCountInString("End")
	var maxCount uint64
	for i, bin := range bins {
		lowers[i] = h.format(bin.Lower)
		uppers[i] = h.format(bin.Upper)
		col1 = max(col1, utf8.RuneCountInString(lowers[i]))
		col2 = max(col2, utf8.RuneCountInString(uppers[i]))
		maxCount = max(maxCount, bin.Count)
	}

	fmt.Fprintf(&buf, "%s | %s\n", center("Start", col1), center("End", col2))
	fmt.Fprintf(&buf, "%s-|-%s-\n", strings.Repeat("-", col1), strings.Repeat("-", col2))

	total := h.Count()
	for i, bin := range bins {
		barLength := 0
		if maxCount > 0 {
			barLength = int(math.Round(float64(bin.Count) / float64(maxCount) * maxBarLength))
		}
		percent := 0.0
		if total > 0 {
			percent = float64(bin.Count) / float64(total) * 100
		}
		fmt.Fprintf(&buf, "%*s | %*s | %s %d (%.2f%%)\n",
			col1, lowers[i], col2, uppers[i],
			strings.Repeat(h.barChar, barLength), bin.Count, percent)
	}

	buf.WriteString("\n")
	fmt.Fprintf(&buf, "Total Count: %d", total)
	fmt.Fprintf(&buf, " Min: %s", h.format(h.Min()))
	fmt.Fprintf(&buf, " Max: %s", h.format(h.Max()))
	fmt.Fprintf(&buf, " Mean: %s", h.format(h.Mean()))
	fmt.Fprintf(&buf, " Std Dev: %s", h.format(h.StdDev()))
	if h.invalid > 0 {
		fmt.Fprintf(&buf, " Invalid: %d", h.invalid)
	}
	buf.WriteString("\n")

	return buf.String()
}

// WriteTo writes the rendered histogram to w in a single write.
func (h *Histogram[T]) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, h.String())
	return int64(n), err
}

func (h *Histogram[T]) format(v T) string {
	return strconv.FormatFloat(float64(v), 'f', h.precision, 64)
}

func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
