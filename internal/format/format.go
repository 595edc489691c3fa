package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"resourcebot/internal/model"
)

// NotFound is the reply for an empty result set.
const NotFound = "No resources found."

const fence = "```"

var tableHeader = []string{"id", "resource", "region", "island", "description"}

// Backticks in stored values would open or close the surrounding code block.
// Table cells swap them for a look-alike of the same width; JSON uses its own
// escape, which decodes back to the original text.
var (
	cellBackticks = strings.NewReplacer("`", "\u02cb")
	jsonBackticks = strings.NewReplacer("`", `\u0060`)
)

// ResourceTable renders rows as an aligned text table inside a code block.
// An empty slice renders as NotFound.
func ResourceTable(rows []model.Resource) string {
	if len(rows) == 0 {
		return NotFound
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			strconv.FormatInt(r.ID, 10),
			cellBackticks.Replace(r.Resource),
			cellBackticks.Replace(r.Region),
			cellBackticks.Replace(r.Island),
			cellBackticks.Replace(r.Description),
		})
	}

	widths := make([]int, len(tableHeader))
	for i, h := range tableHeader {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range cells {
		for i, c := range row {
			if n := utf8.RuneCountInString(c); n > widths[i] {
				widths[i] = n
			}
		}
	}

	dashes := make([]string, len(widths))
	for i, w := range widths {
		dashes[i] = strings.Repeat("-", w)
	}

	var b strings.Builder
	b.WriteString(fence + "\n")
	writeTableRow(&b, tableHeader, widths)
	writeTableRow(&b, dashes, widths)
	for _, row := range cells {
		writeTableRow(&b, row, widths)
	}
	b.WriteString(fence)
	return b.String()
}

func writeTableRow(b *strings.Builder, cells []string, widths []int) {
	var line strings.Builder
	for i, c := range cells {
		if i > 0 {
			line.WriteString("  ")
		}
		line.WriteString(c)
		line.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(c)))
	}
	b.WriteString(strings.TrimRight(line.String(), " "))
	b.WriteString("\n")
}

// EchoBlock renders a confirmation line followed by v as indented JSON in a
// code block.
func EchoBlock(title string, v any) string {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Sprintf("%s %s%s%s", title, fence, cellBackticks.Replace(fmt.Sprintf("%+v", v)), fence)
	}
	return fmt.Sprintf("%s %s%s%s", title, fence, jsonBackticks.Replace(string(data)), fence)
}

// SplitMessage splits text into chunks of at most limit runes, breaking on
// line boundaries where possible. A code block left open at the end of a
// chunk is closed there and reopened at the start of the next one.
func SplitMessage(text string, limit int) []string {
	const overhead = len(fence)*2 + 2
	if limit <= overhead || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	budget := limit - overhead

	var raw []string
	var cur strings.Builder
	curLen := 0
	for _, piece := range splitPieces(text, budget) {
		n := utf8.RuneCountInString(piece)
		if curLen+n > budget && curLen > 0 {
			raw = append(raw, cur.String())
			cur.Reset()
			curLen = 0
		}
		cur.WriteString(piece)
		curLen += n
	}
	if curLen > 0 {
		raw = append(raw, cur.String())
	}

	chunks := make([]string, 0, len(raw))
	inFence := false
	for _, c := range raw {
		s := c
		if inFence {
			s = fence + "\n" + s
		}
		if strings.Count(c, fence)%2 == 1 {
			inFence = !inFence
		}
		if inFence {
			s = strings.TrimRight(s, "\n") + "\n" + fence
		}
		chunks = append(chunks, s)
	}
	return chunks
}

// splitPieces cuts text into lines (newline kept) no longer than max runes.
func splitPieces(text string, max int) []string {
	var pieces []string
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		for utf8.RuneCountInString(line) > max {
			r := []rune(line)
			pieces = append(pieces, string(r[:max]))
			line = string(r[max:])
		}
		pieces = append(pieces, line)
	}
	return pieces
}

// FormatBytes formats bytes in a readable format.
func FormatBytes(bytes uint64) string {
	gb := float64(bytes) / 1024 / 1024 / 1024
	if gb >= 1000 {
		return fmt.Sprintf("%.0fT", gb/1024)
	}
	if gb < 1 {
		return fmt.Sprintf("%.0fM", gb*1024)
	}
	return fmt.Sprintf("%.0fG", gb)
}

// FormatRAM formats RAM in a readable format.
func FormatRAM(mb uint64) string {
	if mb >= 1024 {
		return fmt.Sprintf("%.1fG", float64(mb)/1024.0)
	}
	return fmt.Sprintf("%dM", mb)
}

// FormatDuration formats a duration readably.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}

// Truncate truncates a string to max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "~"
}
