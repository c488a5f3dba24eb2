package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Table is CSV text read with its first row as the header.
type Table struct {
	Columns []string
	Rows    [][]any // nil marks a missing value
}

var errNoColumns = errors.New("no columns to parse from input")

// Missing-value spellings that read as null.
var naValues = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "#N/A": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {},
}

// ParseCSV reads comma separated text with a header row. Blank lines are
// skipped, short rows are padded with nulls and long rows are an error.
func ParseCSV(text string) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var header []string
	var raw [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlank(rec) {
			continue
		}
		if header == nil {
			header = rec
			continue
		}
		if len(rec) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("expected %d fields in line %d, saw %d", len(header), line, len(rec))
		}
		raw = append(raw, rec)
	}
	if header == nil {
		return nil, errNoColumns
	}

	t := &Table{Columns: columnNames(header)}
	cols := len(header)
	kinds := make([]cellKind, cols)
	for c := 0; c < cols; c++ {
		kinds[c] = inferKind(raw, c)
	}
	for _, rec := range raw {
		vals := make([]any, cols)
		for c := 0; c < cols; c++ {
			if c < len(rec) {
				vals[c] = convert(rec[c], kinds[c])
			}
		}
		t.Rows = append(t.Rows, vals)
	}
	return t, nil
}

// Records returns the rows as field→value mappings in column order.
func (t *Table) Records() []*orderedmap.OrderedMap[string, any] {
	out := make([]*orderedmap.OrderedMap[string, any], 0, len(t.Rows))
	for _, vals := range t.Rows {
		rec := orderedmap.New[string, any]()
		for i, col := range t.Columns {
			rec.Set(col, vals[i])
		}
		out = append(out, rec)
	}
	return out
}

// JSON renders the records as indented JSON in column order. Text is written
// as is, without HTML escaping.
func (t *Table) JSON() (string, error) {
	recs := t.Records()
	if len(recs) == 0 {
		return "[]", nil
	}
	var b strings.Builder
	b.WriteString("[\n")
	for i, rec := range recs {
		b.WriteString("  {\n")
		for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
			k, err := jsonText(pair.Key)
			if err != nil {
				return "", err
			}
			v, err := jsonText(pair.Value)
			if err != nil {
				return "", err
			}
			b.WriteString("    " + k + ": " + v)
			if pair.Next() != nil {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString("  }")
		if i < len(recs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]")
	return b.String(), nil
}

func jsonText(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Text renders the table as a bordered plain-text grid.
func (t *Table) Text() string {
	rows := make([][]string, 0, len(t.Rows))
	for _, vals := range t.Rows {
		cells := make([]string, len(vals))
		for i, v := range vals {
			cells[i] = displayCell(v)
		}
		rows = append(rows, cells)
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns...).
		Rows(rows...).
		String()
}

// DescribeCSV parses text and returns the JSON and table views under fixed labels.
func DescribeCSV(text string) (string, error) {
	t, err := ParseCSV(text)
	if err != nil {
		return "", err
	}
	js, err := t.JSON()
	if err != nil {
		return "", err
	}
	return "Detected JSON:\n" + js + "\n\nDetected Table:\n" + t.Text(), nil
}

type cellKind int

const (
	kindString cellKind = iota
	kindInt
	kindFloat
	kindBool
)

func inferKind(raw [][]string, col int) cellKind {
	allInt, allFloat, allBool := true, true, true
	seen := false
	for _, rec := range raw {
		if col >= len(rec) || isNA(rec[col]) {
			continue
		}
		seen = true
		v := rec[col]
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInt = false
		}
		if f, err := strconv.ParseFloat(v, 64); err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			allFloat = false
		}
		if lv := strings.ToLower(v); lv != "true" && lv != "false" {
			allBool = false
		}
	}
	switch {
	case !seen:
		return kindString
	case allInt:
		return kindInt
	case allFloat:
		return kindFloat
	case allBool:
		return kindBool
	default:
		return kindString
	}
}

func convert(v string, k cellKind) any {
	if isNA(v) {
		return nil
	}
	switch k {
	case kindInt:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case kindBool:
		return strings.EqualFold(v, "true")
	default:
		return v
	}
}

func displayCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// columnNames fills empty names and suffixes duplicates with ".1", ".2", ...
func columnNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := used[name]; dup {
			used[name] = n + 1
			candidate := fmt.Sprintf("%s.%d", name, n+1)
			for {
				if _, taken := used[candidate]; !taken {
					break
				}
				used[name]++
				candidate = fmt.Sprintf("%s.%d", name, used[name])
			}
			name = candidate
		}
		used[name] = 0
		out[i] = name
	}
	return out
}

func isNA(v string) bool {
	_, ok := naValues[v]
	return ok
}

func isBlank(rec []string) bool {
	return len(rec) == 1 && strings.TrimSpace(rec[0]) == ""
}
