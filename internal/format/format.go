// Package format converts between the tabular text shapes users paste into the chat.
package format

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"talktonic/internal/apperr"
)

type Mode string

const (
	ModeJSONToCSV Mode = "json_to_csv"
	ModeUpper     Mode = "upper"
	ModeLower     Mode = "lower"
)

// Unsupported is returned as a normal result for modes this version does not know.
const Unsupported = "Unsupported format type."

// Format applies mode to data. Conversion failures come back as an
// *apperr.Error of kind format; unknown modes are not failures.
func Format(data string, mode Mode) (string, error) {
	switch mode {
	case ModeJSONToCSV:
		out, err := jsonToCSV(data)
		if err != nil {
			return "", apperr.Format("format", err)
		}
		return out, nil
	case ModeUpper:
		return strings.ToUpper(data), nil
	case ModeLower:
		return strings.ToLower(data), nil
	default:
		return Unsupported, nil
	}
}

// Render is Format with failures folded into the returned text.
func Render(data string, mode Mode) string {
	out, err := Format(data, mode)
	if err != nil {
		return apperr.Marker(err)
	}
	return out
}

func jsonToCSV(data string) (string, error) {
	// encoding/json gives the readable syntax error, gjson keeps key order.
	var probe any
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return "", err
	}

	parsed := gjson.Parse(data)
	var items []gjson.Result
	switch {
	case parsed.IsObject():
		items = []gjson.Result{parsed}
	case parsed.IsArray():
		items = parsed.Array()
	default:
		return "", errors.New("expected a JSON object or an array of objects")
	}
	if len(items) == 0 {
		return "", errors.New("no rows to convert: array is empty")
	}

	rows := make([]*row, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return "", fmt.Errorf("element %d is not an object", i)
		}
		rows = append(rows, objectRow(item))
	}

	header := rows[0].keys
	known := make(map[string]struct{}, len(header))
	for _, k := range header {
		known[k] = struct{}{}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, r := range rows {
		var extra []string
		for _, k := range r.keys {
			if _, ok := known[k]; !ok {
				extra = append(extra, fmt.Sprintf("%q", k))
			}
		}
		if len(extra) > 0 {
			return "", fmt.Errorf("dict contains fields not in fieldnames: %s", strings.Join(extra, ", "))
		}
		record := make([]string, len(header))
		for i, k := range header {
			record[i] = r.values[k]
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type row struct {
	keys   []string
	values map[string]string
}

// objectRow flattens one JSON object. Repeated keys keep their first position
// and their last value.
func objectRow(obj gjson.Result) *row {
	r := &row{values: make(map[string]string)}
	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, seen := r.values[k]; !seen {
			r.keys = append(r.keys, k)
		}
		r.values[k] = cellText(value)
		return true
	})
	return r
}

func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	case gjson.True:
		return "True"
	case gjson.False:
		return "False"
	default:
		return v.Raw
	}
}
