package report

// normalize.go provides the shared machinery for component normalizers.
//
// UI state arrives loosely shaped: a component may be a bare JSON array of
// rows, or an object carrying its own remarks plus the rows under a
// component-specific key. Row fields may be strings, numbers, or absent.
// The helpers here decode either shape into rawRow maps, build canonical
// DetailRows, drop rows with no user-entered content, and reassign serial
// numbers as 1-based strings in row order.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// rawRow is one loosely-typed row from UI state.
type rawRow map[string]any

// str returns the trimmed string value for key, coercing numbers and
// booleans. Missing keys return "".
func (r rawRow) str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

// decodeList decodes component raw state into remarks plus rows.
//
// A bare array is wrapped as {remarks: "", rows}. An object contributes its
// "remarks" string and the array under listKey. Empty or null raw state
// yields no rows.
func decodeList(raw json.RawMessage, listKey string) (string, []rawRow, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil, nil
	}

	if trimmed[0] == '[' {
		var rows []rawRow
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return "", nil, fmt.Errorf("decode row list: %w", err)
		}
		return "", rows, nil
	}

	var obj struct {
		Remarks string `json:"remarks"`
	}
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return "", nil, fmt.Errorf("decode component object: %w", err)
	}

	rows, err := listField(trimmed, listKey)
	if err != nil {
		return "", nil, err
	}
	return strings.TrimSpace(obj.Remarks), rows, nil
}

// listField extracts the row array stored under key in an object-shaped
// component. A missing or null key yields no rows.
func listField(raw json.RawMessage, key string) ([]rawRow, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode component object: %w", err)
	}

	inner, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(inner), []byte("null")) {
		return nil, nil
	}

	var rows []rawRow
	if err := json.Unmarshal(inner, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", key, err)
	}
	return rows, nil
}

// resolveStatus maps a raw status value onto a reference-option id.
// Blank values resolve to ""; non-blank values that match neither the id
// format nor any display name fail with a ValidationError.
func resolveStatus(options []ReferenceOption, field, value string) (string, error) {
	id, ok := ResolveID(options, value)
	if !ok {
		return "", newUnresolvedRef(field, value)
	}
	return id, nil
}

// rowBuilder converts one raw row into its canonical DetailRow.
type rowBuilder func(r rawRow, refs *ReferenceSet) (DetailRow, error)

// buildDetails converts raw rows, drops rows with no user-entered content,
// and renumbers the survivors.
func buildDetails(rows []rawRow, refs *ReferenceSet, build rowBuilder) ([]DetailRow, error) {
	var details []DetailRow
	for _, r := range rows {
		d, err := build(r, refs)
		if err != nil {
			return nil, err
		}
		if !d.HasContent() {
			continue
		}
		details = append(details, d)
	}
	renumber(details)
	return details, nil
}

// renumber reassigns serial numbers as 1-based strings in row order.
func renumber(details []DetailRow) {
	for i := range details {
		details[i].SerialNumber = strconv.Itoa(i + 1)
	}
}

// listNormalizer builds a NormalizeFunc for the common component shape:
// remarks plus a single detail list. The record is suppressed when remarks
// are blank and no row survives the content filter.
func listNormalizer(listKey string, build rowBuilder) NormalizeFunc {
	return func(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
		remarks, rows, err := decodeList(raw, listKey)
		if err != nil {
			return nil, err
		}

		details, err := buildDetails(rows, refs, build)
		if err != nil {
			return nil, err
		}

		if remarks == "" && len(details) == 0 {
			return nil, nil
		}
		return &ComponentRecord{Remarks: remarks, Details: details}, nil
	}
}

// flatNormalizer builds a NormalizeFunc for components that collapse to a
// single yes/no result plus remarks, with no detail rows. The raw state is
// an object carrying "done" (or "result") and "remarks".
func flatNormalizer() NormalizeFunc {
	return func(raw json.RawMessage, refs *ReferenceSet) (*ComponentRecord, error) {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			return nil, nil
		}

		var row rawRow
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return nil, fmt.Errorf("decode flat component: %w", err)
		}

		value := row.str("done")
		if value == "" {
			value = row.str("result")
		}
		id, err := resolveStatus(refs.YesNoStatuses, "done", value)
		if err != nil {
			return nil, err
		}

		remarks := row.str("remarks")
		if remarks == "" && id == "" {
			return nil, nil
		}
		return &ComponentRecord{Remarks: remarks, YesNoStatusID: id}, nil
	}
}
