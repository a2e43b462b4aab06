package seatwatch

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// CountAtIndex returns a [MetricExtractor] that counts records in a
// JSON list whose element at a fixed position equals a literal string.
//
// The path parameter locates the list using dot notation to navigate
// nested objects. Each record is expected to be an array; a record is
// counted when its index-th element is the string match. Records that
// are too short or whose element is not a string are skipped rather
// than failing the whole evaluation.
//
// This expresses queries such as "number of seats whose 4th field is
// SOLD":
//
//	// For response: {"seats": [["A", "1", "premium", "SOLD"], ...]}
//	extractor := seatwatch.CountAtIndex("seats", 3, "SOLD")
//
// Returns an error if the path does not resolve or does not point at
// a list.
func CountAtIndex(path string, index int, match string) MetricExtractor {
	parts := splitPath(path)

	return func(body []byte) (int64, error) {
		records, err := listAt(body, path, parts)
		if err != nil {
			return 0, err
		}

		var count int64
		for _, rec := range records {
			fields, ok := rec.([]interface{})
			if !ok || index >= len(fields) {
				continue
			}
			if s, ok := fields[index].(string); ok && s == match {
				count++
			}
		}
		return count, nil
	}
}

// CountByField returns a [MetricExtractor] that counts records in a
// JSON list whose named field equals a literal string.
//
// Like [CountAtIndex], but for lists of objects rather than lists of
// arrays:
//
//	// For response: {"seats": [{"row": "A", "status": "SOLD"}, ...]}
//	extractor := seatwatch.CountByField("seats", "status", "SOLD")
func CountByField(path, field, match string) MetricExtractor {
	parts := splitPath(path)

	return func(body []byte) (int64, error) {
		records, err := listAt(body, path, parts)
		if err != nil {
			return 0, err
		}

		var count int64
		for _, rec := range records {
			obj, ok := rec.(map[string]interface{})
			if !ok {
				continue
			}
			if s, ok := obj[field].(string); ok && s == match {
				count++
			}
		}
		return count, nil
	}
}

// ArrayLen returns a [MetricExtractor] that reports the length of the
// JSON list at the given dot-path.
//
// Example:
//
//	// For response: {"seats": [...]}, the metric is the seat count
//	extractor := seatwatch.ArrayLen("seats")
func ArrayLen(path string) MetricExtractor {
	parts := splitPath(path)

	return func(body []byte) (int64, error) {
		records, err := listAt(body, path, parts)
		if err != nil {
			return 0, err
		}
		return int64(len(records)), nil
	}
}

// NumberAt returns a [MetricExtractor] that reads a numeric leaf at
// the given dot-path, truncating any fractional part.
//
// Use this when the endpoint already reports the derived count:
//
//	// For response: {"stats": {"sold": 42}}
//	extractor := seatwatch.NumberAt("stats.sold")
//
// Returns an error if the path does not resolve or the value is not
// a JSON number.
func NumberAt(path string) MetricExtractor {
	parts := splitPath(path)

	return func(body []byte) (int64, error) {
		var data interface{}
		if err := json.Unmarshal(body, &data); err != nil {
			return 0, fmt.Errorf("parse response: %w", err)
		}

		node, err := walkPath(data, path, parts)
		if err != nil {
			return 0, err
		}

		n, ok := node.(float64)
		if !ok {
			return 0, fmt.Errorf("value at %q is not a number", path)
		}
		return int64(math.Trunc(n)), nil
	}
}

// queryPattern matches the count shorthand forms:
//
//	count:PATH[IDX]=MATCH   (records are arrays, IDX is the element position)
//	count:PATH.FIELD=MATCH  (records are objects, FIELD is the key)
var queryPattern = regexp.MustCompile(`^([^\[=]+?)(?:\[(\d+)\]|\.([^.\[=]+))=(.+)$`)

// ParseQuery compiles a shorthand query expression into a
// [MetricExtractor].
//
// Supported forms:
//   - "count:seats[3]=SOLD" → [CountAtIndex]("seats", 3, "SOLD")
//   - "count:seats.status=SOLD" → [CountByField]("seats", "status", "SOLD")
//   - "len:seats" → [ArrayLen]("seats")
//   - "number:stats.sold" → [NumberAt]("stats.sold")
//
// The same syntax is accepted by [WithQuery] and in the YAML
// configuration's query field. Returns an error for unknown or
// malformed expressions.
func ParseQuery(expr string) (MetricExtractor, error) {
	expr = strings.TrimSpace(expr)

	idx := strings.Index(expr, ":")
	if idx == -1 {
		return nil, fmt.Errorf("invalid query %q (expected 'count:...', 'len:path', or 'number:path')", expr)
	}
	kind, rest := expr[:idx], expr[idx+1:]

	switch kind {
	case "count":
		m := queryPattern.FindStringSubmatch(rest)
		if m == nil {
			return nil, fmt.Errorf("invalid count query %q (expected 'count:path[index]=value' or 'count:path.field=value')", expr)
		}
		path, idxStr, field, match := m[1], m[2], m[3], m[4]
		if idxStr != "" {
			n, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("invalid index in query %q: %w", expr, err)
			}
			return CountAtIndex(path, n, match), nil
		}
		return CountByField(path, field, match), nil

	case "len":
		if rest == "" {
			return nil, fmt.Errorf("query 'len' requires a path")
		}
		return ArrayLen(rest), nil

	case "number":
		if rest == "" {
			return nil, fmt.Errorf("query 'number' requires a path")
		}
		return NumberAt(rest), nil

	default:
		return nil, fmt.Errorf("unknown query type %q (expected 'count', 'len', or 'number')", kind)
	}
}

// MustParseQuery is like [ParseQuery] but panics if the expression is
// invalid.
//
// Use this for compile-time constant expressions where you want to
// fail fast. For runtime expressions, use [ParseQuery] instead.
func MustParseQuery(expr string) MetricExtractor {
	extractor, err := ParseQuery(expr)
	if err != nil {
		panic("seatwatch: invalid query expression: " + err.Error())
	}
	return extractor
}

// splitPath splits a dot-path into its parts. An empty path addresses
// the document root.
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// listAt parses body as JSON and returns the list at the dot-path.
func listAt(body []byte, path string, parts []string) ([]interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	node, err := walkPath(data, path, parts)
	if err != nil {
		return nil, err
	}

	records, ok := node.([]interface{})
	if !ok {
		return nil, fmt.Errorf("value at %q is not a list", path)
	}
	return records, nil
}

// walkPath navigates a parsed JSON structure using dot-notation parts.
func walkPath(data interface{}, path string, parts []string) (interface{}, error) {
	current := data
	for _, part := range parts {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("path %q: %q is not an object", path, part)
		}
		current, ok = obj[part]
		if !ok {
			return nil, fmt.Errorf("path %q: field %q not found", path, part)
		}
	}
	return current, nil
}
