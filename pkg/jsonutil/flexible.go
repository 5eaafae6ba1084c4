// Package jsonutil provides tolerant decoding for loosely-typed JSON fields.
// Registry exports are inconsistent about scalar types: postal codes and
// years arrive sometimes as strings, sometimes as numbers.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleString decodes a JSON string, number or boolean into a string.
// Null decodes to the empty string.
type FlexibleString string

func (s *FlexibleString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = ""
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexibleString(str)
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		if num == float64(int64(num)) {
			*s = FlexibleString(strconv.FormatInt(int64(num), 10))
		} else {
			*s = FlexibleString(strconv.FormatFloat(num, 'g', -1, 64))
		}
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*s = FlexibleString(strconv.FormatBool(b))
		return nil
	}

	return fmt.Errorf("cannot decode %s as string", trimmed)
}

// FlexibleInt decodes a JSON number or numeric string into an int.
type FlexibleInt int

func (n *FlexibleInt) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*n = 0
		return nil
	}

	var num int
	if err := json.Unmarshal(data, &num); err == nil {
		*n = FlexibleInt(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return fmt.Errorf("cannot decode %q as int: %w", str, err)
		}
		*n = FlexibleInt(parsed)
		return nil
	}

	return fmt.Errorf("cannot decode %s as int", trimmed)
}

// StringPtr converts an optional FlexibleString to an optional plain string.
func StringPtr(s *FlexibleString) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// IntPtr converts an optional FlexibleInt to an optional plain int.
func IntPtr(n *FlexibleInt) *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}
