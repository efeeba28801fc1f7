// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexInt is an int64 that unmarshals from a JSON number, a quoted number
// ("42"), null or an empty string. The upstream feeds mix all of these.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	// Some feeds ship integral values as floats ("2.0").
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(int64(v))
	return nil
}

// MarshalJSON renders the value as a plain number.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(f))
}

// Int returns the value as int64.
func (f FlexInt) Int() int64 { return int64(f) }

// FlexFloat is a float64 with the same permissive decoding as FlexInt.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

// MarshalJSON renders the value as a plain number.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Float returns the value as float64.
func (f FlexFloat) Float() float64 { return float64(f) }
