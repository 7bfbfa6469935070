package model

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString is a scalar the backend may send as a JSON string or a JSON
// number. It is re-encoded as a number when its text is a valid JSON number
// and as a string otherwise, so "" stays "".
type FlexString string

// IsNumber reports whether s is a valid JSON number literal.
func (s FlexString) IsNumber() bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

// NumberOrEmpty reports whether s is empty or a number. Numeric form
// inputs accept exactly these values.
func (s FlexString) NumberOrEmpty() bool {
	return s == "" || s.IsNumber()
}

func (s FlexString) String() string {
	return string(s)
}

func (s FlexString) MarshalJSON() ([]byte, error) {
	if s.IsNumber() {
		return []byte(s), nil
	}
	return json.Marshal(string(s))
}

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n)
	return nil
}

// FlexInt builds a FlexString from an int.
func FlexInt(n int) FlexString {
	return FlexString(strconv.Itoa(n))
}
