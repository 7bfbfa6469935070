package model

import (
	"encoding/json"
	"strconv"
)

// Student is a roster entry as returned by the marksheet backend. The
// builder never modifies students.
type Student struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	RollNo   RollNo `json:"rollno"`
	TempName string `json:"temp_name"`
}

// RollNo is a roll number kept exactly as the backend encoded it, so "17"
// is posted back as "17" and 17 as 17.
type RollNo json.RawMessage

// RollNoString builds a roll number encoded as a JSON string.
func RollNoString(s string) RollNo {
	raw, _ := json.Marshal(s)
	return RollNo(raw)
}

// RollNoInt builds a roll number encoded as a JSON number.
func RollNoInt(n int) RollNo {
	return RollNo(strconv.Itoa(n))
}

// String returns the roll number as text, without quotes.
func (r RollNo) String() string {
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return s
	}
	if string(r) == "null" {
		return ""
	}
	return string(r)
}

func (r RollNo) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RollNo) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}
