package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Numeric decodes JSON numbers as well as numbers sent as strings ("1", "1700000000").
// Empty strings and null decode to zero.
type Numeric float64

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = Numeric(f)
		return nil
	}
	if string(b) == "true" {
		*n = 1
		return nil
	}
	if string(b) == "false" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*n = Numeric(f)
	return nil
}

func (n Numeric) Int() int64 {
	return int64(n)
}
