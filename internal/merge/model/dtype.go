package model

import "fmt"

// DType — закрытый набор типов колонки, решается один раз TypeInferencer'ом.
type DType int

const (
	Empty DType = iota
	Boolean
	Integer
	Float
	DateTime
	String
)

var dtypeNames = [...]string{"empty", "boolean", "integer", "float", "datetime", "string"}

func (d DType) String() string {
	if d < Empty || d > String {
		return fmt.Sprintf("dtype(%d)", int(d))
	}
	return dtypeNames[d]
}

// IsNumeric: Integer или Float
func (d DType) IsNumeric() bool { return d == Integer || d == Float }

func (d DType) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DType) UnmarshalText(b []byte) error {
	for i, n := range dtypeNames {
		if n == string(b) {
			*d = DType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown dtype %q", string(b))
}
