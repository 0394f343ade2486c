package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// валюты, проценты и «пробелы-разделители» (NBSP/NNBSP/thin space)
var numericNoise = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "", "₹", "", "₽", "", "%", "",
	"\u00A0", "", "\u202F", "", "\u2009", "", " ", "", "\t", "",
)

var (
	rxNumeric      = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	rxThousands    = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
	rxDecimalComma = regexp.MustCompile(`^[+-]?\d+,\d{1,2}$`)
)

// ParseNumber парсит "100", "$1,234.50", "12%", "1 234,50", "(42)".
// Буквы и прочий мусор внутри значения: не число.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = numericNoise.Replace(s)
	switch {
	case rxThousands.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case rxDecimalComma.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}
	if !rxNumeric.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// IsIntegral: нет дробной части и помещается в int64
func IsIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<63
}
