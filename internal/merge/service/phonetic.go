package service

import "strings"

var soundexDigits = map[byte]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// soundex — American Soundex по латинским буквам нормализованного имени.
// Без латинских букв возвращает "".
func soundex(s string) string {
	letters := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			letters = append(letters, c)
		}
	}
	if len(letters) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteByte(letters[0] - 'a' + 'A')
	prev := soundexDigits[letters[0]]
	for _, c := range letters[1:] {
		d, ok := soundexDigits[c]
		switch {
		case !ok && (c == 'h' || c == 'w'):
			// h/w не разделяют одинаковые коды
			continue
		case !ok:
			prev = 0
		case d != prev:
			b.WriteByte(d)
			prev = d
		}
		if b.Len() == 4 {
			break
		}
	}
	for b.Len() < 4 {
		b.WriteByte('0')
	}
	return b.String()
}

// phoneticSimilarity — сходство Soundex-кодов в [0,1].
func phoneticSimilarity(a, b string) float64 {
	ca, cb := soundex(a), soundex(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}
	return lexicalRatio(ca, cb)
}
