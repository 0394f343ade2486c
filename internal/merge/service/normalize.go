package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics: NFD -> убрать combining marks -> NFC ("Crème" -> "Creme", "ё" -> "е").
// transform.Chain хранит состояние, поэтому собирается на каждый вызов.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize — каноническая форма имени колонки: без диакритики, нижний регистр,
// только буквы и цифры ("Nombre_Completo " -> "nombrecompleto").
func Normalize(s string) string {
	s = strings.ToLower(stripDiacritics(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// foldText — нормализация строкового значения для Cleaner: trim, lower, без диакритики.
// Пунктуация и пробелы внутри сохраняются.
func foldText(s string) string {
	return strings.ToLower(stripDiacritics(strings.TrimSpace(s)))
}
