package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	parenRe = regexp.MustCompile(`\([^)]*\)`)
	mmRe    = regexp.MustCompile(`(?i)\bmm\b`)
)

// Name builds the comparison key used to join product, supplier and material
// names, which are free text and not foreign-keyed.
//
//	Name("Fio (3,17mm)")        == "FIO"
//	Name("Cobre Eletrolítico")  == "COBRE ELETROLITICO"
func Name(s string) string {
	s = stripAccents(s)
	s = parenRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "~", " ")
	s = mmRe.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.ToUpper(strings.Join(strings.Fields(b.String()), " "))
}

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
