// Package transform implements the field normalization pipeline. Every
// transform is a pure, total function over a string value, and every chain is
// idempotent: re-applying a chain to its own output is a no-op.
package transform

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	xtransform "golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Func is a single named normalization step.
type Func func(string) string

// Transform names understood by the rule registry. Unknown names are a
// configuration error caught at snapshot load time, never at run time.
const (
	Uppercase        = "UPPERCASE"
	Lowercase        = "LOWERCASE"
	Trim             = "TRIM"
	RemoveSpaces     = "REMOVE_SPACES"
	RemoveDiacritics = "REMOVE_DIACRITICS"
	NormalizeDate    = "NORMALIZE_DATE"
	ExtractNumber    = "EXTRACT_NUMBER"
	FormatRC         = "FORMAT_RC"
	FormatICO        = "FORMAT_ICO"
	FormatDIC        = "FORMAT_DIC"
	AddressNormalize = "ADDRESS_NORMALIZE"
	NameNormalize    = "NAME_NORMALIZE"
	NameConcat       = "NAME_CONCAT"
	VINNormalize     = "VIN_NORMALIZE"
	SPZNormalize     = "SPZ_NORMALIZE"
)

var registry = map[string]Func{
	Uppercase:        strings.ToUpper,
	Lowercase:        strings.ToLower,
	Trim:             strings.TrimSpace,
	RemoveSpaces:     removeSpaces,
	RemoveDiacritics: removeDiacritics,
	NormalizeDate:    normalizeDate,
	ExtractNumber:    extractNumber,
	FormatRC:         formatRC,
	FormatICO:        formatICO,
	FormatDIC:        formatDIC,
	AddressNormalize: addressNormalize,
	NameNormalize:    nameNormalize,
	NameConcat:       nameNormalize, // composite names are joined upstream; canonicalize here
	VINNormalize:     codeNormalize,
	SPZNormalize:     codeNormalize,
}

// Lookup returns the named transform. Used by the rule registry to fail fast
// on unknown names.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", name)
	}
	return fn, nil
}

// Names returns all registered transform names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Apply runs the chain left to right. The chain must have been validated via
// Lookup beforehand; unknown names here are a programming error.
func Apply(value string, chain []string) (string, error) {
	for _, name := range chain {
		fn, err := Lookup(name)
		if err != nil {
			return "", err
		}
		value = fn(value)
	}
	return value, nil
}

var whitespaceRE = regexp.MustCompile(`\s+`)

func removeSpaces(s string) string {
	return whitespaceRE.ReplaceAllString(s, "")
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

var diacriticsStripper = xtransform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func removeDiacritics(s string) string {
	out, _, err := xtransform.String(diacriticsStripper, s)
	if err != nil {
		return s
	}
	return out
}

var (
	czechDateRE = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	slashDateRE = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

// normalizeDate canonicalizes DD.MM.YYYY and DD/MM/YYYY to YYYY-MM-DD.
// ISO input and anything unrecognized pass through trimmed, which keeps the
// function total and the chain idempotent.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, re := range []*regexp.Regexp{czechDateRE, slashDateRE} {
		if m := re.FindStringSubmatch(s); m != nil {
			day, _ := strconv.Atoi(m[1])
			month, _ := strconv.Atoi(m[2])
			return fmt.Sprintf("%s-%02d-%02d", m[3], month, day)
		}
	}
	return s
}

var numberRE = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

// extractNumber pulls the first numeric token out of mixed text
// ("228/5700" -> "228", "100 kW" -> "100"). Decimal commas become dots.
func extractNumber(s string) string {
	m := numberRE.FindString(s)
	if m == "" {
		return strings.TrimSpace(s)
	}
	return strings.ReplaceAll(m, ",", ".")
}

var nonDigitRE = regexp.MustCompile(`\D`)

// formatRC canonicalizes a national personal number to ######/####.
func formatRC(s string) string {
	digits := nonDigitRE.ReplaceAllString(s, "")
	if len(digits) >= 9 && len(digits) <= 10 {
		return digits[:6] + "/" + digits[6:]
	}
	return strings.TrimSpace(s)
}

// formatICO zero-pads a company identifier to eight digits.
func formatICO(s string) string {
	digits := nonDigitRE.ReplaceAllString(s, "")
	if digits == "" {
		return strings.TrimSpace(s)
	}
	for len(digits) < 8 {
		digits = "0" + digits
	}
	return digits
}

// formatDIC canonicalizes a VAT identifier; bare digit strings get the CZ
// country prefix.
func formatDIC(s string) string {
	s = strings.ToUpper(removeSpaces(s))
	if s != "" && nonDigitRE.ReplaceAllString(s, "") == s {
		return "CZ" + s
	}
	return s
}

var punctuationRE = regexp.MustCompile(`[.,;/]`)

func addressNormalize(s string) string {
	return strings.ToUpper(collapseSpaces(punctuationRE.ReplaceAllString(s, " ")))
}

func nameNormalize(s string) string {
	return strings.ToUpper(collapseSpaces(s))
}

// codeNormalize serves VIN and plate numbers: strip whitespace, uppercase.
func codeNormalize(s string) string {
	return strings.ToUpper(removeSpaces(s))
}
