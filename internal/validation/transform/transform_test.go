package transform

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TransformSuite struct {
	suite.Suite
}

func TestTransformSuite(t *testing.T) {
	suite.Run(t, new(TransformSuite))
}

// ============================================================
// Individual transforms
// ============================================================

func (s *TransformSuite) TestNamedTransforms() {
	cases := []struct {
		name  string
		chain []string
		in    string
		want  string
	}{
		{"uppercase", []string{Uppercase}, "Škoda octavia", "ŠKODA OCTAVIA"},
		{"lowercase", []string{Lowercase}, "VOLVO", "volvo"},
		{"trim", []string{Trim}, "  5L94454 ", "5L94454"},
		{"remove spaces", []string{RemoveSpaces}, "5L 944 54", "5L94454"},
		{"remove diacritics", []string{RemoveDiacritics}, "Dvořák Žďár", "Dvorak Zdar"},
		{"czech date", []string{NormalizeDate}, "15.01.2024", "2024-01-15"},
		{"czech date single digits", []string{NormalizeDate}, "5.3.2024", "2024-03-05"},
		{"slash date", []string{NormalizeDate}, "15/01/2024", "2024-01-15"},
		{"iso date passthrough", []string{NormalizeDate}, "2024-01-15", "2024-01-15"},
		{"extract number from ratio", []string{ExtractNumber}, "228/5700", "228"},
		{"extract number with unit", []string{ExtractNumber}, "100 kW", "100"},
		{"extract number decimal comma", []string{ExtractNumber}, "10,5", "10.5"},
		{"extract number negative", []string{ExtractNumber}, "temp -5 C", "-5"},
		{"format rc", []string{FormatRC}, "940815 1234", "940815/1234"},
		{"format rc already formatted", []string{FormatRC}, "940815/1234", "940815/1234"},
		{"format rc nine digits", []string{FormatRC}, "440815123", "440815/123"},
		{"format ico pads", []string{FormatICO}, "123456", "00123456"},
		{"format ico strips label", []string{FormatICO}, "IČO: 12345678", "12345678"},
		{"format dic adds prefix", []string{FormatDIC}, "12345678", "CZ12345678"},
		{"format dic keeps prefix", []string{FormatDIC}, "cz 12345678", "CZ12345678"},
		{"address normalize", []string{AddressNormalize}, "Hlavní 12,  Praha 1", "HLAVNÍ 12 PRAHA 1"},
		{"name normalize", []string{NameNormalize}, "  jan   novák ", "JAN NOVÁK"},
		{"name concat", []string{NameConcat}, "Jan  Novák", "JAN NOVÁK"},
		{"vin normalize", []string{VINNormalize}, "tmbjj7 ne3e01", "TMBJJ7NE3E01"},
		{"spz normalize", []string{SPZNormalize}, "5l 94454", "5L94454"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			got, err := Apply(tc.in, tc.chain)
			s.Require().NoError(err)
			s.Equal(tc.want, got)
		})
	}
}

func (s *TransformSuite) TestUnknownTransform() {
	_, err := Lookup("REVERSE")
	s.Require().Error(err)
	s.Contains(err.Error(), "REVERSE")

	_, err = Apply("x", []string{Trim, "REVERSE"})
	s.Require().Error(err)
}

func (s *TransformSuite) TestChainOrder() {
	// left to right: trim, strip diacritics, uppercase
	got, err := Apply("  Dvořák ", []string{Trim, RemoveDiacritics, Uppercase})
	s.Require().NoError(err)
	s.Equal("DVORAK", got)
}

// ============================================================
// Idempotence: apply(apply(v, T), T) == apply(v, T) for every
// registered transform over a spread of inputs
// ============================================================

func (s *TransformSuite) TestIdempotence() {
	samples := []string{
		"",
		"  Škoda Octavia 2.0 TDI  ",
		"5l 94454",
		"15.01.2024",
		"15/01/2024",
		"2024-01-15",
		"228/5700",
		"100 kW",
		"10,5",
		"940815 1234",
		"IČO: 123456",
		"cz 12345678",
		"Hlavní 12, Praha 1",
		"TMBJJ7NE3E012345",
		"Jan   Novák",
		"-5",
	}
	for _, name := range Names() {
		for _, in := range samples {
			once, err := Apply(in, []string{name})
			s.Require().NoError(err)
			twice, err := Apply(once, []string{name})
			s.Require().NoError(err)
			s.Equal(once, twice, "%s not idempotent on %q", name, in)
		}
	}
}
