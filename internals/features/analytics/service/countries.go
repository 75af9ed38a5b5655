package service

import (
	"strings"

	"github.com/biter777/countries"
)

// CountryResolver turns an ISO 3166 alpha-2 code into its alpha-3 code and
// display name. ok is false for the null bucket and anything unrecognised.
type CountryResolver func(alpha2 string) (alpha3, name string, ok bool)

// ISOCountryResolver is the default resolver backed by the ISO 3166 table.
func ISOCountryResolver(alpha2 string) (string, string, bool) {
	code := strings.ToUpper(strings.TrimSpace(alpha2))
	if code == "" {
		return "", "", false
	}
	country := countries.ByName(code)
	// "XX" maps to the table's None entry, which passes IsValid; treat it
	// as unresolved so placeholder codes fall into the Unset bucket.
	if country == countries.None || !country.IsValid() {
		return "", "", false
	}
	return country.Alpha3(), country.String(), true
}
