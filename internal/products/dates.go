package products

import (
	"regexp"
	"strconv"
)

// leadingYearRe matches the leading 4-digit year of either a bare year
// ("1995") or a full timestamp ("2020-05-15T00:00:00Z").
var leadingYearRe = regexp.MustCompile(`^(\d{4})`)

// parseYear extracts the leading year from a date value. Unparseable or
// absent values yield nil; this never raises.
func parseYear(value string) *int {
	m := leadingYearRe.FindStringSubmatch(value)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &year
}
