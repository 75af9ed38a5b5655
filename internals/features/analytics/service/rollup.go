package service

import (
	"sort"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/model"
)

// UnsetCountryLabel is the tabular display name for students whose country
// is unknown, blank or unrecognised.
const UnsetCountryLabel = "Unset"

// SumCountryCounts folds the per-record country maps into one total map.
func SumCountryCounts(records []model.InstallationStatisticsModel) map[string]int64 {
	totals := map[string]int64{}
	for i := range records {
		for country, count := range records[i].CountryCounts() {
			totals[country] += count
		}
	}
	return totals
}

// MonthBucket is one month's worth of country totals.
type MonthBucket struct {
	Label   string // e.g. "June 2017"
	SortKey string // e.g. "2017-06"
	Totals  map[string]int64
}

// SumCountryCountsByMonth groups records by the calendar month of their
// creation time and sums each month separately, oldest month first.
func SumCountryCountsByMonth(records []model.InstallationStatisticsModel) []MonthBucket {
	byKey := map[string]*MonthBucket{}
	for i := range records {
		key := records[i].DataCreatedAt.Format("2006-01")
		bucket, found := byKey[key]
		if !found {
			bucket = &MonthBucket{
				Label:   records[i].DataCreatedAt.Format("January 2006"),
				SortKey: key,
				Totals:  map[string]int64{},
			}
			byKey[key] = bucket
		}
		for country, count := range records[i].CountryCounts() {
			bucket.Totals[country] += count
		}
	}

	buckets := make([]MonthBucket, 0, len(byKey))
	for _, bucket := range byKey {
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].SortKey < buckets[j].SortKey })
	return buckets
}

// RenderCountries turns a country totals map into the two presentation
// projections: datamap points (alpha-3, valid countries only) and tabular
// rows (name, count, integer percentage).
//
// Rows sharing a display name are merged before sorting. Valid countries
// sort by count descending; the Unset row, when present, always goes last.
// Empty input degenerates to a single zeroed Unset row.
func RenderCountries(totals map[string]int64, resolve CountryResolver) ([]dto.MapPoint, []dto.TabularRow) {
	datamap := []dto.MapPoint{}
	tabular := []dto.TabularRow{}

	if len(totals) == 0 {
		tabular = append(tabular, dto.TabularRow{Country: UnsetCountryLabel})
		return datamap, tabular
	}

	var total int64
	for _, count := range totals {
		total += count
	}

	countsByName := map[string]int64{}
	var names []string
	var unsetCount int64
	unsetPresent := false

	// Iterate codes in a fixed order so merged names keep a stable order.
	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		count := totals[code]
		alpha3, name, ok := resolve(code)
		if !ok {
			unsetPresent = true
			unsetCount += count
			continue
		}
		datamap = append(datamap, dto.MapPoint{Country: alpha3, Count: count})
		if _, seen := countsByName[name]; !seen {
			names = append(names, name)
		}
		countsByName[name] += count
	}

	for _, name := range names {
		tabular = append(tabular, dto.TabularRow{
			Country:    name,
			Count:      countsByName[name],
			Percentage: amountPercentage(countsByName[name], total),
		})
	}
	sort.SliceStable(tabular, func(i, j int) bool { return tabular[i].Count > tabular[j].Count })
	sort.SliceStable(datamap, func(i, j int) bool { return datamap[i].Count > datamap[j].Count })

	if unsetPresent {
		tabular = append(tabular, dto.TabularRow{
			Country:    UnsetCountryLabel,
			Count:      unsetCount,
			Percentage: amountPercentage(unsetCount, total),
		})
	}

	return datamap, tabular
}

// amountPercentage is the integer-truncated share of total; zero total
// never divides.
func amountPercentage(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(count * 100 / total)
}

// TopCountry returns the highest-ranked real country name, or "" when the
// table is empty or led by the Unset row.
func TopCountry(tabular []dto.TabularRow) string {
	if len(tabular) == 0 || tabular[0].Country == UnsetCountryLabel {
		return ""
	}
	return tabular[0].Country
}

// CountriesAmount counts the real countries in the table; the Unset row is
// not a country.
func CountriesAmount(tabular []dto.TabularRow) int {
	amount := 0
	for i := range tabular {
		if tabular[i].Country != UnsetCountryLabel {
			amount++
		}
	}
	return amount
}
