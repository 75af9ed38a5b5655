package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/model"
)

// stubResolver keeps the rendering tests independent of the ISO table.
func stubResolver(alpha2 string) (string, string, bool) {
	known := map[string][2]string{
		"CA": {"CAN", "Canada"},
		"RU": {"RUS", "Russia"},
		"UA": {"UKR", "Ukraine"},
		"DE": {"DEU", "Germany"},
	}
	entry, ok := known[alpha2]
	if !ok {
		return "", "", false
	}
	return entry[0], entry[1], true
}

func statsRecord(installationID uint, createdAt time.Time, counts map[string]int64) model.InstallationStatisticsModel {
	record := model.InstallationStatisticsModel{
		InstallationID:  installationID,
		DataDate:        model.DayKey(createdAt),
		DataCreatedAt:   createdAt,
		StatisticsLevel: model.LevelEnthusiast,
	}
	if counts != nil {
		record.StudentsPerCountry = datatypes.NewJSONType(counts)
	}
	return record
}

func TestRenderCountriesSortAndPercentage(t *testing.T) {
	totals := map[string]int64{
		"CA":                 37086,
		"RU":                 5264,
		"UA":                 4022,
		model.NullCountryKey: 2,
	}

	datamap, tabular := RenderCountries(totals, stubResolver)

	require.Equal(t, []dto.TabularRow{
		{Country: "Canada", Count: 37086, Percentage: 79},
		{Country: "Russia", Count: 5264, Percentage: 11},
		{Country: "Ukraine", Count: 4022, Percentage: 8},
		{Country: UnsetCountryLabel, Count: 2, Percentage: 0},
	}, tabular)

	require.Equal(t, []dto.MapPoint{
		{Country: "CAN", Count: 37086},
		{Country: "RUS", Count: 5264},
		{Country: "UKR", Count: 4022},
	}, datamap)
}

func TestRenderCountriesUnsetAlwaysLast(t *testing.T) {
	totals := map[string]int64{
		"UA":                 5,
		model.NullCountryKey: 1000,
	}

	_, tabular := RenderCountries(totals, stubResolver)

	require.Len(t, tabular, 2)
	assert.Equal(t, "Ukraine", tabular[0].Country)
	assert.Equal(t, UnsetCountryLabel, tabular[1].Country)
	assert.Equal(t, int64(1000), tabular[1].Count)
}

func TestRenderCountriesUnrecognizedCodesCollapse(t *testing.T) {
	totals := map[string]int64{
		"DE": 10,
		"XX": 3,
		"":   2,
	}

	datamap, tabular := RenderCountries(totals, stubResolver)

	require.Equal(t, []dto.MapPoint{{Country: "DEU", Count: 10}}, datamap)
	require.Equal(t, []dto.TabularRow{
		{Country: "Germany", Count: 10, Percentage: 66},
		{Country: UnsetCountryLabel, Count: 5, Percentage: 33},
	}, tabular)
}

func TestRenderCountriesEmptyInput(t *testing.T) {
	datamap, tabular := RenderCountries(map[string]int64{}, stubResolver)

	assert.Empty(t, datamap)
	require.Equal(t, []dto.TabularRow{{Country: UnsetCountryLabel, Count: 0, Percentage: 0}}, tabular)
	assert.Equal(t, 0, CountriesAmount(tabular))
	assert.Equal(t, "", TopCountry(tabular))
}

func TestRenderCountriesZeroTotal(t *testing.T) {
	totals := map[string]int64{"CA": 0, model.NullCountryKey: 0}

	_, tabular := RenderCountries(totals, stubResolver)

	for _, row := range tabular {
		assert.Equal(t, 0, row.Percentage)
	}
}

func TestTopCountry(t *testing.T) {
	assert.Equal(t, "Canada", TopCountry([]dto.TabularRow{
		{Country: "Canada", Count: 10},
		{Country: UnsetCountryLabel, Count: 2},
	}))
	assert.Equal(t, "", TopCountry([]dto.TabularRow{
		{Country: UnsetCountryLabel, Count: 20},
		{Country: "Canada", Count: 2},
	}))
	assert.Equal(t, "", TopCountry(nil))
}

func TestCountriesAmount(t *testing.T) {
	assert.Equal(t, 2, CountriesAmount([]dto.TabularRow{
		{Country: "Canada"},
		{Country: "Ukraine"},
		{Country: UnsetCountryLabel},
	}))
	assert.Equal(t, 0, CountriesAmount([]dto.TabularRow{{Country: UnsetCountryLabel}}))
	assert.Equal(t, 0, CountriesAmount(nil))
}

func TestSumCountryCounts(t *testing.T) {
	records := []model.InstallationStatisticsModel{
		statsRecord(1, time.Date(2017, 6, 1, 15, 30, 30, 0, time.UTC), map[string]int64{"CA": 10, "UA": 5}),
		statsRecord(2, time.Date(2017, 6, 1, 16, 0, 0, 0, time.UTC), map[string]int64{"CA": 7, model.NullCountryKey: 1}),
		statsRecord(3, time.Date(2017, 6, 2, 9, 0, 0, 0, time.UTC), nil),
	}

	totals := SumCountryCounts(records)

	require.Equal(t, map[string]int64{"CA": 17, "UA": 5, model.NullCountryKey: 1}, totals)
}

func TestSumCountryCountsByMonth(t *testing.T) {
	records := []model.InstallationStatisticsModel{
		statsRecord(1, time.Date(2017, 7, 3, 12, 0, 0, 0, time.UTC), map[string]int64{"CA": 2}),
		statsRecord(1, time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC), map[string]int64{"CA": 10}),
		statsRecord(2, time.Date(2017, 6, 20, 12, 0, 0, 0, time.UTC), map[string]int64{"UA": 4}),
	}

	buckets := SumCountryCountsByMonth(records)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2017-06", buckets[0].SortKey)
	assert.Equal(t, "June 2017", buckets[0].Label)
	assert.Equal(t, map[string]int64{"CA": 10, "UA": 4}, buckets[0].Totals)
	assert.Equal(t, "2017-07", buckets[1].SortKey)
	assert.Equal(t, "July 2017", buckets[1].Label)
	assert.Equal(t, map[string]int64{"CA": 2}, buckets[1].Totals)
}

func TestISOCountryResolver(t *testing.T) {
	alpha3, name, ok := ISOCountryResolver("CA")
	require.True(t, ok)
	assert.Equal(t, "CAN", alpha3)
	assert.Equal(t, "Canada", name)

	alpha3, _, ok = ISOCountryResolver("ua")
	require.True(t, ok)
	assert.Equal(t, "UKR", alpha3)

	_, _, ok = ISOCountryResolver("XX")
	assert.False(t, ok)

	_, _, ok = ISOCountryResolver("")
	assert.False(t, ok)

	_, _, ok = ISOCountryResolver(model.NullCountryKey)
	assert.False(t, ok)
}

func TestWorldRollupWindow(t *testing.T) {
	db := newTestDB(t)
	first := createInstallation(t, db, "token-1", "uid-1")
	second := createInstallation(t, db, "token-2", "uid-2")

	start := time.Date(2017, 6, 2, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	inWindow := statsRecord(first.InstallationID, start.Add(10*time.Hour), map[string]int64{"CA": 5})
	beforeWindow := statsRecord(first.InstallationID, start.Add(-time.Minute), map[string]int64{"UA": 9})
	atEnd := statsRecord(first.InstallationID, end, map[string]int64{"DE": 4})
	paranoid := statsRecord(second.InstallationID, start.Add(12*time.Hour), nil)
	paranoid.StatisticsLevel = model.LevelParanoid
	require.NoError(t, db.Create(&[]model.InstallationStatisticsModel{
		inWindow, beforeWindow, atEnd, paranoid,
	}).Error)

	rollup := &RollupService{DB: db, Resolve: stubResolver}
	datamap, tabular, err := rollup.WorldRollup(context.Background(), start, end)
	require.NoError(t, err)

	require.Equal(t, []dto.MapPoint{{Country: "CAN", Count: 5}}, datamap)
	require.Equal(t, []dto.TabularRow{{Country: "Canada", Count: 5, Percentage: 100}}, tabular)
}

// "XX" resolves to the ISO table's None placeholder entry; it must collapse
// into the Unset row instead of rendering as a country named "None".
func TestRenderCountriesPlaceholderCode(t *testing.T) {
	datamap, tabular := RenderCountries(map[string]int64{"CA": 4, "XX": 1}, ISOCountryResolver)

	require.Equal(t, []dto.MapPoint{{Country: "CAN", Count: 4}}, datamap)
	require.Equal(t, []dto.TabularRow{
		{Country: "Canada", Count: 4, Percentage: 80},
		{Country: UnsetCountryLabel, Count: 1, Percentage: 20},
	}, tabular)
	assert.Equal(t, "Canada", TopCountry(tabular))
	assert.Equal(t, 1, CountriesAmount(tabular))
}
