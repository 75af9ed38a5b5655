package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/model"
)

// RollupService aggregates the per-record country maps into render-ready
// projections for the world map page.
type RollupService struct {
	DB      *gorm.DB
	Resolve CountryResolver
}

func NewRollupService(db *gorm.DB) *RollupService {
	return &RollupService{DB: db, Resolve: ISOCountryResolver}
}

// MonthlyRollups buckets all enthusiast records by calendar month and
// renders each bucket, oldest month first.
func (s *RollupService) MonthlyRollups(ctx context.Context) ([]dto.MonthRollup, error) {
	var records []model.InstallationStatisticsModel
	err := s.DB.WithContext(ctx).
		Where("statistics_level = ?", model.LevelEnthusiast).
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	buckets := SumCountryCountsByMonth(records)
	rollups := make([]dto.MonthRollup, 0, len(buckets))
	for _, bucket := range buckets {
		datamap, tabular := RenderCountries(bucket.Totals, s.Resolve)
		rollups = append(rollups, dto.MonthRollup{
			Label:           bucket.Label,
			SortKey:         bucket.SortKey,
			Datamap:         datamap,
			Tabular:         tabular,
			TopCountry:      TopCountry(tabular),
			CountriesAmount: CountriesAmount(tabular),
		})
	}
	return rollups, nil
}

// WorldRollup renders the combined country statistics for one time window,
// typically the previous calendar day.
func (s *RollupService) WorldRollup(ctx context.Context, start, end time.Time) ([]dto.MapPoint, []dto.TabularRow, error) {
	var records []model.InstallationStatisticsModel
	err := s.DB.WithContext(ctx).
		Where("statistics_level = ?", model.LevelEnthusiast).
		Where("data_created_at >= ? AND data_created_at < ?", start, end).
		Find(&records).Error
	if err != nil {
		return nil, nil, err
	}

	datamap, tabular := RenderCountries(SumCountryCounts(records), s.Resolve)
	return datamap, tabular, nil
}
