package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/model"
)

// ErrInvalidBackfillDate marks a malformed date key in one of the
// historical backfill maps. The whole submission is rejected, nothing is
// silently skipped.
var ErrInvalidBackfillDate = errors.New("invalid backfill date")

// AggregatorService turns validated installation reports into per-day
// statistics rows. All writes for one report run in a single transaction.
type AggregatorService struct {
	DB      *gorm.DB
	Geocode GeocodeFunc
}

func NewAggregatorService(db *gorm.DB) *AggregatorService {
	return &AggregatorService{DB: db, Geocode: NominatimGeocode}
}

// WithResidual recomputes the null-country bucket. The reported country map
// does not count students without a detectable country, so the residual is
// active students minus everything attributed; a pre-existing null bucket
// is folded into the sum before being overwritten. A zero residual drops
// the bucket entirely.
func WithResidual(counts map[string]int64, activeStudentsDay int64) map[string]int64 {
	updated := make(map[string]int64, len(counts)+1)
	var attributed int64
	for country, count := range counts {
		updated[country] = count
		attributed += count
	}

	updated[model.NullCountryKey] = activeStudentsDay - attributed
	if updated[model.NullCountryKey] == 0 {
		delete(updated, model.NullCountryKey)
	}
	return updated
}

// dayEntry accumulates what one calendar day receives from a submission:
// incremental deltas from the backfill maps, plus the snapshot counters
// when the day is today.
type dayEntry struct {
	registered    int64
	enthusiastic  int64
	certificates  int64
	snapshotToday bool
}

// mergeReportDates builds the per-date write set for a submission. Backfill
// deltas for the same date add up, and today's snapshot merges into
// today's backfill entry instead of overwriting it.
func mergeReportDates(req *dto.InstallationStatisticsRequest, today time.Time) (map[string]*dayEntry, error) {
	entries := map[string]*dayEntry{}

	addDeltas := func(deltas map[string]int64, apply func(e *dayEntry, delta int64)) error {
		for dateStr, delta := range deltas {
			if _, err := time.Parse("2006-01-02", dateStr); err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidBackfillDate, dateStr)
			}
			entry := entries[dateStr]
			if entry == nil {
				entry = &dayEntry{}
				entries[dateStr] = entry
			}
			apply(entry, delta)
		}
		return nil
	}

	if err := addDeltas(req.RegisteredStudents, func(e *dayEntry, d int64) { e.registered += d }); err != nil {
		return nil, err
	}
	if err := addDeltas(req.EnthusiasticStudents, func(e *dayEntry, d int64) { e.enthusiastic += d }); err != nil {
		return nil, err
	}
	if err := addDeltas(req.GeneratedCertificates, func(e *dayEntry, d int64) { e.certificates += d }); err != nil {
		return nil, err
	}

	todayKey := model.DayKey(today)
	entry := entries[todayKey]
	if entry == nil {
		entry = &dayEntry{}
		entries[todayKey] = entry
	}
	entry.snapshotToday = true

	return entries, nil
}

// SubmitReport processes one authorized report: residual computation,
// first-report enrichment and the per-day upserts, atomically.
func (s *AggregatorService) SubmitReport(ctx context.Context, installation *model.InstallationModel, req *dto.InstallationStatisticsRequest) error {
	now := time.Now().UTC()

	entries, err := mergeReportDates(req, now)
	if err != nil {
		return err
	}

	var countryCounts map[string]int64
	if req.IsEnthusiast() {
		countryCounts = WithResidual(req.StudentsPerCountry, *req.ActiveStudentsAmountDay)
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsEnthusiast() {
			if err := s.enrichInstallation(tx, installation, req); err != nil {
				return err
			}
		}

		dates := make([]string, 0, len(entries))
		for date := range entries {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		for _, date := range dates {
			if err := upsertDay(tx, installation.InstallationID, date, entries[date], req, countryCounts, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// enrichInstallation fills the descriptive fields once, on the first
// enthusiast report (no platform_url stored yet). Coordinates are
// first-write-wins: explicit fields when both are present, otherwise a
// geocode of the city name. A failed geocode leaves them unset.
func (s *AggregatorService) enrichInstallation(tx *gorm.DB, installation *model.InstallationModel, req *dto.InstallationStatisticsRequest) error {
	if installation.PlatformURL != "" {
		return nil
	}

	installation.PlatformName = req.PlatformName
	installation.PlatformURL = req.PlatformURL
	installation.PlatformCityName = req.PlatformCityName

	if installation.Latitude == nil && installation.Longitude == nil {
		if req.HasCoordinates() {
			installation.Latitude = req.Latitude
			installation.Longitude = req.Longitude
		} else if req.PlatformCityName != "" && s.Geocode != nil {
			if lat, lon, ok := s.Geocode(req.PlatformCityName); ok {
				installation.Latitude = &lat
				installation.Longitude = &lon
			}
		}
	}

	log.Printf("[STATS] enriched installation %d from platform %q", installation.InstallationID, req.PlatformName)
	return tx.Save(installation).Error
}

// upsertDay writes one (installation, day) row. The ON CONFLICT arithmetic
// runs inside the database, so concurrent same-day submissions cannot lose
// an increment. Snapshot counters and the country map are only touched for
// today's entry; data_created_at keeps its first-write value.
func upsertDay(tx *gorm.DB, installationID uint, date string, entry *dayEntry, req *dto.InstallationStatisticsRequest, countryCounts map[string]int64, now time.Time) error {
	record := model.InstallationStatisticsModel{
		InstallationID:        installationID,
		DataDate:              date,
		RegisteredStudents:    entry.registered,
		EnthusiasticStudents:  entry.enthusiastic,
		GeneratedCertificates: entry.certificates,
		StatisticsLevel:       req.StatisticsLevel,
	}

	assignments := map[string]interface{}{
		"registered_students":    gorm.Expr("registered_students + ?", entry.registered),
		"enthusiastic_students":  gorm.Expr("enthusiastic_students + ?", entry.enthusiastic),
		"generated_certificates": gorm.Expr("generated_certificates + ?", entry.certificates),
		"statistics_level":       req.StatisticsLevel,
	}

	if entry.snapshotToday {
		record.DataCreatedAt = now
		record.ActiveStudentsAmountDay = *req.ActiveStudentsAmountDay
		record.ActiveStudentsAmountWeek = *req.ActiveStudentsAmountWeek
		record.ActiveStudentsAmountMonth = *req.ActiveStudentsAmountMonth
		record.CoursesAmount = *req.CoursesAmount

		assignments["active_students_amount_day"] = *req.ActiveStudentsAmountDay
		assignments["active_students_amount_week"] = *req.ActiveStudentsAmountWeek
		assignments["active_students_amount_month"] = *req.ActiveStudentsAmountMonth
		assignments["courses_amount"] = *req.CoursesAmount

		if countryCounts != nil {
			record.StudentsPerCountry = datatypes.NewJSONType(countryCounts)
			assignments["students_per_country"] = datatypes.NewJSONType(countryCounts)
		}
	} else {
		// Historical row: timestamped at the backfill date's midnight.
		backfillDate, _ := time.Parse("2006-01-02", date)
		record.DataCreatedAt = backfillDate
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "installation_id"}, {Name: "data_date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&record).Error
	if err != nil {
		return err
	}

	log.Printf("[STATS] stored statistics for installation %d on %s", installationID, date)
	return nil
}
