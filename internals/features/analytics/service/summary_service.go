package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"olga_backend/internals/features/analytics/dto"
	"olga_backend/internals/features/analytics/model"
)

// SummaryService computes the day-bucketed time series and the
// previous-day totals feeding the charts page.
type SummaryService struct {
	DB *gorm.DB
}

func NewSummaryService(db *gorm.DB) *SummaryService {
	return &SummaryService{DB: db}
}

// GraphsData assembles the full charts payload in one pass over the rows.
func (s *SummaryService) GraphsData(ctx context.Context) (*dto.GraphsResponse, error) {
	var records []model.InstallationStatisticsModel
	if err := s.DB.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}

	students, courses, instances := PerDaySeries(records)
	start, end := LastCalendarDay()
	instancesCount, coursesSum, studentsSum := OverallCounts(records, start, end)
	first, last := dataTimeScope(records)

	return &dto.GraphsResponse{
		Timeline:                  Timeline(records),
		Students:                  students,
		Courses:                   courses,
		Instances:                 instances,
		InstancesCount:            instancesCount,
		CoursesCount:              coursesSum,
		StudentsCount:             studentsSum,
		FirstDatetimeOfUpdateData: first,
		LastDatetimeOfUpdateData:  last,
	}, nil
}

// dataTimeScope finds the first and last record timestamps for the entire
// time of gathering statistics; now when nothing was gathered yet.
func dataTimeScope(records []model.InstallationStatisticsModel) (time.Time, time.Time) {
	if len(records) == 0 {
		now := time.Now().UTC()
		return now, now
	}
	first, last := records[0].DataCreatedAt, records[0].DataCreatedAt
	for i := range records {
		at := records[i].DataCreatedAt
		if at.Before(first) {
			first = at
		}
		if at.After(last) {
			last = at
		}
	}
	return first, last
}
