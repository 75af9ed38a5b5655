package service

import (
	"sort"
	"time"

	"olga_backend/internals/features/analytics/model"
)

// Timeline lists the distinct calendar days covered by the records,
// ascending. Same-day records collapse to one entry, which also covers
// chatty test installations reporting every few seconds.
func Timeline(records []model.InstallationStatisticsModel) []string {
	seen := map[string]struct{}{}
	days := []string{}
	for i := range records {
		day := records[i].DataDate
		if _, found := seen[day]; found {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// PerDaySeries sums students and courses per distinct day and counts the
// installations that reported that day. The three slices line up with
// Timeline of the same records.
func PerDaySeries(records []model.InstallationStatisticsModel) (students, courses, instances []int64) {
	type dayTotals struct {
		students      int64
		courses       int64
		installations map[uint]struct{}
	}

	byDay := map[string]*dayTotals{}
	for i := range records {
		day := records[i].DataDate
		totals, found := byDay[day]
		if !found {
			totals = &dayTotals{installations: map[uint]struct{}{}}
			byDay[day] = totals
		}
		totals.students += records[i].ActiveStudentsAmountDay
		totals.courses += records[i].CoursesAmount
		totals.installations[records[i].InstallationID] = struct{}{}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	students = make([]int64, 0, len(days))
	courses = make([]int64, 0, len(days))
	instances = make([]int64, 0, len(days))
	for _, day := range days {
		students = append(students, byDay[day].students)
		courses = append(courses, byDay[day].courses)
		instances = append(instances, int64(len(byDay[day].installations)))
	}
	return students, courses, instances
}

// OverallCounts totals the records inside the half-open [start, end)
// window. The sums are nil when no record matched, so a day with nothing
// reported is distinguishable from a day that reported zeros.
func OverallCounts(records []model.InstallationStatisticsModel, start, end time.Time) (instances int64, coursesSum, studentsSum *int64) {
	for i := range records {
		at := records[i].DataCreatedAt
		if at.Before(start) || !at.Before(end) {
			continue
		}
		instances++
		if coursesSum == nil {
			coursesSum = new(int64)
			studentsSum = new(int64)
		}
		*coursesSum += records[i].CoursesAmount
		*studentsSum += records[i].ActiveStudentsAmountDay
	}
	return instances, coursesSum, studentsSum
}

// LastCalendarDay returns the half-open [start, end) window covering the
// previous full calendar day. A record written exactly at midnight belongs
// to exactly one day.
func LastCalendarDay() (time.Time, time.Time) {
	now := time.Now().UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -1)
	return start, end
}
