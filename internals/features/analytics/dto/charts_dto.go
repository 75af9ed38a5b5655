package dto

import "time"

// MapPoint is one plottable country on the world map (alpha-3 code).
type MapPoint struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// TabularRow is one line of the per-country table. Percentage is the
// integer-truncated share of the map's total, unknown bucket included.
type TabularRow struct {
	Country    string `json:"country"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// MonthRollup is one month bucket of the country statistics, ready for the
// map page. SortKey orders buckets chronologically; Label is what humans see.
type MonthRollup struct {
	Label           string       `json:"label"`
	SortKey         string       `json:"sort_key"`
	Datamap         []MapPoint   `json:"datamap"`
	Tabular         []TabularRow `json:"tabular"`
	TopCountry      string       `json:"top_country"`
	CountriesAmount int          `json:"countries_amount"`
}

// GraphsResponse feeds the students/courses/instances charts.
type GraphsResponse struct {
	Timeline  []string `json:"timeline"`
	Students  []int64  `json:"students"`
	Courses   []int64  `json:"courses"`
	Instances []int64  `json:"instances"`

	// Previous-calendar-day totals; nil means nothing was reported,
	// as opposed to an explicit zero.
	InstancesCount int64  `json:"instances_count"`
	CoursesCount   *int64 `json:"courses_count"`
	StudentsCount  *int64 `json:"students_count"`

	FirstDatetimeOfUpdateData time.Time `json:"first_datetime_of_update_data"`
	LastDatetimeOfUpdateData  time.Time `json:"last_datetime_of_update_data"`
}

type WorldMapResponse struct {
	Months []MonthRollup `json:"months"`
}

// WorldMapDayResponse is the previous-calendar-day slice of the world map.
type WorldMapDayResponse struct {
	Datamap         []MapPoint   `json:"datamap"`
	Tabular         []TabularRow `json:"tabular"`
	TopCountry      string       `json:"top_country"`
	CountriesAmount int          `json:"countries_amount"`
}
