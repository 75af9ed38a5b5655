package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	LevelParanoid   = "paranoid"
	LevelEnthusiast = "enthusiast"
)

// NullCountryKey is the bucket inside students_per_country for students
// whose country could not be determined. It is computed server-side as the
// residual between active students and the sum of the reported countries.
const NullCountryKey = "null"

// InstallationStatisticsModel is one row per installation per calendar day.
// DataDate holds the day key backing the upsert; DataCreatedAt keeps the
// full first-write timestamp (or the backfill date for historical rows).
//
// Snapshot counters (active students, courses) are overwritten on same-day
// resubmission, the three incremental counters accumulate instead.
type InstallationStatisticsModel struct {
	StatisticsID   uint      `json:"statistics_id" gorm:"column:statistics_id;primaryKey"`
	InstallationID uint      `json:"installation_id" gorm:"column:installation_id;not null;uniqueIndex:idx_stats_installation_day"`
	DataDate       string    `json:"data_date" gorm:"column:data_date;type:varchar(10);not null;uniqueIndex:idx_stats_installation_day"`
	DataCreatedAt  time.Time `json:"data_created_at" gorm:"column:data_created_at;not null"`

	ActiveStudentsAmountDay   int64 `json:"active_students_amount_day" gorm:"column:active_students_amount_day;not null;default:0"`
	ActiveStudentsAmountWeek  int64 `json:"active_students_amount_week" gorm:"column:active_students_amount_week;not null;default:0"`
	ActiveStudentsAmountMonth int64 `json:"active_students_amount_month" gorm:"column:active_students_amount_month;not null;default:0"`
	CoursesAmount             int64 `json:"courses_amount" gorm:"column:courses_amount;not null;default:0"`

	RegisteredStudents    int64 `json:"registered_students" gorm:"column:registered_students;not null;default:0"`
	EnthusiasticStudents  int64 `json:"enthusiastic_students" gorm:"column:enthusiastic_students;not null;default:0"`
	GeneratedCertificates int64 `json:"generated_certificates" gorm:"column:generated_certificates;not null;default:0"`

	StatisticsLevel string `json:"statistics_level" gorm:"column:statistics_level;type:varchar(16);not null;default:'paranoid'"`

	// Country-code to student-count map, only filled for enthusiast rows.
	// Example: {"RU": 2632, "CA": 18543, "UA": 2011, "null": 1}
	StudentsPerCountry datatypes.JSONType[map[string]int64] `json:"students_per_country" gorm:"column:students_per_country"`

	Installation InstallationModel `json:"-" gorm:"foreignKey:InstallationID;references:InstallationID"`
}

func (InstallationStatisticsModel) TableName() string {
	return "installation_statistics"
}

// DayKey formats a timestamp to the storage day-key format.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// CountryCounts unwraps the JSON column, never returning nil.
func (m *InstallationStatisticsModel) CountryCounts() map[string]int64 {
	counts := m.StudentsPerCountry.Data()
	if counts == nil {
		return map[string]int64{}
	}
	return counts
}
