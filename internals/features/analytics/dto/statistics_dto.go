package dto

import "olga_backend/internals/features/analytics/model"

// InstallationStatisticsRequest is the single report payload for both
// reporting levels, validated once at the boundary. Paranoid installations
// send only the counters; enthusiast ones additionally send geography and
// the country breakdown (enforced by the required_if rules).
//
// The three date-keyed maps are optional historical backfill deltas,
// shaped {"2006-01-02": delta}.
type InstallationStatisticsRequest struct {
	AccessToken     string `json:"access_token" validate:"required,uuid4"`
	StatisticsLevel string `json:"statistics_level" validate:"required,oneof=paranoid enthusiast"`

	ActiveStudentsAmountDay   *int64 `json:"active_students_amount_day" validate:"required,gte=0"`
	ActiveStudentsAmountWeek  *int64 `json:"active_students_amount_week" validate:"required,gte=0"`
	ActiveStudentsAmountMonth *int64 `json:"active_students_amount_month" validate:"required,gte=0"`
	CoursesAmount             *int64 `json:"courses_amount" validate:"required,gte=0"`

	PlatformName     string   `json:"platform_name" validate:"required_if=StatisticsLevel enthusiast"`
	PlatformURL      string   `json:"platform_url" validate:"required_if=StatisticsLevel enthusiast,omitempty,url"`
	PlatformCityName string   `json:"platform_city_name"`
	Latitude         *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude        *float64 `json:"longitude" validate:"omitempty,longitude"`

	StudentsPerCountry map[string]int64 `json:"students_per_country" validate:"required_if=StatisticsLevel enthusiast"`

	RegisteredStudents    map[string]int64 `json:"registered_students"`
	EnthusiasticStudents  map[string]int64 `json:"enthusiastic_students"`
	GeneratedCertificates map[string]int64 `json:"generated_certificates"`
}

func (r *InstallationStatisticsRequest) IsEnthusiast() bool {
	return r.StatisticsLevel == model.LevelEnthusiast
}

// HasCoordinates reports whether the payload carries explicit coordinates.
func (r *InstallationStatisticsRequest) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}
