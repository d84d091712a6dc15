// Package model holds the view models decoded from the monitoring backend.
// Nothing here is persisted; every value is rebuilt from the latest response.
package model

// AccessRecord is one recognition event reported by a camera.
type AccessRecord struct {
	ID             int64    `json:"id"`
	Timestamp      string   `json:"timestamp"`
	CameraName     string   `json:"camera_name"`
	CameraLocation *string  `json:"camera_location,omitempty"`
	SubjectName    *string  `json:"subject_name,omitempty"`
	IsAuthorized   bool     `json:"is_authorized"`
	Similarity     *float64 `json:"similarity,omitempty"`
	AlertSent      bool     `json:"alert_sent"`
	ImagePath      *string  `json:"image_path,omitempty"`
}

// AttendanceRecord aggregates one subject's entries for the current day.
type AttendanceRecord struct {
	SubjectName   string   `json:"subject_name"`
	FirstEntry    string   `json:"first_entry"`
	LastEntry     string   `json:"last_entry"`
	TotalEntries  int      `json:"total_entries"`
	CameraName    string   `json:"camera_name"`
	AvgSimilarity *float64 `json:"avg_similarity,omitempty"`
}

// ReportRow aggregates one subject's entries for one day of a date range.
type ReportRow struct {
	Date         string `json:"date"`
	SubjectName  string `json:"subject_name"`
	FirstEntry   string `json:"first_entry"`
	LastEntry    string `json:"last_entry"`
	EntriesCount int    `json:"entries_count"`
}

// CapturedImage is a still saved on an unauthorized detection.
type CapturedImage struct {
	Timestamp float64 `json:"timestamp"`
	Filename  string  `json:"filename"`
	URL       string  `json:"url"`
}

// ImagePage is one page of captured images with server-side totals.
type ImagePage struct {
	Images     []CapturedImage `json:"images"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

// Camera status values reported by the backend. Anything else (the backend
// also sends "warning") is rendered as-is.
const (
	CameraOnline  = "online"
	CameraOffline = "offline"
)

// CameraStatus describes one camera's activity over the last hour.
type CameraStatus struct {
	CameraName           string  `json:"camera_name"`
	Status               string  `json:"status"`
	CameraLocation       *string `json:"camera_location,omitempty"`
	LastActivity         string  `json:"last_activity"`
	DetectionsLastHour   int     `json:"detections_last_hour"`
	UnauthorizedLastHour int     `json:"unauthorized_last_hour"`
}

// HourlyBucket counts detections within one clock hour.
type HourlyBucket struct {
	Hour         string `json:"hour"`
	Authorized   int    `json:"authorized"`
	Unauthorized int    `json:"unauthorized"`
	Total        int    `json:"total"`
}

// SummaryStats is the header snapshot refreshed on every poll.
type SummaryStats struct {
	TotalToday        int    `json:"total_today"`
	AuthorizedToday   int    `json:"authorized_today"`
	UnauthorizedToday int    `json:"unauthorized_today"`
	UniqueEmployees   int    `json:"unique_employees"`
	ActiveCameras     int    `json:"active_cameras"`
	Timestamp         string `json:"timestamp,omitempty"`
}

// Employee is one recognized subject with lifetime access counts.
type Employee struct {
	SubjectName   string `json:"subject_name"`
	TotalAccesses int    `json:"total_accesses"`
	LastSeen      string `json:"last_seen"`
	FirstSeen     string `json:"first_seen"`
}

// SearchFilter narrows an access log search. Empty fields are not sent.
type SearchFilter struct {
	SubjectName  string
	CameraName   string
	StartDate    string
	EndDate      string
	IsAuthorized *bool
}

// FieldValue exposes attendance columns by wire name for tabular export.
func (r AttendanceRecord) FieldValue(field string) any {
	switch field {
	case "subject_name":
		return r.SubjectName
	case "first_entry":
		return r.FirstEntry
	case "last_entry":
		return r.LastEntry
	case "total_entries":
		return r.TotalEntries
	case "camera_name":
		return r.CameraName
	case "avg_similarity":
		if r.AvgSimilarity == nil {
			return nil
		}
		return *r.AvgSimilarity
	}
	return nil
}

// FieldValue exposes report columns by wire name for tabular export.
func (r ReportRow) FieldValue(field string) any {
	switch field {
	case "date":
		return r.Date
	case "subject_name":
		return r.SubjectName
	case "first_entry":
		return r.FirstEntry
	case "last_entry":
		return r.LastEntry
	case "entries_count":
		return r.EntriesCount
	}
	return nil
}
