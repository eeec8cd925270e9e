package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

// Field synonyms in priority order. Historical sheets used different headers for the same value.
var (
	gradePointFields        = []string{"points", "value", "score"}
	gamificationPointFields = []string{"points", "totalPoints", "total_points"}
	badgePointFields        = []string{"pointValue", "point_value", "points"}
	levelFields             = []string{"level"}

	idFields              = []string{"id", "ID"}
	classIDFields         = []string{"classId", "class_id", "kelasId"}
	studentUsernameFields = []string{"studentUsername", "student_username", "username"}
	assignmentIDFields    = []string{"assignmentId", "assignment_id"}
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// firstNumber returns the first candidate field holding a finite number.
// Nil and blank values are skipped; values that fail to parse fall through to the next candidate.
func firstNumber(row models.Row, candidates ...string) (float64, bool) {
	for _, key := range candidates {
		raw, ok := row[key]
		if !ok || raw == nil {
			continue
		}
		if value, ok := coerceNumber(raw); ok {
			return value, true
		}
	}
	return 0, false
}

// firstString returns the first candidate field with a non-blank textual value.
func firstString(row models.Row, candidates ...string) string {
	for _, key := range candidates {
		raw, ok := row[key]
		if !ok || raw == nil {
			continue
		}
		if value := strings.TrimSpace(stringValue(raw)); value != "" {
			return value
		}
	}
	return ""
}

func coerceNumber(raw interface{}) (float64, bool) {
	var value float64
	switch v := raw.(type) {
	case float64:
		value = v
	case float32:
		value = float64(v)
	case int:
		value = float64(v)
	case int32:
		value = float64(v)
	case int64:
		value = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		value = parsed
	case string, []byte:
		text := strings.TrimSpace(stringValue(v))
		if text == "" {
			return 0, false
		}
		if !strings.Contains(text, ".") {
			text = strings.Replace(text, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, false
		}
		value = parsed
	default:
		return 0, false
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func stringValue(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// parseTimestamp accepts ISO strings, spreadsheet serial days and unix milliseconds.
// It returns the zero time when nothing usable is present.
func parseTimestamp(raw interface{}, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	switch v := raw.(type) {
	case nil:
		return time.Time{}
	case time.Time:
		return v
	case string, []byte:
		text := strings.TrimSpace(stringValue(v))
		if text == "" {
			return time.Time{}
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.ParseInLocation(layout, text, loc); err == nil {
				return parsed
			}
		}
		return time.Time{}
	}
	number, ok := coerceNumber(raw)
	if !ok || number <= 0 {
		return time.Time{}
	}
	if number >= 1e11 {
		return time.UnixMilli(int64(number)).In(loc)
	}
	days := math.Floor(number)
	fraction := number - days
	serial := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(fraction * float64(24*time.Hour)))
	return time.Date(serial.Year(), serial.Month(), serial.Day(), serial.Hour(), serial.Minute(), serial.Second(), 0, loc)
}

func firstTimestamp(row models.Row, loc *time.Location, candidates ...string) time.Time {
	for _, key := range candidates {
		if ts := parseTimestamp(row[key], loc); !ts.IsZero() {
			return ts
		}
	}
	return time.Time{}
}

// normaliseStatus folds localized attendance labels onto the canonical statuses.
func normaliseStatus(raw string) models.AttendanceStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present", "hadir", "h":
		return models.AttendancePresent
	case "absent", "alpha", "alfa", "alpa", "tidak hadir", "a":
		return models.AttendanceAbsent
	case "sick", "sakit", "s":
		return models.AttendanceSick
	case "permission", "izin", "ijin", "excused", "i":
		return models.AttendancePermission
	default:
		return models.AttendanceUnknown
	}
}

// splitBadges parses a comma-separated badge list, dropping blanks.
func splitBadges(raw interface{}) []string {
	badges := []string{}
	switch v := raw.(type) {
	case []interface{}:
		for _, item := range v {
			if name := strings.TrimSpace(stringValue(item)); name != "" {
				badges = append(badges, name)
			}
		}
		return badges
	case []string:
		for _, item := range v {
			if name := strings.TrimSpace(item); name != "" {
				badges = append(badges, name)
			}
		}
		return badges
	}
	for _, part := range strings.Split(stringValue(raw), ",") {
		if name := strings.TrimSpace(part); name != "" {
			badges = append(badges, name)
		}
	}
	return badges
}

func roundTo(value float64, decimals int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	scale := math.Pow(10, float64(decimals))
	return math.Round(value*scale) / scale
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
