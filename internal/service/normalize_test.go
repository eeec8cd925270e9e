package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/classroom-insight-api/internal/models"
)

func TestFirstNumberFieldSynonyms(t *testing.T) {
	cases := []struct {
		name  string
		row   models.Row
		want  float64
		found bool
	}{
		{name: "points", row: models.Row{"points": 80.0}, want: 80, found: true},
		{name: "value", row: models.Row{"value": "72"}, want: 72, found: true},
		{name: "score", row: models.Row{"score": json.Number("65.5")}, want: 65.5, found: true},
		{name: "priority", row: models.Row{"points": 10, "value": 20, "score": 30}, want: 10, found: true},
		{name: "nil falls through", row: models.Row{"points": nil, "value": 55}, want: 55, found: true},
		{name: "blank falls through", row: models.Row{"points": "  ", "score": "40"}, want: 40, found: true},
		{name: "unparseable falls through", row: models.Row{"points": "n/a", "value": 61}, want: 61, found: true},
		{name: "comma decimal", row: models.Row{"points": "87,5"}, want: 87.5, found: true},
		{name: "NaN rejected", row: models.Row{"points": "NaN"}, found: false},
		{name: "missing", row: models.Row{"feedback": "good"}, found: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := firstNumber(tc.row, gradePointFields...)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.InDelta(t, tc.want, got, 1e-9)
			}
		})
	}
}

func TestFirstStringSkipsBlanks(t *testing.T) {
	row := models.Row{"classId": "  ", "class_id": []byte("c7"), "kelasId": "c9"}
	assert.Equal(t, "c7", firstString(row, classIDFields...))
	assert.Equal(t, "", firstString(models.Row{}, classIDFields...))
}

func TestNormaliseStatus(t *testing.T) {
	cases := map[string]models.AttendanceStatus{
		"hadir":      models.AttendancePresent,
		"Present":    models.AttendancePresent,
		" H ":        models.AttendancePresent,
		"alpha":      models.AttendanceAbsent,
		"absent":     models.AttendanceAbsent,
		"Sakit":      models.AttendanceSick,
		"izin":       models.AttendancePermission,
		"permission": models.AttendancePermission,
		"late":       models.AttendanceUnknown,
		"":           models.AttendanceUnknown,
	}
	for raw, want := range cases {
		assert.Equal(t, want, normaliseStatus(raw), raw)
	}
}

func TestParseTimestampFormats(t *testing.T) {
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, jakarta), parseTimestamp("2024-01-02", jakarta))
	assert.True(t, parseTimestamp("2024-01-02T03:04:05Z", jakarta).Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, jakarta), parseTimestamp(json.Number("45292"), jakarta))
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, jakarta), parseTimestamp(45292.5, jakarta))
	assert.True(t, parseTimestamp(json.Number("1704067200000"), jakarta).Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, parseTimestamp("not a date", jakarta).IsZero())
	assert.True(t, parseTimestamp(nil, jakarta).IsZero())
	assert.True(t, parseTimestamp(-5, jakarta).IsZero())
}

func TestSplitBadges(t *testing.T) {
	assert.Equal(t, []string{"Rajin", "Juara"}, splitBadges("Rajin, , Juara"))
	assert.Equal(t, []string{"Rajin"}, splitBadges([]interface{}{"Rajin", " "}))
	assert.Equal(t, []string{}, splitBadges(nil))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 66.67, roundTo(200.0/3, 2))
	assert.Equal(t, 67.0, roundTo(2.0/3*100, 0))
	assert.Equal(t, 0.0, roundTo(0.0/zero(), 1))
}

func zero() float64 { return 0 }
