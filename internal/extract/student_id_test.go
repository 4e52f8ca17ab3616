package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractStudentID_Labeled(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantID   string
		wantRule string
	}{
		{"registration number", "Registration Number: 123456789", "123456789", "registration-number"},
		{"registration number on next line", "Registration Number:\n  123456789", "123456789", "registration-number"},
		{"registration number glued to digits", "Registration Number123456789", "123456789", "registration-number-next-line"},
		{"student number", "Student Number 20231234", "20231234", "student-number"},
		{"hesa number keeps padding", "HESA Number: 0000012345678", "0000012345678", "hesa-number"},
		{"id no", "ID No. 7654321", "7654321", "id-number"},
		{"id number", "Civil ID Number: 287010112345", "287010112345", "id-number"},
		{"caps capture at 13 digits", "Student Number: 12345678901234", "1234567890123", "student-number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rule, ok := extractStudentID(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantRule, rule)
		})
	}
}

func TestExtractStudentID_FirstListedLabelWins(t *testing.T) {
	// Student Number appears first in the text but Registration Number is higher priority.
	text := "Student Number: 111111111\nHESA Number: 0000022222222\nRegistration Number: 333333333"
	id, ok := ExtractStudentID(text)
	assert.True(t, ok)
	assert.Equal(t, "333333333", id)

	id, ok = ExtractStudentID("ID No: 44444444\nHESA Number: 0000055555555")
	assert.True(t, ok)
	assert.Equal(t, "0000055555555", id)
}

func TestExtractStudentID_NumericFallback(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"nine digits preferred regardless of position", "Ref 1234567 code 00001234567 serial 987654321", "987654321"},
		{"nine digits preferred over longer runs", "1234567890123 then 123456789", "123456789"},
		{"first run without zero padding", "00001234567 and 7654321 and 12345678", "7654321"},
		{"longest when all are zero padded", "0000123 00001234567 0000123456", "00001234567"},
		{"longest tie goes to first", "00001111 00002222", "00001111"},
		{"zero padded run alone", "Certificate 00001234567 issued 2021", "00001234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, rule, ok := extractStudentID(tt.text)
			assert.True(t, ok)
			assert.Equal(t, tt.want, id)
			assert.Equal(t, "numeric-fallback", rule)
		})
	}
}

func TestExtractStudentID_None(t *testing.T) {
	for _, text := range []string{
		"",
		"Grade A, credits 12345, year 2020",
		"ABC1234567 is glued to letters",
		"12345678901234 is too long",
		"Student Number: pending",
	} {
		id, ok := ExtractStudentID(text)
		assert.False(t, ok, "text %q", text)
		assert.Empty(t, id)
	}
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "123456AB", sanitizeID("12-34.56 AB"))
	assert.Equal(t, "", sanitizeID("--"))
}
