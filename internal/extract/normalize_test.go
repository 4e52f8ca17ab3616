package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"strips carriage returns", "Name: Jane\r\nDegree: BSc\r\n", "Name: Jane\nDegree: BSc\n"},
		{"breaks merged registration label", "EnglishRegistration Number: 123456789", "English\nRegistration Number: 123456789"},
		{"breaks every label case-insensitively", "Jane Doestudent number 123456789 hesa NUMBER 0000012345678",
			"Jane Doe\nstudent number 123456789 \nhesa NUMBER 0000012345678"},
		{"label already on its own line", "Name: Jane\nStudent Number: 123456789", "Name: Jane\nStudent Number: 123456789"},
		{"label at start of text", "Registration Number: 1", "Registration Number: 1"},
		{"label split over lines", "BathRegistration\nNumber 123456789", "Bath\nRegistration\nNumber 123456789"},
		{"compatibility forms fold", "ﬁnal Student Number：１２３４５６７８９", "final \nStudent Number:123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeText_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"\r\r\n",
		"EnglishRegistration Number:\r\n123456789 University of Bath",
		"xStudent NumberyHESA NumberzRegistration Number",
		"Student Student Number 123456789",
		"Registration\r\nNumber\r\n123",
		"e\r\u0301 accent split by a carriage return",
		"ﬁ ＲＥＧＩＳＴＲＡＴＩＯＮ ＮＵＭＢＥＲ ١٢٣ جامعة الكويت",
		"\n\nStudent Number\n\nStudent Number",
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "input %q", in)
	}
}

func TestNormalize_LowerCopy(t *testing.T) {
	doc := Normalize("KUWAIT UniversityStudent Number 123456789")
	assert.Equal(t, "KUWAIT University\nStudent Number 123456789", doc.Text)
	assert.Equal(t, "kuwait university\nstudent number 123456789", doc.Lower)
}
