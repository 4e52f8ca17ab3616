package constants

import "strings"

// SubmissionStatus is the verification state stored on a submission row.
type SubmissionStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending  SubmissionStatus = "PENDING"  // initial, set on create
	StatusVerified SubmissionStatus = "VERIFIED" // reviewer accepted the certificate
	StatusRejected SubmissionStatus = "REJECTED" // reviewer rejected the certificate
)

var allStatuses = []SubmissionStatus{
	StatusPending,
	StatusVerified,
	StatusRejected,
}

// Statuses returns the accepted status values as strings, in declaration order.
func Statuses() []string {
	result := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		result[i] = string(s)
	}
	return result
}

// ParseStatus accepts only the exact upper-case status names.
func ParseStatus(input string) (SubmissionStatus, bool) {
	for _, s := range allStatuses {
		if input == string(s) {
			return s, true
		}
	}
	return "", false
}

// StatusList renders "PENDING, VERIFIED, or REJECTED" for user-facing messages.
func StatusList() string {
	names := Statuses()
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
}
