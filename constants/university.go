package constants

// DefaultUniversities seeds the universities table on first start.
// Order matters: catalog matching returns the first name found.
var DefaultUniversities = []string{
	"Kuwait University",
	"American University of Kuwait",
	"Canadian University of Kuwait",
	"Arab Open University",
	"Gulf University for Science and Technology",
	"Dasman Institute for Medical Research",
}
