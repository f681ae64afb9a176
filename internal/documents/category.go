package documents

// CategoryOther is the fallback for anything that cannot be classified.
const CategoryOther = "Other"

// Categories is the closed set of document categories, in display order.
var Categories = []string{
	"Lab Results",
	"Prescriptions",
	"Radiology",
	"Discharge Summaries",
	"Vital Signs",
	"Insurance",
	"Consultation Notes",
	CategoryOther,
}

var categorySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		set[c] = struct{}{}
	}
	return set
}()

// IsValidCategory reports whether c is one of Categories. Matching is exact.
func IsValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}

// NormalizeCategory maps anything outside Categories to CategoryOther.
func NormalizeCategory(c string) string {
	if IsValidCategory(c) {
		return c
	}
	return CategoryOther
}
