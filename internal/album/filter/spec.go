package filter

// DateRange is a half-open [Start, End) interval over photo capture time,
// expressed as unix seconds.
type DateRange struct {
	Start int64
	End   int64
}

// Spec is the structured filter handed to the photo store. A date constraint
// resolves to exactly one of DateRange (year-bearing date) or an id set
// (year-less month-day resolved via metadata scan); the two never coexist.
type Spec struct {
	DateRange *DateRange
	Tags      []string
	// IDs holds the id-set condition. IDSet distinguishes "no id condition"
	// from "id condition resolved to zero photos".
	IDs   []string
	IDSet bool
}

// Empty reports whether the spec constrains nothing.
func (s Spec) Empty() bool {
	return s.DateRange == nil && len(s.Tags) == 0 && !s.IDSet
}

// Unsatisfiable reports whether the date constraint resolved to zero stored
// photos, so any retrieval against this spec returns an empty result.
func (s Spec) Unsatisfiable() bool {
	return s.IDSet && len(s.IDs) == 0
}
