package domain

// RecordFilter narrows a record store listing. Zero values mean "no
// constraint". Results are always newest-first by creation time.
type RecordFilter struct {
	Status  string
	Company string
	Month   string

	// Top limits the number of returned records, Skip offsets into the
	// result set. Top <= 0 means the store default.
	Top  int
	Skip int
}

// RecordUpdate carries the mutable content fields of an update call.
// Nil pointers leave the stored value untouched.
type RecordUpdate struct {
	Title      *string
	Company    *string
	Team       *string
	User       *string
	Category   *string
	Detail     *string
	Amount     *float64
	DetailSum  *float64
	Items      []DetailItem
	Month      *string
	Project    *string
	ProjectSOP *string
}
