package liststate

// ToggleSort handles a column-header click. The same column flips the
// direction; a new column starts descending. Page always goes back to 1.
func (s FilterState) ToggleSort(field string) FilterState {
	next := s.Clone()
	if field == next.SortBy {
		if next.SortOrder == Desc {
			next.SortOrder = Asc
		} else {
			next.SortOrder = Desc
		}
	} else {
		next.SortBy = field
		next.SortOrder = Desc
	}
	next.Page = 1
	return next
}
