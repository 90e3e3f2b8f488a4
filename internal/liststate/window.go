package liststate

// DefaultWindowSize is the number of page buttons rendered.
const DefaultWindowSize = 5

// ComputeWindow returns the page numbers to render as controls: all pages
// when they fit, otherwise a window clamped at both ends and centered on the
// current page in between.
func ComputeWindow(currentPage, totalPages, windowSize int) []int {
	if windowSize < 1 {
		windowSize = DefaultWindowSize
	}
	if totalPages < 1 {
		return []int{}
	}
	half := windowSize / 2

	var start int
	switch {
	case totalPages <= windowSize:
		return pageRange(1, totalPages)
	case currentPage <= half+1:
		start = 1
	case currentPage >= totalPages-half:
		start = totalPages - windowSize + 1
	default:
		start = currentPage - half
	}
	return pageRange(start, start+windowSize-1)
}

func pageRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, p)
	}
	return out
}
