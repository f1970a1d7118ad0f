package pagination

// CalculateOffset returns the 0-based offset of a 1-based page.
//
//   - Page 1, Limit 20 -> Offset 0
//   - Page 3, Limit 10 -> Offset 20
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages is ceil(total / limit), and at least 1.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 || limit <= 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Metadata describes one page of a result.
type Metadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewMetadata builds the metadata for params over total items.
func NewMetadata(params Params, total int64) Metadata {
	return Metadata{
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: CalculateTotalPages(total, params.Limit),
	}
}

// Slice returns the page of items selected by params. A page past the end is
// empty, not an error.
func Slice[T any](items []T, params Params) ([]T, Metadata) {
	meta := NewMetadata(params, int64(len(items)))
	offset := CalculateOffset(params.Page, params.Limit)
	if offset >= len(items) {
		return []T{}, meta
	}
	end := offset + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], meta
}
