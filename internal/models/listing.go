package models

// ListingItem is one row of a search-results page. Any field may be missing.
type ListingItem struct {
	Title *string `json:"title"`
	Link  *string `json:"link"`
	Price *string `json:"price"`
	Image *string `json:"image"`
}

// IsEmpty reports whether none of the item's fields were found.
func (i ListingItem) IsEmpty() bool {
	return i.Title == nil && i.Link == nil && i.Price == nil && i.Image == nil
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
