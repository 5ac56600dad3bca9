package models

// PageStructure is a diagnostic summary of a rendered page, attached to
// failed detail extractions so markup changes can be spotted.
type PageStructure struct {
	Title          string   `json:"title"`
	H1Count        int      `json:"h1Count"`
	ULCount        int      `json:"ulCount"`
	LICount        int      `json:"liCount"`
	DTCount        int      `json:"dtCount"`
	DDCount        int      `json:"ddCount"`
	DataAttributes []string `json:"dataAttributes"`
	Classes        []string `json:"classes"`
}

// ListingResult is the envelope returned by a listing scrape.
// Data is nil (JSON null) when the run failed unexpectedly.
type ListingResult struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	Details      string        `json:"details,omitempty"`
	TotalItems   int           `json:"totalItems,omitempty"`
	PagesScraped int           `json:"pagesScraped,omitempty"`
	Data         []ListingItem `json:"data"`
}

// DetailResult is the envelope returned by a vehicle detail scrape.
type DetailResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Details       string         `json:"details,omitempty"`
	Data          *VehicleRecord `json:"data"`
	PageStructure *PageStructure `json:"pageStructure,omitempty"`
}
