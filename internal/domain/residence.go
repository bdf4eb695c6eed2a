package domain

type Residence struct {
	ID           int64    `json:"id"`
	Lot          string   `json:"lot"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	City         string   `json:"city,omitempty"`
	Fokontany    string   `json:"fokontany,omitempty"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	CreatedBy    int64    `json:"created_by"`
	IsActive     bool     `json:"is_active"`
	Persons      []Person `json:"persons,omitempty"`
	Photos       []Photo  `json:"photos,omitempty"`
	PhotoURLs    []string `json:"photo_urls,omitempty"`
	CreatedOn    string   `json:"created_on"`
}

// Photo is exclusively owned by its residence; the physical file lifecycle
// mirrors the row (delete row => delete file, best-effort).
type Photo struct {
	ID          int64  `json:"id"`
	ResidenceID int64  `json:"residence_id"`
	Filename    string `json:"filename"`
	URL         string `json:"url,omitempty"`
	CreatedOn   string `json:"created_on"`
}
