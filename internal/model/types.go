package model

// Resource is a tracked material/location record.
type Resource struct {
	ID          int64  `json:"id"`
	Resource    string `json:"resource"`
	Region      string `json:"region"`
	Island      string `json:"island"`
	Description string `json:"description"`
}

// SeedResource is inserted once, when the resources table is first created.
var SeedResource = Resource{
	Resource:    "Ruby",
	Region:      "K5",
	Island:      "SE",
	Description: "West coast",
}
