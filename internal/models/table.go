package models

// Table is a physical café table. Available is the admin-controlled flag
// that removes a table from the booking pool; Status is a display hint only.
type Table struct {
	ID        string `json:"id"`
	Number    int    `json:"number"`
	Capacity  int    `json:"capacity"`
	Location  string `json:"location"`
	Available bool   `json:"available"`
	Status    string `json:"status"`
}
