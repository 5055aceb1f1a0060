package domain

import "time"

// ExportVersion identifies the dump format.
const ExportVersion = 1

// ExportDocument is a full dump of the library. Re-import upserts every
// record by id, so importing the same document twice is idempotent.
type ExportDocument struct {
	Version    int       `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	Courses    []*Course `json:"courses"`
	Modules    []*Module `json:"modules"`
	Videos     []*Video  `json:"videos"`
	Notes      []*Note   `json:"notes"`
}
