package feed

import "time"

// Draft is a normalized item produced by one parse pass. The source id
// is attached later by the ingestion coordinator.
type Draft struct {
	GUID        string
	Title       string
	Link        string
	PublishedAt *time.Time
	Metadata    map[string]interface{}
}
