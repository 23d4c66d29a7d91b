package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Source is a registered syndication endpoint.
type Source struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Item is one ingested entry, unique per (source_id, guid).
type Item struct {
	ID          string     `db:"id" json:"id"`
	SourceID    string     `db:"source_id" json:"source_id"`
	GUID        string     `db:"guid" json:"guid"`
	Title       string     `db:"title" json:"title"`
	Link        string     `db:"link" json:"link"`
	PublishedAt *time.Time `db:"published_at" json:"published_at"`
	Read        bool       `db:"is_read" json:"read"`
	Metadata    Metadata   `db:"metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Metadata carries parser-supplied fields stored verbatim as JSONB.
type Metadata map[string]interface{}

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Metadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}

	return json.Unmarshal(data, m)
}

// ItemFilter narrows List results. Nil fields are not applied.
type ItemFilter struct {
	SourceID *string
	Read     *bool
}
