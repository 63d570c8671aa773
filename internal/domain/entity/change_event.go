package entity

import "time"

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

const TableListings = "listings"

// ChangeEvent is one mutation notification from the store. RecordID may be
// empty for synthetic events (for instance after a feed reconnect).
type ChangeEvent struct {
	Table    string     `json:"table"`
	Type     ChangeType `json:"type"`
	RecordID string     `json:"record_id"`
	At       time.Time  `json:"at"`
}
