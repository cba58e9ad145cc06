package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdReloadCatalog CommandType = "reload_catalog"
	CmdCheckImages   CommandType = "check_images"
	CmdResetData     CommandType = "reset_data" // wipes stored selections, commands and image checks
)

// Command is an operator request queued in the local store and picked up by
// the scheduler.
type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

// CommandParams narrows a command. An empty PropertyID means every listing.
type CommandParams struct {
	PropertyID string `json:"property_id,omitempty"`
}
