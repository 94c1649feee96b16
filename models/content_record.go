package models

import "time"

// ContentRecord is the local backend of the content-address store: one row
// per digest. It stands in for the external ledger when no RPC endpoint is
// configured.
type ContentRecord struct {
	Digest    string    `json:"digest" gorm:"primaryKey"`
	Data      []byte    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}
