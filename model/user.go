package model

import "time"

// User is a single record in the directory. UserID is the caller-supplied
// partition key; everything else is opaque attribute data.
type User struct {
	UserID     string            `json:"userid"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
