package models

import "time"

// ConversationRecord is one answered question in a session's log.
type ConversationRecord struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
}
