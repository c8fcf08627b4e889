package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status int

// default status in the ledger is "running" until the pipeline returns
const (
	StatusUnknown   Status = iota
	StatusRunning          // 1
	StatusSucceeded        // 2
	StatusFailed           // 3
)

// Run is one pass of the analysis pipeline. It never carries document content.
type Run struct {
	ID uuid.UUID `json:"id" db:"id"`

	Status Status `json:"status" db:"status"`

	FileName string `json:"file_name" db:"file_name"`

	DocumentBytes int `json:"document_bytes" db:"document_bytes"`

	PageCount int `json:"page_count" db:"page_count"`

	ExtractedChars int `json:"extracted_chars" db:"extracted_chars"`

	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func ParseStatus(s string) (Status, error) {
	switch s {
	case "running":
		return StatusRunning, nil
	case "succeeded":
		return StatusSucceeded, nil
	case "failed":
		return StatusFailed, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown run status %q", s)
	}
}
