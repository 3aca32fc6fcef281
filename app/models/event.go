package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/wanpass/wanpass/internal/pkg/eventcode"
)

// Event is a named registration session. Visitors reach it through the public
// EventCode, never through the numeric ID.
type Event struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	EventCode string `gorm:"type:varchar(36);uniqueIndex;not null" json:"event_code"`
	Name      string `gorm:"type:varchar(200);not null" json:"name"`
	// IssueLocation is printed on every certificate issued under this event.
	IssueLocation string     `gorm:"type:varchar(200);not null" json:"issue_location"`
	IssueDate     *time.Time `gorm:"type:date" json:"issue_date"`
	// AutoIssueDate stamps each certificate with its submission date when no
	// fixed IssueDate is configured.
	AutoIssueDate bool `gorm:"default:false" json:"auto_issue_date"`
	// IsActive gates public intake and lookup. An inactive event still exists
	// for operators but refuses public access.
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	// relations
	Licenses []License `gorm:"foreignKey:EventID" json:"licenses,omitempty"`
}

// BeforeCreate fills in a fresh event code when none was provided.
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.EventCode == "" {
		code, err := eventcode.New()
		if err != nil {
			return err
		}
		e.EventCode = code
	}
	return nil
}
