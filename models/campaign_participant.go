// models/campaign_participant.go
package models

import (
	"time"
)

const (
	SubmissionStatusPending  = "PENDING"
	SubmissionStatusAccepted = "ACCEPTED"
	SubmissionStatusRejected = "REJECTED" // declared in the schema, no flow writes it yet
)

// CampaignParticipant = one writer's submission to one campaign.
// (UserID, CampaignID) is composite-unique: resubmitting upserts over the
// previous entry, no history kept.
type CampaignParticipant struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string `json:"userId" gorm:"type:uuid;not null;uniqueIndex:idx_user_campaign"`
	CampaignID string `json:"campaignId" gorm:"type:uuid;not null;uniqueIndex:idx_user_campaign"`

	BlogURL    string  `json:"blog_url"`
	TotalScore float64 `json:"total_score" gorm:"index"`
	Status     string  `json:"status" gorm:"type:varchar(16);default:'PENDING'"` // PENDING → ACCEPTED

	// Raw scoring response, stored opaque for the review UI
	Data string `json:"data" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 🔗 Associations
	User     *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Campaign *Campaign `json:"-" gorm:"foreignKey:CampaignID"`
}
