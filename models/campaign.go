// models/campaign.go
package models

import (
	"time"
)

const (
	CampaignStatusActive = "ACTIVE"
	CampaignStatusEnded  = "ENDED"
)

// Campaign is the database side of an on-chain writing campaign. The campaign
// contract is deployed first; TxHash and CampaignAddress are required at
// creation, so every row is an index over an on-chain fact.
type Campaign struct {
	ID          string `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string `json:"title" gorm:"not null"`
	Slug        string `json:"slug" gorm:"index"`
	Description string `json:"description" gorm:"type:text;not null"`

	// Optional prompt used for scoring instead of Description when set
	AiDescription string `json:"aiDescription" gorm:"type:text"`

	Keywords       string  `json:"keywords"`
	TargetAudience string  `json:"targetAudience"`
	CtaGoal        string  `json:"ctaGoal"`
	RewardPool     float64 `json:"rewardPool" gorm:"default:0"`

	StartDate time.Time `json:"startDate" gorm:"not null"`
	EndDate   time.Time `json:"endDate" gorm:"not null;index"`

	CoverImage string `json:"coverImage"`

	// ⛓️ On-chain anchors (client-reported, see ChainVerified)
	TxHash          string `json:"txHash" gorm:"not null"`
	CampaignAddress string `json:"campaignAddress" gorm:"not null"`
	ChainVerified   bool   `json:"chainVerified" gorm:"default:false"`

	OwnerID  string `json:"ownerId" gorm:"type:uuid;not null;index"`
	Featured bool   `json:"featured" gorm:"default:false;index"`
	Status   string `json:"status" gorm:"type:varchar(16);default:'ACTIVE'"` // ACTIVE | ENDED

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 🔗 Associations
	Owner        *User                 `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Participants []CampaignParticipant `json:"participants,omitempty" gorm:"foreignKey:CampaignID"`
}
