// models/user.go
package models

import (
	"time"
)

// User is a registered writer or campaign owner. The wallet address is the
// real identifier — registration verifies a signature from it, and it never
// changes afterwards.
type User struct {
	ID            string `json:"id" gorm:"primaryKey;type:uuid"`
	WalletAddress string `json:"walletAddress" gorm:"uniqueIndex;not null"`
	Username      string `json:"username"`
	Bio           string `json:"bio"`

	// 🖼️ Profile picture, e.g. "/uploads/abc.png" or a CDN URL
	Image string `json:"image"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// 🔗 Associations
	Campaigns     []Campaign            `json:"campaigns,omitempty" gorm:"foreignKey:OwnerID"`
	Participation []CampaignParticipant `json:"participation,omitempty" gorm:"foreignKey:UserID"`
}

// PublicUser is the slimmed-down shape embedded in campaign/submission
// responses (never exposes bio or timestamps).
type PublicUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	Image         string `json:"image,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		WalletAddress: u.WalletAddress,
		Image:         u.Image,
	}
}
