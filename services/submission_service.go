// write-on-backend/services/submission_service.go
package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"write-on-backend/models"
	"write-on-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionService struct {
	DB     *gorm.DB
	Scores *ScoreClient
}

func NewSubmissionService(db *gorm.DB, scores *ScoreClient) *SubmissionService {
	return &SubmissionService{DB: db, Scores: scores}
}

type checkRequest struct {
	SubmissionID      string `json:"submissionId"` // campaign id
	Link              string `json:"link"`
	UserWalletAddress string `json:"userWalletAddress"`
}

type submitRequest struct {
	SubmissionID      string          `json:"submissionId"` // campaign id
	Link              string          `json:"link"`
	UserWalletAddress string          `json:"userWalletAddress"`
	TotalScore        float64         `json:"totalScore"`
	Result            json.RawMessage `json:"result"`
}

type approveRequest struct {
	CampaignID   string `json:"campaignId"`
	SubmissionID string `json:"submissionId"` // participant row id
	WalletSigner string `json:"walletSigner"`
}

// CheckSubmission scores a link against a campaign and evaluates the
// qualification policy. Nothing is persisted — the writer sees the verdict and
// decides whether to submit.
func (s *SubmissionService) CheckSubmission(c *fiber.Ctx) error {
	var req checkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body.",
		})
	}

	if req.SubmissionID == "" || req.Link == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Submission ID and link are required.",
		})
	}

	var campaign models.Campaign
	if err := s.DB.First(&campaign, "id = ?", req.SubmissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while processing the request.",
		})
	}

	var user models.User
	if err := s.DB.First(&user, "wallet_address = ?", req.UserWalletAddress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "User not found.",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while processing the request.",
		})
	}

	// Prefer the AI-oriented description when the owner wrote one
	description := campaign.Description
	if campaign.AiDescription != "" {
		description = campaign.AiDescription
	}

	result, err := s.Scores.CheckScore(ScoreRequest{
		ContentURL:          req.Link,
		CampaignDescription: description,
		CampaignKeywords:    campaign.Keywords,
		TargetAudience:      campaign.TargetAudience,
		CTAGoal:             campaign.CtaGoal,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An error occurred while processing the request.",
		})
	}

	qualified := result.Qualifies()
	totalScore := 0.0
	if qualified {
		totalScore = result.WeightedTotal()
	}

	return c.JSON(fiber.Map{
		"submissionId": req.SubmissionID,
		"link":         req.Link,
		"result":       result,
		"qualified":    qualified,
		"totalScore":   totalScore,
	})
}

// SubmitEntry upserts the participant row keyed on (user, campaign) with
// status PENDING. Resubmitting overwrites the previous entry — last write
// wins, no history. When the posted raw result carries the sub-scores the
// total is recomputed server-side rather than trusting the client's number.
func (s *SubmissionService) SubmitEntry(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.SubmissionID == "" || req.Link == "" || req.UserWalletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required fields",
		})
	}

	var user models.User
	if err := s.DB.First(&user, "wallet_address = ?", req.UserWalletAddress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process submission",
		})
	}

	totalScore := req.TotalScore
	if recomputed, ok := recomputeTotal(req.Result); ok {
		totalScore = recomputed
	}

	data := ""
	if len(req.Result) > 0 {
		data = string(req.Result)
	}

	participant := models.CampaignParticipant{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		CampaignID: req.SubmissionID,
		BlogURL:    req.Link,
		TotalScore: totalScore,
		Status:     models.SubmissionStatusPending,
		Data:       data,
	}

	// Upsert on the (user_id, campaign_id) composite key
	err := s.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "campaign_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"blog_url":    participant.BlogURL,
			"total_score": participant.TotalScore,
			"status":      models.SubmissionStatusPending,
			"data":        participant.Data,
			"updated_at":  time.Now(),
		}),
	}).Create(&participant).Error
	if err != nil {
		log.Printf("❌ [SUBMISSION] upsert failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process submission",
			"error":   err.Error(),
		})
	}

	var saved models.CampaignParticipant
	if err := s.DB.First(&saved, "user_id = ? AND campaign_id = ?", user.ID, req.SubmissionID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to process submission",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Submission saved successfully",
		"data":    saved,
	})
}

// ListSubmissions returns every submission for a campaign with its user,
// best score first.
func (s *SubmissionService) ListSubmissions(c *fiber.Ctx) error {
	campaignID := c.Query("campaignId")
	if campaignID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Campaign ID is required",
		})
	}

	var participants []models.CampaignParticipant
	if err := s.DB.Preload("User").
		Where("campaign_id = ?", campaignID).
		Order("total_score DESC").
		Find(&participants).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch campaign submissions",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": participants})
}

// IsUserSubmitted reports whether a wallet already submitted to a campaign.
// An unregistered wallet simply hasn't submitted — that's false, not an error.
func (s *SubmissionService) IsUserSubmitted(c *fiber.Ctx) error {
	campaignID := c.Query("campaignId")
	address := c.Query("address")
	if campaignID == "" || address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required parameters: campaignId or address",
		})
	}

	var user models.User
	if err := s.DB.First(&user, "wallet_address = ?", address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"success": true, "data": false})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Server error while checking submission status",
		})
	}

	var count int64
	if err := s.DB.Model(&models.CampaignParticipant{}).
		Where("user_id = ? AND campaign_id = ?", user.ID, campaignID).
		Count(&count).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Server error while checking submission status",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": count > 0})
}

// ApproveSubmission flips a submission to ACCEPTED. Only the campaign owner
// may approve (wallet compared case-insensitively); the owner performs the
// on-chain reward accounting before calling this. Approving twice is harmless.
func (s *SubmissionService) ApproveSubmission(c *fiber.Ctx) error {
	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameters",
		})
	}

	if req.CampaignID == "" || req.SubmissionID == "" || req.WalletSigner == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameters",
		})
	}

	var campaign models.Campaign
	if err := s.DB.Preload("Owner").First(&campaign, "id = ?", req.CampaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Campaign not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	if campaign.Owner == nil || !utils.SameAddress(campaign.Owner.WalletAddress, req.WalletSigner) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Unauthorized: Only campaign owner can approve submissions",
		})
	}

	res := s.DB.Model(&models.CampaignParticipant{}).
		Where("id = ? AND campaign_id = ?", req.SubmissionID, req.CampaignID).
		Updates(map[string]interface{}{
			"status":     models.SubmissionStatusAccepted,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error", "details": res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Submission not found",
		})
	}

	var updated models.CampaignParticipant
	if err := s.DB.First(&updated, "id = ?", req.SubmissionID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Submission approved successfully",
		"data":    updated,
	})
}

// recomputeTotal re-derives the weighted total from the raw result posted at
// submit time. The check response embeds the structured result under "result";
// older clients posted the bare result, so both shapes are tried.
func recomputeTotal(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var wrapped struct {
		Result *ScoreResult `json:"result"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Result != nil && hasScores(wrapped.Result) {
		return wrapped.Result.WeightedTotal(), true
	}

	var bare ScoreResult
	if err := json.Unmarshal(raw, &bare); err == nil && hasScores(&bare) {
		return bare.WeightedTotal(), true
	}

	return 0, false
}

func hasScores(r *ScoreResult) bool {
	return r.Score.CampaignFitScore != 0 || r.Score.ViralityScore != 0 || r.Score.QualityScore != 0
}
