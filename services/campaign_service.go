// write-on-backend/services/campaign_service.go
package services

import (
	"errors"
	"log"
	"math"
	"strconv"
	"time"

	"write-on-backend/models"
	"write-on-backend/utils"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type CampaignService struct {
	DB *gorm.DB
}

func NewCampaignService(db *gorm.DB) *CampaignService {
	return &CampaignService{DB: db}
}

// CampaignSummary is the listing shape the frontend renders cards from.
type CampaignSummary struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Description  string            `json:"description"`
	Participants int64             `json:"participants"`
	Deadline     string            `json:"deadline"`
	EndDate      time.Time         `json:"endDate"`
	Image        string            `json:"image"`
	Featured     bool              `json:"featured"`
	StartDate    time.Time         `json:"startDate"`
	Keywords     string            `json:"keywords"`
	Owner        models.PublicUser `json:"owner"`
	RewardPool   float64           `json:"rewardPool"`

	// Only populated on the owner's own listing
	Status          string `json:"status,omitempty"`
	CampaignAddress string `json:"campaignAddress,omitempty"`
	TxHash          string `json:"txHash,omitempty"`
}

// CreateCampaign persists a campaign whose on-chain creation already
// succeeded — the client reports txHash and campaignAddress as trusted input
// (the receipt worker verifies them out-of-band).
func (s *CampaignService) CreateCampaign(c *fiber.Ctx) error {
	title := c.FormValue("title")
	description := c.FormValue("description")
	startDateStr := c.FormValue("startDate")
	endDateStr := c.FormValue("endDate")
	walletAddress := c.FormValue("walletAddress")
	txHash := c.FormValue("txHash")
	campaignAddress := c.FormValue("campaignAddress")

	if title == "" || description == "" || startDateStr == "" || endDateStr == "" ||
		walletAddress == "" || txHash == "" || campaignAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing required fields",
		})
	}

	startDate, err := parseDate(startDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid date format: " + startDateStr,
		})
	}
	endDate, err := parseDate(endDateStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid date format: " + endDateStr,
		})
	}

	if !endDate.After(startDate) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "End date must be later than start date",
		})
	}

	// Owner must be registered before creating campaigns
	var owner models.User
	if err := s.DB.First(&owner, "wallet_address = ?", walletAddress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create campaign",
		})
	}

	rewardPool := parseFloatOrZero(c.FormValue("rewardPool"))

	campaign := &models.Campaign{
		ID:              uuid.NewString(),
		Title:           title,
		Slug:            slug.Make(title),
		Description:     description,
		AiDescription:   c.FormValue("aiDescription"),
		Keywords:        c.FormValue("keywords"),
		TargetAudience:  c.FormValue("targetAudience"),
		CtaGoal:         c.FormValue("ctaGoal"),
		RewardPool:      rewardPool,
		StartDate:       startDate,
		EndDate:         endDate,
		TxHash:          txHash,
		CampaignAddress: campaignAddress,
		OwnerID:         owner.ID,
		Status:          models.CampaignStatusActive,
	}

	// 🖼️ Optional cover image
	if coverFile, err := c.FormFile("coverImage"); err == nil && coverFile.Size > 0 {
		imagePath, err := utils.SaveImage(coverFile)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save cover image",
			})
		}
		campaign.CoverImage = imagePath
	}

	if err := s.DB.Create(campaign).Error; err != nil {
		log.Printf("❌ [CAMPAIGN] create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create campaign",
			"error":   err.Error(),
		})
	}

	campaign.Owner = &owner
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Campaign created successfully",
		"campaign": campaign,
	})
}

// ListCampaigns returns a newest-first page with participant counts and
// pagination metadata. `featured` is a tri-state filter: absent, true, false.
func (s *CampaignService) ListCampaigns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	featuredFilter := func(tx *gorm.DB) *gorm.DB {
		switch c.Query("featured") {
		case "true":
			return tx.Where("featured = ?", true)
		case "false":
			return tx.Where("featured = ?", false)
		}
		return tx
	}

	var total int64
	if err := s.DB.Model(&models.Campaign{}).Scopes(featuredFilter).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch campaigns",
			"error":   err.Error(),
		})
	}

	var campaigns []models.Campaign
	if err := s.DB.Scopes(featuredFilter).
		Preload("Owner").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch campaigns",
			"error":   err.Error(),
		})
	}

	counts, err := s.participantCounts(campaigns)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch campaigns",
			"error":   err.Error(),
		})
	}

	formatted := make([]CampaignSummary, 0, len(campaigns))
	for i := range campaigns {
		formatted = append(formatted, summarize(&campaigns[i], counts[campaigns[i].ID], false))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    formatted,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// GetCampaign returns one campaign with owner and all participants (each with
// their user) — the review page needs the whole picture.
func (s *CampaignService) GetCampaign(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Campaign ID is required",
		})
	}

	var campaign models.Campaign
	err := s.DB.Preload("Owner").
		Preload("Participants").
		Preload("Participants.User").
		First(&campaign, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Campaign not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": campaign})
}

// MyCampaigns lists every campaign owned by a user, newest first. No
// pagination — an owner's set stays small.
func (s *CampaignService) MyCampaigns(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User ID is required",
		})
	}

	var campaigns []models.Campaign
	if err := s.DB.Preload("Owner").
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch user campaigns",
			"error":   err.Error(),
		})
	}

	counts, err := s.participantCounts(campaigns)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch user campaigns",
			"error":   err.Error(),
		})
	}

	formatted := make([]CampaignSummary, 0, len(campaigns))
	for i := range campaigns {
		formatted = append(formatted, summarize(&campaigns[i], counts[campaigns[i].ID], true))
	}

	return c.JSON(fiber.Map{"success": true, "data": formatted})
}

// StartStatusScheduler flips ACTIVE campaigns to ENDED once their end date
// passes. Same shape as the publish scheduler in the game service this grew
// out of: one gocron job, every minute.
func (s *CampaignService) StartStatusScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			res := s.DB.Model(&models.Campaign{}).
				Where("status = ? AND end_date <= ?", models.CampaignStatusActive, time.Now()).
				Update("status", models.CampaignStatusEnded)
			if res.Error != nil {
				log.Printf("[Scheduler] DB error: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Marked %d campaign(s) as ENDED", res.RowsAffected)
			}
		}),
	)
}

// participantCounts returns submission counts per campaign in one grouped query.
func (s *CampaignService) participantCounts(campaigns []models.Campaign) (map[string]int64, error) {
	counts := make(map[string]int64, len(campaigns))
	if len(campaigns) == 0 {
		return counts, nil
	}

	ids := make([]string, 0, len(campaigns))
	for i := range campaigns {
		ids = append(ids, campaigns[i].ID)
	}

	var rows []struct {
		CampaignID string
		Count      int64
	}
	err := s.DB.Model(&models.CampaignParticipant{}).
		Select("campaign_id, COUNT(*) as count").
		Where("campaign_id IN ?", ids).
		Group("campaign_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.CampaignID] = row.Count
	}
	return counts, nil
}

func summarize(campaign *models.Campaign, participants int64, ownerView bool) CampaignSummary {
	out := CampaignSummary{
		ID:           campaign.ID,
		Title:        campaign.Title,
		Slug:         campaign.Slug,
		Description:  campaign.Description,
		Participants: participants,
		Deadline:     campaign.EndDate.Format("Jan 2, 2006"),
		EndDate:      campaign.EndDate,
		Image:        campaign.CoverImage,
		Featured:     campaign.Featured,
		StartDate:    campaign.StartDate,
		Keywords:     campaign.Keywords,
		RewardPool:   campaign.RewardPool,
	}
	if campaign.Owner != nil {
		out.Owner = campaign.Owner.Public()
	}
	if ownerView {
		out.Status = campaign.Status
		out.CampaignAddress = campaign.CampaignAddress
		out.TxHash = campaign.TxHash
	}
	return out
}

// parseDate accepts RFC3339 (what the frontend sends) and plain dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseFloatOrZero(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}
