// handlers/campaign.go
package handlers

import (
	"write-on-backend/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCampaignRoutes(app *fiber.App, campaignService *services.CampaignService, submissionService *services.SubmissionService) {
	campaigns := app.Group("/campaigns")

	// Directory
	campaigns.Post("/create", campaignService.CreateCampaign)
	campaigns.Get("/list", campaignService.ListCampaigns)
	campaigns.Get("/get", campaignService.GetCampaign)
	campaigns.Get("/my-campaign", campaignService.MyCampaigns)

	// Submission workflow: check → submit → (owner) approve
	campaigns.Post("/submission", submissionService.CheckSubmission)
	campaigns.Post("/submission/submit", submissionService.SubmitEntry)
	campaigns.Get("/submission/list", submissionService.ListSubmissions)
	campaigns.Get("/submission/is-user-submitted", submissionService.IsUserSubmitted)
	campaigns.Post("/approve_submission", submissionService.ApproveSubmission)
}
