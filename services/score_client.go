// write-on-backend/services/score_client.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"write-on-backend/utils"
)

// ErrScoringUnavailable is the single error surfaced for any scoring failure —
// transport, non-2xx, or an undecodable body. Scoring is all-or-nothing.
var ErrScoringUnavailable = errors.New("failed to check score, please try again later")

// Qualification policy and total-score weights. A submission qualifies when it
// reads as human-written (AI-authenticity) AND actually fits the campaign.
const (
	MinAIAuthenticityScore = 70.0
	MinCampaignFitScore    = 60.0

	WeightCampaignFit = 0.6
	WeightVirality    = 0.2
	WeightQuality     = 0.2
)

// AIContentScore is the AI-authenticity part of a scoring result
// (100 = certainly human-written).
type AIContentScore struct {
	Score float64 `json:"score"`
	Label string  `json:"label,omitempty"`
}

// ScoreDetails are the per-axis campaign scores, each on a 0–100 scale.
type ScoreDetails struct {
	CampaignFitScore float64 `json:"campaign_fit_score"`
	ViralityScore    float64 `json:"virality_score"`
	QualityScore     float64 `json:"quality_score"`
	QualityReason    string  `json:"quality_reason,omitempty"`
}

// ScoreResult is the structured scoring response for one content URL.
type ScoreResult struct {
	ContentURL string         `json:"contentUrl,omitempty"`
	AIContent  AIContentScore `json:"AIContent"`
	Score      ScoreDetails   `json:"score"`
}

// Qualifies applies the fixed qualification policy.
func (r *ScoreResult) Qualifies() bool {
	return r.AIContent.Score >= MinAIAuthenticityScore &&
		r.Score.CampaignFitScore >= MinCampaignFitScore
}

// WeightedTotal computes the submission total: 0.6·fit + 0.2·virality + 0.2·quality.
func (r *ScoreResult) WeightedTotal() float64 {
	return r.Score.CampaignFitScore*WeightCampaignFit +
		r.Score.ViralityScore*WeightVirality +
		r.Score.QualityScore*WeightQuality
}

// ScoreRequest carries everything the scoring API needs to judge a link
// against a campaign.
type ScoreRequest struct {
	ContentURL          string
	CampaignDescription string
	CampaignKeywords    string
	TargetAudience      string
	CTAGoal             string
}

type ScoreClient struct {
	BaseURL string
	Client  *http.Client
}

func NewScoreClient(baseURL string) *ScoreClient {
	return &ScoreClient{
		BaseURL: baseURL,
		Client:  utils.HTTPClient,
	}
}

// CheckScore calls GET {base}/api/getscore and returns the structured result.
// Read-only: nothing is persisted here.
func (c *ScoreClient) CheckScore(req ScoreRequest) (*ScoreResult, error) {
	u, err := url.Parse(fmt.Sprintf("%s/api/getscore", c.BaseURL))
	if err != nil {
		log.Printf("[SCORING] bad base URL %q: %v", c.BaseURL, err)
		return nil, ErrScoringUnavailable
	}

	q := u.Query()
	q.Set("contentUrl", req.ContentURL)
	if req.CampaignDescription != "" {
		q.Set("campaignDescription", req.CampaignDescription)
	}
	if req.CampaignKeywords != "" {
		q.Set("campaign_keywords", req.CampaignKeywords)
	}
	if req.TargetAudience != "" {
		q.Set("target_audience", req.TargetAudience)
	}
	if req.CTAGoal != "" {
		q.Set("CTA_goal", req.CTAGoal)
	}
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, ErrScoringUnavailable
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		log.Printf("[SCORING] request failed: %v", err)
		return nil, ErrScoringUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("[SCORING] scoring API returned %d: %s", resp.StatusCode, string(body))
		return nil, ErrScoringUnavailable
	}

	// Response envelope: { "data": { "result": { ... } } }
	var out struct {
		Data struct {
			Result *ScoreResult `json:"result"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Printf("[SCORING] failed to decode scoring response: %v", err)
		return nil, ErrScoringUnavailable
	}
	if out.Data.Result == nil {
		log.Printf("[SCORING] scoring response missing result payload")
		return nil, ErrScoringUnavailable
	}

	return out.Data.Result, nil
}
