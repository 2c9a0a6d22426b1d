package services

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"write-on-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.CampaignParticipant{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, wallet string) models.User {
	t.Helper()

	user := models.User{
		ID:            uuid.NewString(),
		WalletAddress: wallet,
		Username:      "writer-" + wallet[:8],
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCampaign(t *testing.T, db *gorm.DB, owner models.User, mutate ...func(*models.Campaign)) models.Campaign {
	t.Helper()

	campaign := models.Campaign{
		ID:              uuid.NewString(),
		Title:           "Write about DeFi",
		Slug:            "write-about-defi",
		Description:     "Cover the basics of decentralized finance",
		Keywords:        "defi,web3",
		TargetAudience:  "crypto-curious developers",
		CtaGoal:         "sign up for the newsletter",
		RewardPool:      500,
		StartDate:       mustParseDate(t, "2025-06-01"),
		EndDate:         mustParseDate(t, "2025-06-30"),
		TxHash:          "0x" + uuid.NewString()[:8],
		CampaignAddress: "0xcafe0000000000000000000000000000000000ff",
		OwnerID:         owner.ID,
		Status:          models.CampaignStatusActive,
	}
	for _, fn := range mutate {
		fn(&campaign)
	}
	require.NoError(t, db.Create(&campaign).Error)
	return campaign
}

func mustParseDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := parseDate(value)
	require.NoError(t, err)
	return parsed
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest("POST", path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", string(raw))
	return out
}

// multipartForm builds a form-encoded request body from string fields.
func multipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func postForm(t *testing.T, app *fiber.App, path string, fields map[string]string) *http.Response {
	t.Helper()

	buf, contentType := multipartForm(t, fields)
	req, err := http.NewRequest("POST", path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func putForm(t *testing.T, app *fiber.App, path string, fields map[string]string) *http.Response {
	t.Helper()

	buf, contentType := multipartForm(t, fields)
	req, err := http.NewRequest("PUT", path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
