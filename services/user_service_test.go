package services

import (
	"fmt"
	"net/http"
	"testing"

	"write-on-backend/models"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSignupMessage = "Sign this message to register with WriteOn"

// signPersonal produces a wallet-style personal_sign signature for the test key.
func signPersonal(t *testing.T, privateKeyHex, message string) (signature, address string) {
	t.Helper()

	key, err := crypto.HexToECDSA(privateKeyHex)
	require.NoError(t, err)

	hash := crypto.Keccak256Hash([]byte(fmt.Sprintf("\x19Ethereum Signed Message:\n%d%s", len(message), message)))
	sig, err := crypto.Sign(hash.Bytes(), key)
	require.NoError(t, err)
	sig[64] += 27

	return hexutil.Encode(sig), crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func newUserApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	app := fiber.New()
	svc := NewUserService(db)
	app.Get("/users", svc.GetUser)
	app.Post("/users", svc.RegisterUser)
	app.Put("/users", svc.UpdateUser)
	return app, db
}

func TestRegisterUser(t *testing.T) {
	const key = "1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	signature, address := signPersonal(t, key, testSignupMessage)

	t.Run("valid signature registers the wallet", func(t *testing.T) {
		app, db := newUserApp(t)
		resp := postForm(t, app, "/users", map[string]string{
			"username":      "alice",
			"bio":           "writes about protocols",
			"walletAddress": address,
			"signature":     signature,
			"signedMessage": testSignupMessage,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])
		user := body["user"].(map[string]interface{})
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, address, user["walletAddress"])

		var count int64
		db.Model(&models.User{}).Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("signature from a different key is rejected", func(t *testing.T) {
		app, _ := newUserApp(t)
		otherSig, _ := signPersonal(t, "aaaabbbbccccddddeeeeffff0000111122223333444455556666777788889999", testSignupMessage)

		resp := postForm(t, app, "/users", map[string]string{
			"walletAddress": address,
			"signature":     otherSig,
			"signedMessage": testSignupMessage,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["message"], "Invalid signature")
	})

	t.Run("missing signature data is rejected", func(t *testing.T) {
		app, _ := newUserApp(t)
		resp := postForm(t, app, "/users", map[string]string{
			"walletAddress": address,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["message"], "Missing signature data")
	})

	t.Run("duplicate wallet is rejected", func(t *testing.T) {
		app, db := newUserApp(t)
		seedUser(t, db, address)

		resp := postForm(t, app, "/users", map[string]string{
			"walletAddress": address,
			"signature":     signature,
			"signedMessage": testSignupMessage,
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["message"], "already exists")
	})

	t.Run("missing wallet address is rejected", func(t *testing.T) {
		app, _ := newUserApp(t)
		resp := postForm(t, app, "/users", map[string]string{
			"signature":     signature,
			"signedMessage": testSignupMessage,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetUser(t *testing.T) {
	app, db := newUserApp(t)
	user := seedUser(t, db, "0x1234000000000000000000000000000000000000")

	t.Run("existing wallet", func(t *testing.T) {
		resp := get(t, app, "/users?walletAddress="+user.WalletAddress)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["exists"])
		assert.Equal(t, user.ID, body["user"].(map[string]interface{})["id"])
	})

	t.Run("unknown wallet", func(t *testing.T) {
		resp := get(t, app, "/users?walletAddress=0x0000000000000000000000000000000000000001")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["exists"])
	})

	t.Run("missing wallet param", func(t *testing.T) {
		resp := get(t, app, "/users")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateUser(t *testing.T) {
	const key = "99990000aaaabbbbccccddddeeeeffff1111222233334444555566667777ffff"
	signature, address := signPersonal(t, key, testSignupMessage)

	t.Run("updates profile fields and keeps the rest", func(t *testing.T) {
		app, db := newUserApp(t)
		existing := models.User{
			ID:            "user-update",
			WalletAddress: address,
			Username:      "old-name",
			Bio:           "old bio",
			Image:         "/uploads/avatar.png",
		}
		require.NoError(t, db.Create(&existing).Error)

		resp := putForm(t, app, "/users", map[string]string{
			"username":      "new-name",
			"walletAddress": address,
			"signature":     signature,
			"signedMessage": testSignupMessage,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", existing.ID).Error)
		assert.Equal(t, "new-name", updated.Username)
		assert.Equal(t, "old bio", updated.Bio)
		assert.Equal(t, "/uploads/avatar.png", updated.Image)
		assert.Equal(t, address, updated.WalletAddress)
	})

	t.Run("unregistered wallet is 404", func(t *testing.T) {
		app, _ := newUserApp(t)
		resp := putForm(t, app, "/users", map[string]string{
			"username":      "ghost",
			"walletAddress": address,
			"signature":     signature,
			"signedMessage": testSignupMessage,
		})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("bad signature is rejected before any lookup", func(t *testing.T) {
		app, db := newUserApp(t)
		seedUser(t, db, address)

		resp := putForm(t, app, "/users", map[string]string{
			"username":      "mallory",
			"walletAddress": address,
			"signature":     "0xdeadbeef",
			"signedMessage": testSignupMessage,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
