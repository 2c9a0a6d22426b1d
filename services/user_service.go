// write-on-backend/services/user_service.go
package services

import (
	"errors"
	"log"
	"strings"

	"write-on-backend/models"
	"write-on-backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// GetUser checks whether a wallet is registered and returns the profile.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	walletAddress := c.Query("walletAddress")
	if walletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Wallet address is required",
		})
	}

	var user models.User
	err := s.DB.First(&user, "wallet_address = ?", walletAddress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"success": true,
				"exists":  false,
				"user":    nil,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "An error occurred while checking user",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"exists":  true,
		"user":    user,
	})
}

// RegisterUser creates a profile for a wallet. The wallet proves itself with a
// personal_sign signature over signedMessage — no session, no password.
func (s *UserService) RegisterUser(c *fiber.Ctx) error {
	walletAddress := c.FormValue("walletAddress")
	if walletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Wallet address is required",
		})
	}

	if err := verifySignatureForm(c, walletAddress); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	// Pre-check for a friendlier message; the unique index is the real guard
	var existing models.User
	if err := s.DB.First(&existing, "wallet_address = ?", walletAddress).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "User with this wallet address already exists",
		})
	}

	user := models.User{
		ID:            uuid.NewString(),
		WalletAddress: walletAddress,
		Username:      c.FormValue("username"),
		Bio:           c.FormValue("bio"),
	}

	if imageFile, err := c.FormFile("image"); err == nil && imageFile.Size > 0 {
		imagePath, err := utils.SaveImage(imageFile)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save profile image",
			})
		}
		user.Image = imagePath
	}

	if err := s.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "This wallet address is already registered",
			})
		}
		log.Printf("❌ [USER] register failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "An error occurred while registering the user: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User registered successfully",
		"user":    user,
	})
}

// UpdateUser edits profile fields of an existing wallet, signature-gated the
// same way as registration. The wallet address itself never changes.
func (s *UserService) UpdateUser(c *fiber.Ctx) error {
	walletAddress := c.FormValue("walletAddress")
	if walletAddress == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Wallet address is required",
		})
	}

	if err := verifySignatureForm(c, walletAddress); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var user models.User
	if err := s.DB.First(&user, "wallet_address = ?", walletAddress).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "An error occurred while updating the user",
		})
	}

	if username := c.FormValue("username"); username != "" {
		user.Username = username
	}
	if bio := c.FormValue("bio"); bio != "" {
		user.Bio = bio
	}
	if imageFile, err := c.FormFile("image"); err == nil && imageFile.Size > 0 {
		imagePath, err := utils.SaveImage(imageFile)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to save profile image",
			})
		}
		user.Image = imagePath
	}

	if err := s.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "An error occurred while updating the user: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "User profile updated successfully",
		"user":    user,
	})
}

// verifySignatureForm validates the signature/signedMessage pair from the form
// against the claimed wallet. Errors come back ready for the response message.
func verifySignatureForm(c *fiber.Ctx, walletAddress string) error {
	signature := c.FormValue("signature")
	signedMessage := c.FormValue("signedMessage")
	if signature == "" || signedMessage == "" {
		return errors.New("Signature verification failed: Missing signature data")
	}

	valid, err := utils.VerifyWalletSignature(signedMessage, signature, walletAddress)
	if err != nil {
		return errors.New("Signature verification failed: " + err.Error())
	}
	if !valid {
		return errors.New("Signature verification failed: Invalid signature")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
