package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"blockverify/credential-verifier/internal/models"
	"blockverify/credential-verifier/internal/services"
)

// OTPHandler serves the one-time-code side-channel used by the student
// detail edit flow.
type OTPHandler struct {
	otpService services.OTPService
	devExpose  bool
}

func NewOTPHandler(otpService services.OTPService, devExpose bool) *OTPHandler {
	return &OTPHandler{
		otpService: otpService,
		devExpose:  devExpose,
	}
}

// HandleSend handles POST /otp/send.
func (h *OTPHandler) HandleSend(c *fiber.Ctx) error {
	var req models.SendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request payload",
		})
	}

	if req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email is required",
		})
	}

	code, err := h.otpService.IssueCode(req.Email, req.StudentName, req.Purpose)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to send OTP",
			"error":   err.Error(),
		})
	}

	response := fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
	}
	if h.devExpose {
		response["otp"] = code
	}

	return c.JSON(response)
}

// HandleVerify handles POST /otp/verify.
func (h *OTPHandler) HandleVerify(c *fiber.Ctx) error {
	var req models.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request payload",
		})
	}

	if req.Email == "" || req.OTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email and OTP are required",
		})
	}

	if err := h.otpService.VerifyCode(req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, services.ErrOTPNotFound),
			errors.Is(err, services.ErrOTPExpired),
			errors.Is(err, services.ErrOTPInvalid):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Failed to verify OTP",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP verified successfully",
	})
}
