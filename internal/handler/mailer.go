package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"furnit-storefront/internal/dto"
	"furnit-storefront/internal/service"
)

type MailerHandler struct {
	mailerService service.MailerService
}

func NewMailerHandler(mailerService service.MailerService) *MailerHandler {
	return &MailerHandler{
		mailerService: mailerService,
	}
}

func (h *MailerHandler) SendOrderConfirmation(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.OrderConfirmationRequest
	if err := bind(c, &req, service.MsgMissingOrderFields); err != nil {
		return err
	}

	if err := h.mailerService.SendOrderConfirmation(ctx, req.ToOrder()); err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Order confirmation email sent successfully",
	})
}

func (h *MailerHandler) RequestPasswordReset(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PasswordResetRequest
	if err := bind(c, &req, service.MsgMissingEmail); err != nil {
		return err
	}

	msg, err := h.mailerService.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: msg})
}

func (h *MailerHandler) VerifyResetToken(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyResetTokenRequest
	if err := bind(c, &req, service.MsgMissingToken); err != nil {
		return err
	}

	email, err := h.mailerService.VerifyResetToken(ctx, req.Token)
	if err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.VerifyResetTokenResponse{Success: true, Email: email})
}

func (h *MailerHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ResetPasswordRequest
	if err := bind(c, &req, service.MsgMissingResetFields); err != nil {
		return err
	}

	done, err := h.mailerService.CompleteReset(ctx, req.Token, req.NewPassword)
	if err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.ResetPasswordResponse{
		Success:   true,
		Email:     done.Email,
		Message:   done.Message,
		Assertion: done.Assertion,
	})
}

func (h *MailerHandler) ConsumeAssertion(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConsumeAssertionRequest
	if err := bind(c, &req, service.MsgMissingAssertion); err != nil {
		return err
	}

	email, err := h.mailerService.ConsumeAssertion(ctx, req.Assertion)
	if err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.VerifyResetTokenResponse{Success: true, Email: email})
}

func (h *MailerHandler) SendWelcome(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AccountNoticeRequest
	if err := bind(c, &req, service.MsgMissingNameFields); err != nil {
		return err
	}

	if err := h.mailerService.SendWelcome(ctx, req.Email, req.Name); err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Welcome email sent successfully",
	})
}

func (h *MailerHandler) SendPasswordChanged(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AccountNoticeRequest
	if err := bind(c, &req, service.MsgMissingNameFields); err != nil {
		return err
	}

	if err := h.mailerService.SendPasswordChanged(ctx, req.Email, req.Name); err != nil {
		return mailerError(err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{
		Success: true,
		Message: "Password changed confirmation email sent successfully",
	})
}
