package api

import (
	"io"
	"net/http"

	resdto "smartpark/internal/handler/dto/response"
	"smartpark/internal/handler/httperr"
	"smartpark/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const (
	maxWebhookBody  = 64 << 10
	signatureHeader = "Stripe-Signature"
)

type PaymentHandler struct {
	cmds commands.PaymentCommands
}

func NewPaymentHandler(cmds commands.PaymentCommands) *PaymentHandler {
	return &PaymentHandler{cmds: cmds}
}

// @Summary Checkout result
// @Description Reconciles the session the browser was redirected back with. Safe to repeat.
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} resdto.ReconcileResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /payments/checkout/result [get]
func (h *PaymentHandler) CheckoutResult(c *gin.Context) {
	result, err := h.cmds.ReconcileSession(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReconcileResult(result))
}

// @Summary Payment webhook
// @Description Signed processor callback; only completed checkouts are acted on
// @Tags payments
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Signature"
// @Success 200 {object} map[string]any
// @Failure 400 {object} httperr.Response
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payload", nil)
		return
	}

	result, err := h.cmds.HandleWebhook(c.Request.Context(), payload, c.GetHeader(signatureHeader))
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "result": resdto.FromReconcileResult(result)})
}
