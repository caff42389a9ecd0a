package api

import (
	"net/http"

	reqdto "smartpark/internal/handler/dto/request"
	"smartpark/internal/handler/httperr"
	"smartpark/internal/handler/middleware"
	"smartpark/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type ViolationHandler struct {
	cmds commands.ViolationCommands
}

func NewViolationHandler(cmds commands.ViolationCommands) *ViolationHandler {
	return &ViolationHandler{cmds: cmds}
}

// @Summary Report violation
// @Description Emails the violation inbox about a vehicle parked without a booking
// @Tags violations
// @Accept json
// @Security BearerAuth
// @Param request body reqdto.ReportViolationRequest true "Violation"
// @Success 202
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /violations [post]
func (h *ViolationHandler) Report(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return
	}
	var req reqdto.ReportViolationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := h.cmds.ReportViolation(c.Request.Context(), req, actor); err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}
