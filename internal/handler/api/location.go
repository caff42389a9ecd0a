package api

import (
	"errors"
	"net/http"

	reqdto "smartpark/internal/handler/dto/request"
	resdto "smartpark/internal/handler/dto/response"
	"smartpark/internal/handler/httperr"
	"smartpark/internal/usecase/commands"
	"smartpark/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errIncompleteWindow = errors.New("from and to must be given together")

type LocationHandler struct {
	cmds commands.LocationCommands
	q    queries.LocationQueries
}

func NewLocationHandler(cmds commands.LocationCommands, q queries.LocationQueries) *LocationHandler {
	return &LocationHandler{cmds: cmds, q: q}
}

// @Summary List locations
// @Description List all parking locations with occupancy for an optional window
// @Tags locations
// @Produce json
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {array} resdto.LocationResponse
// @Failure 400 {object} httperr.Response
// @Router /locations [get]
func (h *LocationHandler) List(c *gin.Context) {
	var query reqdto.WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	window, err := toWindow(query)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}
	views, err := h.q.List(c.Request.Context(), window)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLocationViews(views))
}

// @Summary Search nearby locations
// @Description Locations within radius meters ordered by distance, with occupancy for the window
// @Tags locations
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius query number false "Radius in meters"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {array} resdto.LocationResponse
// @Failure 400 {object} httperr.Response
// @Router /locations/search [get]
func (h *LocationHandler) Search(c *gin.Context) {
	var query reqdto.NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	window, err := toWindow(query.WindowQuery)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}
	views, err := h.q.SearchNearby(c.Request.Context(), queries.NearbySearch{
		Lat:          *query.Lat,
		Lng:          *query.Lng,
		RadiusMeters: query.Radius,
		Window:       window,
	})
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLocationViews(views))
}

// @Summary Get location
// @Tags locations
// @Produce json
// @Param id path string true "Location ID"
// @Param from query string false "Window start (RFC3339)"
// @Param to query string false "Window end (RFC3339)"
// @Success 200 {object} resdto.LocationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /locations/{id} [get]
func (h *LocationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var query reqdto.WindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query", nil)
		return
	}
	window, err := toWindow(query)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id, window)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromLocationView(view))
}

// @Summary Create location
// @Tags locations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateLocationRequest true "Location"
// @Success 201 {object} resdto.LocationCreatedResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /locations [post]
func (h *LocationHandler) Create(c *gin.Context) {
	var req reqdto.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	id, err := h.cmds.CreateLocation(c.Request.Context(), req)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusCreated, resdto.LocationCreatedResponse{ID: id})
}

// @Summary Update location
// @Description Partial update; omitted fields keep their value
// @Tags locations
// @Accept json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Param request body reqdto.UpdateLocationRequest true "Fields to change"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /locations/{id} [patch]
func (h *LocationHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if err := h.cmds.UpdateLocation(c.Request.Context(), id, req); err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Toggle location availability
// @Tags locations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 200 {object} resdto.LocationToggledResponse
// @Failure 404 {object} httperr.Response
// @Router /locations/{id}/toggle [post]
func (h *LocationHandler) Toggle(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	status, err := h.cmds.ToggleLocation(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.LocationToggledResponse{ID: id, Status: status.String()})
}

// @Summary Delete location
// @Tags locations
// @Security BearerAuth
// @Param id path string true "Location ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /locations/{id} [delete]
func (h *LocationHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.cmds.DeleteLocation(c.Request.Context(), id); err != nil {
		httperr.AbortWithKind(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toWindow(q reqdto.WindowQuery) (*queries.TimeWindow, error) {
	switch {
	case q.From == nil && q.To == nil:
		return nil, nil
	case q.From == nil || q.To == nil:
		return nil, errIncompleteWindow
	}
	return &queries.TimeWindow{From: *q.From, To: *q.To}, nil
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}
