package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aeternum/journeys-backend/internal/service"
	"github.com/aeternum/journeys-backend/internal/util"
)

type PlaceHandler struct {
	places *service.PlaceService
}

func RegisterPlaces(e *echo.Echo, auth *service.AuthService, places *service.PlaceService) {
	handler := &PlaceHandler{places: places}

	group := e.Group("/api/v1/places", RequireAuth(auth))
	group.GET("/search", handler.search)
}

// search handles GET /api/v1/places/search?q=
// Suggest never fails: short queries and upstream errors both come back as
// an empty candidate list.
func (h *PlaceHandler) search(c echo.Context) error {
	places := h.places.Suggest(c.Request().Context(), c.QueryParam("q"))
	return c.JSON(http.StatusOK, util.Data("places", places))
}
