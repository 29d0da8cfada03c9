package http_server

import (
	"net/http"

	"github.com/danthegoodman1/icescore/part"
	"github.com/danthegoodman1/icescore/utils"
)

func (s *HTTPServer) ListParts(c *CustomContext) error {
	if s.MetaStore == nil {
		return c.String(http.StatusNotFound, "no run log configured")
	}
	parts, err := s.MetaStore.ListParts(c.Request().Context(), c.Param("ns"))
	if err != nil {
		return c.InternalError(err, "error listing parts")
	}
	return c.JSON(http.StatusOK, utils.ArrayOrEmpty[part.Part](parts))
}
