package http_server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danthegoodman1/icescore/document"
	"github.com/danthegoodman1/icescore/schema"
	"github.com/danthegoodman1/icescore/scoring"
	"github.com/danthegoodman1/icescore/table"
)

type (
	ApplicableReqBody struct {
		Columns      []table.ColumnSpec `validate:"dive"`
		OutputColumn string
	}

	DocumentApplicableReqBody struct {
		Document string `validate:"required"`
		// json, yaml, or empty to detect
		Format       string
		Columns      []table.ColumnSpec `validate:"dive"`
		OutputColumn string
	}

	ApplicableResponse struct {
		Applicable bool
		// OutputColumns is empty when Dynamic is set.
		OutputColumns []table.ColumnSpec
		// Dynamic outputs only know their columns after scoring.
		Dynamic bool
		Summary string
	}
)

func (s *HTTPServer) ListEngines(c *CustomContext) error {
	return c.JSON(http.StatusOK, s.Catalog.List())
}

func (s *HTTPServer) EngineApplicable(c *CustomContext) error {
	var reqBody ApplicableReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	e, err := s.Catalog.New(c.Param("name"))
	if errors.Is(err, scoring.ErrEngineNotFound) {
		return c.String(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error creating engine")
	}
	return s.applicable(c, e.InputSchema(), e.OutputSchema(), reqBody.Columns, reqBody.OutputColumn)
}

func (s *HTTPServer) DocumentApplicable(c *CustomContext) error {
	var reqBody DocumentApplicableReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	doc, err := document.Load(strings.NewReader(reqBody.Document), reqBody.Format)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	return s.applicable(c, doc.Input, doc.Output, reqBody.Columns, reqBody.OutputColumn)
}

func (s *HTTPServer) applicable(c *CustomContext, in, out *schema.Schema, cols []table.ColumnSpec, outputColumn string) error {
	ctx := c.Request().Context()
	layout, err := table.LayoutFromSpecs(cols)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if outputColumn == "" {
		outputColumn = s.DefaultOutputColumn
	}

	ok, err := s.Registry.IsApplicable(in, layout)
	if err != nil {
		return c.ExecutionError(ctx, err, "error in IsApplicable")
	}
	outLayout, static, err := s.Registry.LayoutFromSchema(out, outputColumn)
	if err != nil {
		return c.ExecutionError(ctx, err, "error in LayoutFromSchema")
	}

	res := ApplicableResponse{
		Applicable:    ok,
		Dynamic:       !static,
		OutputColumns: []table.ColumnSpec{},
		Summary:       schema.Summary(in, out),
	}
	if static {
		res.OutputColumns = outLayout.Specs()
	}
	return c.JSON(http.StatusOK, res)
}
