package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// NoEscapeJSONSerializer is echo's default serializer without HTML escaping,
// so column names like "a<b" come back as written.
type NoEscapeJSONSerializer struct{}

func (NoEscapeJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (NoEscapeJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	err := json.NewDecoder(c.Request().Body).Decode(i)
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	if errors.As(err, &typeErr) {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Unmarshal type error: expected=%v, got=%v, field=%v, offset=%v", typeErr.Type, typeErr.Value, typeErr.Field, typeErr.Offset)).SetInternal(err)
	} else if errors.As(err, &syntaxErr) {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Syntax error: offset=%v, error=%v", syntaxErr.Offset, syntaxErr.Error())).SetInternal(err)
	}
	return err
}
