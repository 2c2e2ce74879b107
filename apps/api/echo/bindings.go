package echoapi

import (
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// reserved list-request params; everything else in the query string is an
// upstream filter and is passed through as-is.
var reservedParams = map[string]bool{
	"page":    true,
	"limit":   true,
	"refresh": true,
}

// ListRequest is the common query contract of every table endpoint.
// Pages are 0-based on this side; the table layer owns the upstream
// conversion.
type ListRequest struct {
	Page    int  `query:"page" validate:"gte=0"`
	Limit   int  `query:"limit" validate:"omitempty,oneof=10 25 50 100"`
	Refresh bool `query:"refresh"`

	filters url.Values
}

func (lr *ListRequest) Bind(ctx echo.Context, validate *validator.Validate) error {
	if err := ctx.Bind(lr); err != nil {
		return err
	}
	if err := validate.Struct(lr); err != nil {
		return err
	}

	lr.filters = make(url.Values)
	for name, vals := range ctx.QueryParams() {
		if reservedParams[name] {
			continue
		}
		lr.filters[name] = vals
	}
	return nil
}

// Filters returns the non-reserved query params to forward upstream.
func (lr *ListRequest) Filters() url.Values { return lr.filters }
