package echoapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/cache"
	"github.com/trezcool/darasa/core/selection"
	"github.com/trezcool/darasa/core/table"
)

// resource is one cached upstream collection served to the dashboards.
type resource struct {
	name     string
	endpoint string
	ttl      time.Duration
	swr      bool // serve stale while revalidating in the background
	defaults url.Values
}

// dashboardResources maps the gateway surface onto the backend endpoints.
// TTLs follow volatility: catalog data is calm, payments and messages are not.
var dashboardResources = []resource{
	{name: "subjects", endpoint: "/subjects", ttl: 15 * time.Minute, swr: true},
	{name: "courses", endpoint: "/courses", ttl: 15 * time.Minute, swr: true},
	{name: "lectures", endpoint: "/lectures", ttl: 5 * time.Minute, swr: true},
	{name: "attendance", endpoint: "/institute-classes/attendance", ttl: time.Minute},
	{name: "enrollments", endpoint: "/enrollments", ttl: 5 * time.Minute},
	{name: "payments", endpoint: "/payments/history", ttl: time.Minute},
	{name: "messages", endpoint: "/organization/api/v1/messages", ttl: 30 * time.Second},
}

// ListResponse is the render-ready reply of every table endpoint: items in
// server order plus the pagination meta.
type ListResponse struct {
	Data       []json.RawMessage    `json:"data"`
	Pagination table.PaginationMeta `json:"pagination"`
}

type dashboardApi struct {
	cacheSvc *cache.Service
	selSvc   *selection.Service
	validate *validator.Validate
}

func registerDashboardAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	cacheSvc *cache.Service,
	selSvc *selection.Service,
	validate *validator.Validate,
) {
	api := dashboardApi{
		cacheSvc: cacheSvc,
		selSvc:   selSvc,
		validate: validate,
	}

	ag := g.Group("", jwt)
	for _, res := range dashboardResources {
		ag.GET("/"+res.name, api.list(res))
	}

	ag.GET("/selection", api.retrieveSelection)
	ag.PUT("/selection", api.updateSelection)
	ag.POST("/session/logout", api.logout)
	ag.GET("/cache/stats", api.cacheStats)
}

// Handlers

func (api *dashboardApi) list(res resource) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var req ListRequest
		if err := req.Bind(ctx, api.validate); err != nil {
			return errors.Wrap(err, "binding to ListRequest")
		}
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}

		reqCtx := ctx.Request().Context()
		limit := req.Limit
		if limit == 0 {
			limit = table.DefaultLimit
		}
		pg := table.NewPagination(limit)

		src := table.NewSource(api.cacheSvc, table.Config{
			Endpoint:      res.endpoint,
			DefaultParams: res.defaults,
			CacheOptions: cache.Options{
				TTL:                  res.ttl,
				StaleWhileRevalidate: res.swr,
				Scope:                api.scopeFor(ctx, claims),
				Token:                getContextToken(ctx),
			},
			Pagination: pg,
		})

		if filters := req.Filters(); len(filters) > 0 {
			// no auto-load: just merge the filters (page resets to 0)
			if err = src.UpdateFilters(reqCtx, filters); err != nil {
				return errors.Wrap(err, "updating filters")
			}
		}
		pg.SetPage(req.Page)

		if err = src.Load(reqCtx, req.Refresh); err != nil {
			return errors.Wrapf(err, "loading %s", res.name)
		}

		state := src.State()
		return ctx.JSON(http.StatusOK, ListResponse{Data: state.Items, Pagination: src.Meta()})
	}
}

// scopeFor resolves the caller's cache scope: the persisted selection when one
// exists, the token claims otherwise.
func (api *dashboardApi) scopeFor(ctx echo.Context, claims *Claims) cache.Scope {
	if sel, err := api.selSvc.Get(ctx.Request().Context(), claims.Subject); err == nil {
		scope := sel.Scope()
		if scope.Role == "" {
			scope.Role = claims.Role
		}
		return scope
	}
	return cache.Scope{UserID: claims.Subject, Role: claims.Role}
}

func (api *dashboardApi) retrieveSelection(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	sel, err := api.selSvc.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if err == selection.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting selection")
	}
	return ctx.JSON(http.StatusOK, sel)
}

func (api *dashboardApi) updateSelection(ctx echo.Context) error {
	var data selection.UpdateSelection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSelection")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sel, err := api.selSvc.Set(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "setting selection")
	}
	return ctx.JSON(http.StatusOK, sel)
}

// logout drops the caller's persisted context, then empties the store and the
// pending registrations together so nothing in flight resolves into the next
// session.
func (api *dashboardApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err = api.selSvc.Clear(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "clearing selection")
	}
	api.cacheSvc.Reset()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *dashboardApi) cacheStats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.cacheSvc.Stats())
}
