package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/invoiceflow/console/internal/api/middleware"
	"github.com/invoiceflow/console/internal/core/i18n"
	"github.com/invoiceflow/console/internal/core/ports"
)

type DashboardHandler struct {
	dashboards ports.DashboardService
	sessions   ports.SessionStore
}

func NewDashboardHandler(dashboards ports.DashboardService, sessions ports.SessionStore) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, sessions: sessions}
}

// language loads the viewer's stored language, defaulting to English.
func (h *DashboardHandler) language(ctx context.Context, sid string) string {
	lang, err := h.sessions.Language(ctx, sid)
	if err != nil {
		return i18n.LangEN
	}
	return i18n.Normalize(lang)
}

// Home renders the public landing page data.
//
// @Summary      Landing page
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       / [get]
func (h *DashboardHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	view, err := h.dashboards.Home(ctx, sid, h.language(ctx, sid))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: view})
}

// Admin renders the admin command center.
//
// @Summary      Admin dashboard
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	view, err := h.dashboards.Admin(ctx, sid, h.language(ctx, sid))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: view})
}

// InvestorMarket renders the investor marketplace.
//
// @Summary      Investor market
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /investor/market [get]
func (h *DashboardHandler) InvestorMarket(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	view, err := h.dashboards.InvestorMarket(ctx, sid, h.language(ctx, sid))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: view})
}

// InvestorPortfolio renders the investor's portfolio page.
//
// @Summary      Investor portfolio
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /investor/portfolio [get]
func (h *DashboardHandler) InvestorPortfolio(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	view, err := h.dashboards.InvestorPortfolio(ctx, sid, h.language(ctx, sid))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: view})
}

// SmeWorkspace renders the SME marketplace page.
//
// @Summary      SME workspace
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /sme/marketplace [get]
func (h *DashboardHandler) SmeWorkspace(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	view, err := h.dashboards.SmeWorkspace(ctx, sid, h.language(ctx, sid))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: view})
}

// SmePortfolio renders the SME's portfolio summary.
//
// @Summary      SME portfolio
// @Tags         dashboards
// @Produce      json
// @Success      200  {object}  dataResponse
// @Router       /sme/portfolio [get]
func (h *DashboardHandler) SmePortfolio(c echo.Context) error {
	ctx := c.Request().Context()
	sid := middleware.SessionID(c)

	view, err := h.dashboards.SmePortfolio(ctx, sid, h.language(ctx, sid))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse{Data: view})
}
