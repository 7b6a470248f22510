package controllers

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/meatshare/orderbook-backend/api/responses"
	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/internal/orders"
	"github.com/meatshare/orderbook-backend/internal/settings"
	"github.com/meatshare/orderbook-backend/pkg/enums"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

type dashboardData struct {
	Title          string
	Path           string
	Dash           *orders.Dashboard
	Prices         []catalog.Entry
	ShowSharedCost bool
	ShowExport     bool
	ClearAction    string
}

// Dashboard renders the admin's order ledger for a channel.
func Dashboard(channel enums.Channel, ordersSvc orders.Service, catalogSvc catalog.Service, tmpl *template.Template, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dash, err := ordersSvc.DashboardFor(r.Context(), channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		prices, err := catalogSvc.PricedEntries(r.Context(), channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data := dashboardData{
			Title:          dashboardTitle(channel),
			Path:           dashboardPath(channel),
			Dash:           dash,
			Prices:         prices,
			ShowSharedCost: channel == enums.ChannelRegular,
			ShowExport:     channel == enums.ChannelRegular,
		}
		if channel == enums.ChannelRegular {
			data.ClearAction = "/clear_orders"
		}
		if err := tmpl.ExecuteTemplate(w, "dashboard.html", data); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render dashboard"))
		}
	}
}

// SetSharedCost stores the lump cost split across regular orders.
func SetSharedCost(settingsSvc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.PostFormValue("shared_cost"))
		value, err := decimal.NewFromString(raw)
		if err != nil || value.Sign() < 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "shared cost must be a non-negative number"))
			return
		}
		if err := settingsSvc.SetSharedCost(r.Context(), value); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.Redirect(w, r, "/dashboard")
	}
}
