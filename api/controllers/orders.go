package controllers

import (
	"html/template"
	"net/http"

	"github.com/meatshare/orderbook-backend/api/responses"
	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/internal/orders"
	"github.com/meatshare/orderbook-backend/pkg/enums"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

func formTitle(channel enums.Channel) string {
	if channel == enums.ChannelSeasonal {
		return "Qurbani Order Form"
	}
	return "Order Form"
}

func formPath(channel enums.Channel) string {
	if channel == enums.ChannelSeasonal {
		return "/qurbani_order"
	}
	return "/"
}

func submitPath(channel enums.Channel) string {
	if channel == enums.ChannelSeasonal {
		return "/submit_qurbani_order"
	}
	return "/submit_order"
}

func dashboardTitle(channel enums.Channel) string {
	if channel == enums.ChannelSeasonal {
		return "Qurbani Dashboard"
	}
	return "Dashboard"
}

func dashboardPath(channel enums.Channel) string {
	if channel == enums.ChannelSeasonal {
		return "/qurbani_dashboard"
	}
	return "/dashboard"
}

type orderFormData struct {
	Title   string
	Action  string
	ShowPIN bool
	Entries []catalog.Entry
}

// OrderForm renders the public order form with effective prices.
func OrderForm(channel enums.Channel, catalogSvc catalog.Service, showPIN bool, tmpl *template.Template, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := catalogSvc.PricedEntries(r.Context(), channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		data := orderFormData{
			Title:   formTitle(channel),
			Action:  submitPath(channel),
			ShowPIN: showPIN,
			Entries: entries,
		}
		if err := tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render order form"))
		}
	}
}

// quantitiesFromForm lifts the per-item inputs out of the posted form. Only
// catalog keys are read; anything else in the form is ignored.
func quantitiesFromForm(entries []catalog.Entry, r *http.Request) map[string]string {
	quantities := make(map[string]string, len(entries))
	for _, entry := range entries {
		quantities[entry.Key] = r.PostFormValue(entry.Key)
	}
	return quantities
}

// SubmitOrder handles a customer submission and bounces back to the form.
func SubmitOrder(channel enums.Channel, ordersSvc orders.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed form"))
			return
		}

		in := orders.SubmitInput{
			Name:       r.PostFormValue("name"),
			Phone:      r.PostFormValue("phone"),
			PIN:        r.PostFormValue("pin"),
			Channel:    channel,
			Quantities: quantitiesFromForm(catalogSvc.Entries(channel), r),
		}

		order, err := ordersSvc.Submit(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithChannel(r.Context(), string(channel))
			ctx = logg.WithFields(ctx, map[string]any{
				"order_id": order.ID.String(),
				"total":    order.TotalPrice.String(),
			})
			logg.Info(ctx, "order.submitted")
		}
		responses.Redirect(w, r, formPath(channel))
	}
}
