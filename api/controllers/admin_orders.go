package controllers

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meatshare/orderbook-backend/api/responses"
	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/internal/export"
	"github.com/meatshare/orderbook-backend/internal/orders"
	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/enums"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/logger"
)

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
	}
	return id, nil
}

// ConfirmOrder flips an order to confirmed and returns to where the admin
// came from.
func ConfirmOrder(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := ordersSvc.Confirm(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.Redirect(w, r, responses.SafeNext(r.PostFormValue("next")))
	}
}

// ClearOrders wipes every order in the channel.
func ClearOrders(channel enums.Channel, ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ordersSvc.ClearChannel(r.Context(), channel); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithChannel(r.Context(), string(channel)), "orders.cleared")
		}
		responses.Redirect(w, r, dashboardPath(channel))
	}
}

type editFormData struct {
	Order      *models.Order
	Entries    []catalog.Entry
	Quantities map[string]string
	Back       string
}

// EditOrderForm shows the order's quantities for adjustment.
func EditOrderForm(ordersSvc orders.Service, catalogSvc catalog.Service, tmpl *template.Template, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ordersSvc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		data := editFormData{
			Order:      order,
			Entries:    catalogSvc.Entries(order.Channel),
			Quantities: ordersSvc.Quantities(r.Context(), order),
			Back:       dashboardPath(order.Channel),
		}
		if err := tmpl.ExecuteTemplate(w, "edit.html", data); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render edit form"))
		}
	}
}

// EditOrder reprices the order from the posted quantities.
func EditOrder(ordersSvc orders.Service, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ordersSvc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed form"))
			return
		}

		in := orders.EditInput{
			Quantities: quantitiesFromForm(catalogSvc.Entries(order.Channel), r),
		}
		if _, err := ordersSvc.ApplyEdit(r.Context(), id, in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.Redirect(w, r, dashboardPath(order.Channel))
	}
}

// UpdatePrices applies override values from the dashboard price form.
func UpdatePrices(catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed form"))
			return
		}
		values := make(map[string]string, len(r.PostForm))
		for key := range r.PostForm {
			values[key] = r.PostFormValue(key)
		}
		if err := catalogSvc.UpdatePrices(r.Context(), values); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.Redirect(w, r, "/dashboard")
	}
}

// DeleteOrder removes a single order in any state.
func DeleteOrder(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ordersSvc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := ordersSvc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.Redirect(w, r, dashboardPath(order.Channel))
	}
}

// UpdatePayment records the amount paid against an order.
func UpdatePayment(ordersSvc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := ordersSvc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := ordersSvc.UpdatePayment(r.Context(), id, r.PostFormValue("amount_paid")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.Redirect(w, r, dashboardPath(order.Channel))
	}
}

// ExportConfirmedPDF streams the confirmed-orders sheet.
func ExportConfirmedPDF(channel enums.Channel, ordersSvc orders.Service, renderer export.Renderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirmed, err := ordersSvc.ConfirmedOrders(r.Context(), channel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pdf, err := renderer.ConfirmedOrdersPDF("Confirmed Orders", confirmed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePDF(w, "confirmed_orders.pdf", pdf)
	}
}
