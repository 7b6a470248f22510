package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/meatshare/orderbook-backend/internal/catalog"
	"github.com/meatshare/orderbook-backend/internal/parties"
	"github.com/meatshare/orderbook-backend/internal/settings"
	"github.com/meatshare/orderbook-backend/pkg/config"
	"github.com/meatshare/orderbook-backend/pkg/db/models"
	"github.com/meatshare/orderbook-backend/pkg/enums"
	pkgerrors "github.com/meatshare/orderbook-backend/pkg/errors"
	"github.com/meatshare/orderbook-backend/pkg/security"
)

// TxRunner executes fn inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Dashboard is everything the admin dashboard renders for one channel.
type Dashboard struct {
	Orders     []OrderView
	SharedCost decimal.Decimal
	PerOrder   decimal.Decimal
	GrandTotal decimal.Decimal
	TotalPaid  decimal.Decimal
	TotalOwed  decimal.Decimal
}

// Service owns the order lifecycle: submission, confirmation, admin edits,
// payments, and teardown.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Quantities(ctx context.Context, order *models.Order) map[string]string
	ApplyEdit(ctx context.Context, id uuid.UUID, in EditInput) (*models.Order, error)
	Confirm(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearChannel(ctx context.Context, channel enums.Channel) error
	UpdatePayment(ctx context.Context, id uuid.UUID, raw string) error
	DashboardFor(ctx context.Context, channel enums.Channel) (*Dashboard, error)
	ConfirmedOrders(ctx context.Context, channel enums.Channel) ([]models.Order, error)
}

type service struct {
	tx         TxRunner
	orders     Repository
	parties    parties.Repository
	catalog    catalog.Service
	settings   settings.Service
	pinCfg     config.PinConfig
	requirePin bool
	validate   *validator.Validate
}

// NewService wires the order service.
func NewService(
	tx TxRunner,
	orderRepo Repository,
	partyRepo parties.Repository,
	catalogSvc catalog.Service,
	settingsSvc settings.Service,
	pinCfg config.PinConfig,
	requirePin bool,
	validate *validator.Validate,
) (Service, error) {
	if tx == nil || orderRepo == nil || partyRepo == nil || catalogSvc == nil || settingsSvc == nil {
		return nil, fmt.Errorf("orders service missing dependencies")
	}
	if validate == nil {
		validate = validator.New()
	}
	return &service{
		tx:         tx,
		orders:     orderRepo,
		parties:    partyRepo,
		catalog:    catalogSvc,
		settings:   settingsSvc,
		pinCfg:     pinCfg,
		requirePin: requirePin,
		validate:   validate,
	}, nil
}

// Submit prices the form, then upserts the party and their single order for
// the channel in one transaction. Resubmission replaces the order contents
// in place and keeps its confirmation status.
func (s *service) Submit(ctx context.Context, in SubmitInput) (*models.Order, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.PIN = strings.TrimSpace(in.PIN)

	if err := s.validateSubmit(in); err != nil {
		return nil, err
	}

	prices, err := s.catalog.CurrentPrices(ctx, in.Channel)
	if err != nil {
		return nil, err
	}
	priced := priceQuantities(s.catalog.Entries(in.Channel), prices, in.Quantities)

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		partyRepo := s.parties.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		party, err := s.upsertParty(ctx, partyRepo, in)
		if err != nil {
			return err
		}

		existing, err := orderRepo.FindByPartyAndChannel(ctx, party.ID, in.Channel)
		switch {
		case err == nil:
			existing.ItemsSummary = priced.Summary
			existing.TotalPrice = priced.Total
			existing.PriceSnapshot = prices
			if err := orderRepo.ReplaceContents(ctx, existing, priced.Lines); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order contents")
			}
			order = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			created := &models.Order{
				PartyID:       party.ID,
				Channel:       in.Channel,
				Status:        enums.OrderStatusPending,
				ItemsSummary:  priced.Summary,
				TotalPrice:    priced.Total,
				AmountPaid:    decimal.Zero,
				PriceSnapshot: prices,
				Lines:         priced.Lines,
			}
			order, err = orderRepo.Create(ctx, created)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}
			return nil
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
		}
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) validateSubmit(in SubmitInput) error {
	if !in.Channel.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order channel")
	}
	if s.requirePin && in.PIN == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "PIN must be exactly 4 digits")
	}
	if err := s.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			switch fieldErrs[0].Field() {
			case "Phone":
				return pkgerrors.New(pkgerrors.CodeValidation, "phone number must be exactly 10 digits")
			case "PIN":
				return pkgerrors.New(pkgerrors.CodeValidation, "PIN must be exactly 4 digits")
			case "Name":
				return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
			}
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submission")
	}
	return nil
}

// upsertParty finds or creates the party for the phone, refreshing the
// display name and enforcing the PIN rules: a stored PIN must be matched,
// a first-time PIN is adopted.
func (s *service) upsertParty(ctx context.Context, repo parties.Repository, in SubmitInput) (*models.Party, error) {
	party, err := repo.FindByPhone(ctx, in.Phone)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		var hash *string
		if in.PIN != "" {
			h, err := security.HashPIN(in.PIN, s.pinCfg)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
			}
			hash = &h
		}
		created, err := repo.Create(ctx, &models.Party{
			DisplayName: in.Name,
			Phone:       in.Phone,
			PINHash:     hash,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create party")
		}
		return created, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find party")
	}

	if party.PINHash != nil {
		if in.PIN == "" {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "incorrect PIN for this phone number")
		}
		ok, err := security.VerifyPIN(in.PIN, *party.PINHash)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify pin")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "incorrect PIN for this phone number")
		}
	} else if in.PIN != "" {
		hash, err := security.HashPIN(in.PIN, s.pinCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash pin")
		}
		if err := repo.SetPINHash(ctx, party, hash); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pin hash")
		}
	}

	if party.DisplayName != in.Name {
		if err := repo.UpdateDisplayName(ctx, party, in.Name); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update display name")
		}
	}
	return party, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return order, nil
}

// Quantities reconstructs the edit form values for an order. Structured lines
// are authoritative; the summary text is only parsed for rows that predate
// them.
func (s *service) Quantities(_ context.Context, order *models.Order) map[string]string {
	entries := s.catalog.Entries(order.Channel)

	if len(order.Lines) > 0 {
		quantities := make(map[string]string, len(order.Lines))
		for _, line := range order.Lines {
			quantities[line.ItemKey] = line.Quantity.String()
		}
		return quantities
	}

	parsed := ParseItemsSummary(entries, order.ItemsSummary)
	quantities := make(map[string]string, len(parsed))
	for key, qty := range parsed {
		quantities[key] = qty.String()
	}
	return quantities
}

// ApplyEdit reprices the order from the admin's quantities. The order's price
// snapshot keeps the rates the customer submitted under; current prices are
// used only when no snapshot was stored.
func (s *service) ApplyEdit(ctx context.Context, id uuid.UUID, in EditInput) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prices := order.PriceSnapshot
	if len(prices) == 0 {
		prices, err = s.catalog.CurrentPrices(ctx, order.Channel)
		if err != nil {
			return nil, err
		}
	}

	priced := priceQuantities(s.catalog.Entries(order.Channel), prices, in.Quantities)
	order.ItemsSummary = priced.Summary
	order.TotalPrice = priced.Total
	order.PriceSnapshot = prices

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orders.WithTx(tx).ReplaceContents(ctx, order, priced.Lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order contents")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Lines = priced.Lines
	return order, nil
}

// Confirm marks the order confirmed. Confirming an already confirmed order
// is a no-op.
func (s *service) Confirm(ctx context.Context, id uuid.UUID) error {
	order, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if order.Status == enums.OrderStatusConfirmed {
		return nil
	}
	if err := s.orders.UpdateStatus(ctx, id, enums.OrderStatusConfirmed); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

func (s *service) ClearChannel(ctx context.Context, channel enums.Channel) error {
	if err := s.orders.DeleteByChannel(ctx, channel); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear orders")
	}
	return nil
}

// UpdatePayment records the paid amount. Blank, non-numeric, and negative
// values are ignored without error so a stray keystroke on the dashboard
// never wipes a recorded payment.
func (s *service) UpdatePayment(ctx context.Context, id uuid.UUID, raw string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.Sign() < 0 {
		return nil
	}
	if err := s.orders.UpdateAmountPaid(ctx, id, amount); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
	}
	return nil
}

// DashboardFor lists the channel's orders with payment balances. The shared
// lump cost applies to the regular channel only and is split evenly across
// its orders.
func (s *service) DashboardFor(ctx context.Context, channel enums.Channel) (*Dashboard, error) {
	orders, err := s.orders.ListByChannel(ctx, channel)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	sharedCost := decimal.Zero
	if channel == enums.ChannelRegular {
		sharedCost, err = s.settings.SharedCost(ctx)
		if err != nil {
			return nil, err
		}
	}
	perOrder := settings.SharedPerOrder(sharedCost, len(orders))

	dash := &Dashboard{
		Orders:     make([]OrderView, 0, len(orders)),
		SharedCost: sharedCost,
		PerOrder:   perOrder,
		GrandTotal: decimal.Zero,
		TotalPaid:  decimal.Zero,
		TotalOwed:  decimal.Zero,
	}
	for _, order := range orders {
		totalWithFee := order.TotalPrice.Add(perOrder)
		view := OrderView{
			Order:        order,
			ShareOfCost:  perOrder,
			TotalWithFee: totalWithFee,
			Balance:      totalWithFee.Sub(order.AmountPaid),
		}
		dash.Orders = append(dash.Orders, view)
		dash.GrandTotal = dash.GrandTotal.Add(totalWithFee)
		dash.TotalPaid = dash.TotalPaid.Add(order.AmountPaid)
		dash.TotalOwed = dash.TotalOwed.Add(view.Balance)
	}
	return dash, nil
}

func (s *service) ConfirmedOrders(ctx context.Context, channel enums.Channel) ([]models.Order, error) {
	orders, err := s.orders.ListConfirmedByChannel(ctx, channel)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list confirmed orders")
	}
	return orders, nil
}
