package orders

import (
	"context"
	"testing"

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
	"github.com/meatshare/orderbook-backend/pkg/types"
)

func pricesFromEntries(entries []catalog.Entry) types.PriceSnapshot {
	prices := make(types.PriceSnapshot, len(entries))
	for _, e := range entries {
		prices[e.Key] = e.Price
	}
	return prices
}

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubPartyRepo struct {
	byPhone map[string]*models.Party
}

func newStubPartyRepo() *stubPartyRepo {
	return &stubPartyRepo{byPhone: make(map[string]*models.Party)}
}

func (r *stubPartyRepo) WithTx(_ *gorm.DB) parties.Repository { return r }

func (r *stubPartyRepo) FindByPhone(_ context.Context, phone string) (*models.Party, error) {
	party, ok := r.byPhone[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return party, nil
}

func (r *stubPartyRepo) Create(_ context.Context, party *models.Party) (*models.Party, error) {
	party.ID = uuid.New()
	r.byPhone[party.Phone] = party
	return party, nil
}

func (r *stubPartyRepo) SetPINHash(_ context.Context, party *models.Party, hash string) error {
	party.PINHash = &hash
	return nil
}

func (r *stubPartyRepo) UpdateDisplayName(_ context.Context, party *models.Party, name string) error {
	party.DisplayName = name
	return nil
}

type stubOrderRepo struct {
	byID  map[uuid.UUID]*models.Order
	seq   []uuid.UUID
	lines map[uuid.UUID][]models.OrderLine
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		byID:  make(map[uuid.UUID]*models.Order),
		lines: make(map[uuid.UUID][]models.OrderLine),
	}
}

func (r *stubOrderRepo) WithTx(_ *gorm.DB) Repository { return r }

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Lines = r.lines[id]
	return &copied, nil
}

func (r *stubOrderRepo) FindByPartyAndChannel(_ context.Context, partyID uuid.UUID, channel enums.Channel) (*models.Order, error) {
	for _, id := range r.seq {
		order := r.byID[id]
		if order.PartyID == partyID && order.Channel == channel {
			copied := *order
			copied.Lines = r.lines[id]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) ListByChannel(_ context.Context, channel enums.Channel) ([]models.Order, error) {
	var out []models.Order
	for _, id := range r.seq {
		order := r.byID[id]
		if order.Channel != channel {
			continue
		}
		copied := *order
		copied.Lines = r.lines[id]
		out = append(out, copied)
	}
	return out, nil
}

func (r *stubOrderRepo) ListConfirmedByChannel(ctx context.Context, channel enums.Channel) ([]models.Order, error) {
	all, _ := r.ListByChannel(ctx, channel)
	var out []models.Order
	for _, order := range all {
		if order.Status == enums.OrderStatusConfirmed {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *stubOrderRepo) CountByChannel(ctx context.Context, channel enums.Channel) (int64, error) {
	all, _ := r.ListByChannel(ctx, channel)
	return int64(len(all)), nil
}

func (r *stubOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	r.lines[order.ID] = order.Lines
	stored := *order
	stored.Lines = nil
	r.byID[order.ID] = &stored
	r.seq = append(r.seq, order.ID)
	return order, nil
}

func (r *stubOrderRepo) ReplaceContents(_ context.Context, order *models.Order, lines []models.OrderLine) error {
	stored, ok := r.byID[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.ItemsSummary = order.ItemsSummary
	stored.TotalPrice = order.TotalPrice
	stored.PriceSnapshot = order.PriceSnapshot
	r.lines[order.ID] = lines
	return nil
}

func (r *stubOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if order, ok := r.byID[id]; ok {
		order.Status = status
	}
	return nil
}

func (r *stubOrderRepo) UpdateAmountPaid(_ context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if order, ok := r.byID[id]; ok {
		order.AmountPaid = amount
	}
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	delete(r.lines, id)
	for i, seqID := range r.seq {
		if seqID == id {
			r.seq = append(r.seq[:i], r.seq[i+1:]...)
			break
		}
	}
	return nil
}

func (r *stubOrderRepo) DeleteByChannel(ctx context.Context, channel enums.Channel) error {
	all, _ := r.ListByChannel(ctx, channel)
	for _, order := range all {
		_ = r.Delete(ctx, order.ID)
	}
	return nil
}

type stubOverrideRepo struct {
	overrides []models.PriceOverride
}

func (r *stubOverrideRepo) ListOverrides(_ context.Context) ([]models.PriceOverride, error) {
	return r.overrides, nil
}

func (r *stubOverrideRepo) UpsertOverride(_ context.Context, itemKey string, price decimal.Decimal) error {
	for i := range r.overrides {
		if r.overrides[i].ItemKey == itemKey {
			r.overrides[i].Price = price
			return nil
		}
	}
	r.overrides = append(r.overrides, models.PriceOverride{ItemKey: itemKey, Price: price})
	return nil
}

type stubSettingsRepo struct {
	values map[string]decimal.Decimal
}

func (r *stubSettingsRepo) Get(_ context.Context, key string) (*models.Setting, error) {
	value, ok := r.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (r *stubSettingsRepo) Upsert(_ context.Context, key string, value decimal.Decimal) error {
	r.values[key] = value
	return nil
}

type testEnv struct {
	svc        Service
	orderRepo  *stubOrderRepo
	partyRepo  *stubPartyRepo
	overrides  *stubOverrideRepo
	settingsDB *stubSettingsRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	catalogCfg := config.CatalogConfig{
		PriceCow: 4.5, PriceGoat: 9.0, PriceDhOff: 9.0, PriceDhOn: 8.0,
		PriceYh: 17.0, PriceR: 17.0, PriceB: 15.0, PriceDuck: 20.0,
		PriceQuail: 6.0, PriceTurkey: 70.0, PriceEgg: 6.0,
		PriceCowShare: 650.0, PriceGoatFull: 450.0, PriceLamb: 400.0,
	}
	overrides := &stubOverrideRepo{}
	catalogSvc, err := catalog.NewService(catalogCfg, overrides)
	if err != nil {
		t.Fatal(err)
	}

	settingsDB := &stubSettingsRepo{values: make(map[string]decimal.Decimal)}
	settingsSvc, err := settings.NewService(settingsDB)
	if err != nil {
		t.Fatal(err)
	}

	orderRepo := newStubOrderRepo()
	partyRepo := newStubPartyRepo()

	pinCfg := config.PinConfig{
		ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1,
		ArgonSaltLen: 16, ArgonKeyLen: 32,
	}

	svc, err := NewService(stubTx{}, orderRepo, partyRepo, catalogSvc, settingsSvc, pinCfg, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{
		svc:        svc,
		orderRepo:  orderRepo,
		partyRepo:  partyRepo,
		overrides:  overrides,
		settingsDB: settingsDB,
	}
}

func submitInput() SubmitInput {
	return SubmitInput{
		Name:    "Amina Khan",
		Phone:   "5551234567",
		Channel: enums.ChannelRegular,
		Quantities: map[string]string{
			"cow":  "2",
			"goat": "0",
			"egg":  "3",
		},
	}
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	coded := pkgerrors.As(err)
	if coded == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	return coded.Code()
}

func TestSubmitCreatesPartyAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}

	if !order.TotalPrice.Equal(decimal.NewFromFloat(27.0)) {
		t.Fatalf("total = %s, want 27", order.TotalPrice)
	}
	if got, want := order.ItemsSummary, "Cow (lbs): 2 lb, Egg (Dozen): 3 dozen"; got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if price, ok := order.PriceSnapshot.Price("cow"); !ok || !price.Equal(decimal.NewFromFloat(4.5)) {
		t.Fatalf("snapshot cow price = %s, ok = %v", price, ok)
	}

	party, err := env.partyRepo.FindByPhone(ctx, "5551234567")
	if err != nil {
		t.Fatal(err)
	}
	if party.DisplayName != "Amina Khan" {
		t.Fatalf("party name = %q", party.DisplayName)
	}
}

func TestSubmitReplacesExistingOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Confirm(ctx, first.ID); err != nil {
		t.Fatal(err)
	}

	in := submitInput()
	in.Quantities = map[string]string{"egg": "1"}
	second, err := env.svc.Submit(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Fatalf("resubmission created a new order: %s vs %s", second.ID, first.ID)
	}
	if len(env.orderRepo.seq) != 1 {
		t.Fatalf("order count = %d, want 1", len(env.orderRepo.seq))
	}
	stored, err := env.svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.TotalPrice.Equal(decimal.NewFromFloat(6.0)) {
		t.Fatalf("total = %s, want 6", stored.TotalPrice)
	}
	if stored.Status != enums.OrderStatusConfirmed {
		t.Fatalf("resubmission dropped confirmation, status = %s", stored.Status)
	}
	if len(stored.Lines) != 1 || stored.Lines[0].ItemKey != "egg" {
		t.Fatalf("lines not replaced: %+v", stored.Lines)
	}
}

func TestSubmitChannelsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Submit(ctx, submitInput()); err != nil {
		t.Fatal(err)
	}
	seasonal := SubmitInput{
		Name:       "Amina Khan",
		Phone:      "5551234567",
		Channel:    enums.ChannelSeasonal,
		Quantities: map[string]string{"cow_share": "1/2"},
	}
	order, err := env.svc.Submit(ctx, seasonal)
	if err != nil {
		t.Fatal(err)
	}
	if !order.TotalPrice.Equal(decimal.NewFromFloat(325.0)) {
		t.Fatalf("seasonal total = %s, want 325", order.TotalPrice)
	}
	if len(env.orderRepo.seq) != 2 {
		t.Fatalf("order count = %d, want one per channel", len(env.orderRepo.seq))
	}
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"short phone", func(in *SubmitInput) { in.Phone = "555123456" }},
		{"alpha phone", func(in *SubmitInput) { in.Phone = "555123456a" }},
		{"empty name", func(in *SubmitInput) { in.Name = "  " }},
		{"short pin", func(in *SubmitInput) { in.PIN = "123" }},
		{"alpha pin", func(in *SubmitInput) { in.PIN = "12ab" }},
		{"bad channel", func(in *SubmitInput) { in.Channel = enums.Channel("weekly") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := submitInput()
			tt.mutate(&in)
			_, err := env.svc.Submit(ctx, in)
			if code := errCode(t, err); code != pkgerrors.CodeValidation {
				t.Fatalf("code = %s, want %s", code, pkgerrors.CodeValidation)
			}
		})
	}
	if len(env.orderRepo.seq) != 0 {
		t.Fatalf("invalid submissions persisted %d orders", len(env.orderRepo.seq))
	}
}

func TestSubmitPinAdoptionAndVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := submitInput()
	in.PIN = "1234"
	first, err := env.svc.Submit(ctx, in)
	if err != nil {
		t.Fatal(err)
	}

	party, _ := env.partyRepo.FindByPhone(ctx, "5551234567")
	if party.PINHash == nil {
		t.Fatal("first submission did not adopt the PIN")
	}

	wrong := submitInput()
	wrong.PIN = "9999"
	wrong.Quantities = map[string]string{"egg": "1"}
	_, err = env.svc.Submit(ctx, wrong)
	if code := errCode(t, err); code != pkgerrors.CodeForbidden {
		t.Fatalf("code = %s, want %s", code, pkgerrors.CodeForbidden)
	}

	missing := submitInput()
	missing.Quantities = map[string]string{"egg": "1"}
	_, err = env.svc.Submit(ctx, missing)
	if code := errCode(t, err); code != pkgerrors.CodeForbidden {
		t.Fatalf("code = %s, want %s", code, pkgerrors.CodeForbidden)
	}

	stored, err := env.svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.TotalPrice.Equal(decimal.NewFromFloat(27.0)) {
		t.Fatalf("rejected submission mutated the order: total = %s", stored.TotalPrice)
	}

	right := submitInput()
	right.PIN = "1234"
	right.Quantities = map[string]string{"egg": "1"}
	if _, err := env.svc.Submit(ctx, right); err != nil {
		t.Fatal(err)
	}
}

func TestSubmitRequirePinFlag(t *testing.T) {
	env := newTestEnv(t)
	svc, err := NewService(stubTx{}, env.orderRepo, env.partyRepo, mustCatalog(t, env.overrides), mustSettings(t, env.settingsDB), config.PinConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Submit(context.Background(), submitInput())
	if code := errCode(t, err); code != pkgerrors.CodeValidation {
		t.Fatalf("code = %s, want %s", code, pkgerrors.CodeValidation)
	}
}

func TestConfirmIdempotentAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}

	if err := env.svc.Confirm(ctx, order.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Confirm(ctx, order.ID); err != nil {
		t.Fatalf("second confirm errored: %v", err)
	}
	stored, _ := env.svc.Get(ctx, order.ID)
	if stored.Status != enums.OrderStatusConfirmed {
		t.Fatalf("status = %s", stored.Status)
	}

	err = env.svc.Confirm(ctx, uuid.New())
	if code := errCode(t, err); code != pkgerrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", code, pkgerrors.CodeNotFound)
	}
}

func TestUpdatePaymentLenient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}

	if err := env.svc.UpdatePayment(ctx, order.ID, "25.50"); err != nil {
		t.Fatal(err)
	}
	stored, _ := env.svc.Get(ctx, order.ID)
	if !stored.AmountPaid.Equal(decimal.NewFromFloat(25.5)) {
		t.Fatalf("amount paid = %s, want 25.5", stored.AmountPaid)
	}

	for _, raw := range []string{"abc", "-5", "  ", ""} {
		if err := env.svc.UpdatePayment(ctx, order.ID, raw); err != nil {
			t.Fatalf("UpdatePayment(%q) errored: %v", raw, err)
		}
	}
	stored, _ = env.svc.Get(ctx, order.ID)
	if !stored.AmountPaid.Equal(decimal.NewFromFloat(25.5)) {
		t.Fatalf("bad input changed amount paid to %s", stored.AmountPaid)
	}

	err = env.svc.UpdatePayment(ctx, uuid.New(), "10")
	if code := errCode(t, err); code != pkgerrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", code, pkgerrors.CodeNotFound)
	}
}

func TestApplyEditRepricesAgainstSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}

	// Raise the live price after submission; the edit must still use the
	// rate the customer submitted under.
	if err := env.overrides.UpsertOverride(ctx, "cow", decimal.NewFromFloat(10.0)); err != nil {
		t.Fatal(err)
	}

	edited, err := env.svc.ApplyEdit(ctx, order.ID, EditInput{
		Quantities: map[string]string{"cow": "4"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !edited.TotalPrice.Equal(decimal.NewFromFloat(18.0)) {
		t.Fatalf("total = %s, want 18 (4 x 4.5)", edited.TotalPrice)
	}
	if got, want := edited.ItemsSummary, "Cow (lbs): 4 lb"; got != want {
		t.Fatalf("summary = %q, want %q", got, want)
	}
}

func TestQuantitiesFromLinesAndLegacySummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	stored, _ := env.svc.Get(ctx, order.ID)

	quantities := env.svc.Quantities(ctx, stored)
	if quantities["cow"] != "2" || quantities["egg"] != "3" {
		t.Fatalf("quantities = %v", quantities)
	}

	// A row written before structured lines existed has only the summary.
	legacy := &models.Order{
		Channel:      enums.ChannelRegular,
		ItemsSummary: "Cow (lbs): 2 lb, Egg (Dozen): 3 dozen",
	}
	quantities = env.svc.Quantities(ctx, legacy)
	if quantities["cow"] != "2" || quantities["egg"] != "3" {
		t.Fatalf("legacy quantities = %v", quantities)
	}
}

func TestDashboardSplitsSharedCost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.svc.Submit(ctx, submitInput()); err != nil {
		t.Fatal(err)
	}
	other := submitInput()
	other.Phone = "5559876543"
	other.Name = "Bilal Raza"
	other.Quantities = map[string]string{"egg": "1"}
	if _, err := env.svc.Submit(ctx, other); err != nil {
		t.Fatal(err)
	}

	env.settingsDB.values[models.SettingKeySharedCost] = decimal.NewFromInt(100)

	dash, err := env.svc.DashboardFor(ctx, enums.ChannelRegular)
	if err != nil {
		t.Fatal(err)
	}
	if len(dash.Orders) != 2 {
		t.Fatalf("orders = %d, want 2", len(dash.Orders))
	}
	if !dash.PerOrder.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("per order share = %s, want 50", dash.PerOrder)
	}
	if !dash.Orders[0].TotalWithFee.Equal(decimal.NewFromFloat(77.0)) {
		t.Fatalf("first order total with fee = %s, want 77", dash.Orders[0].TotalWithFee)
	}
	if !dash.GrandTotal.Equal(decimal.NewFromFloat(133.0)) {
		t.Fatalf("grand total = %s, want 133", dash.GrandTotal)
	}

	seasonal, err := env.svc.DashboardFor(ctx, enums.ChannelSeasonal)
	if err != nil {
		t.Fatal(err)
	}
	if !seasonal.PerOrder.IsZero() {
		t.Fatalf("seasonal channel picked up the shared cost: %s", seasonal.PerOrder)
	}
}

func TestDeleteAndClearChannel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order, err := env.svc.Submit(ctx, submitInput())
	if err != nil {
		t.Fatal(err)
	}
	if err := env.svc.Delete(ctx, order.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.Get(ctx, order.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("deleted order still readable: %v", err)
	}
	err = env.svc.Delete(ctx, order.ID)
	if code := errCode(t, err); code != pkgerrors.CodeNotFound {
		t.Fatalf("code = %s, want %s", code, pkgerrors.CodeNotFound)
	}

	if _, err := env.svc.Submit(ctx, submitInput()); err != nil {
		t.Fatal(err)
	}
	if err := env.svc.ClearChannel(ctx, enums.ChannelRegular); err != nil {
		t.Fatal(err)
	}
	dash, err := env.svc.DashboardFor(ctx, enums.ChannelRegular)
	if err != nil {
		t.Fatal(err)
	}
	if len(dash.Orders) != 0 {
		t.Fatalf("clear left %d orders", len(dash.Orders))
	}
}

func mustCatalog(t *testing.T, repo catalog.Repository) catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(config.CatalogConfig{PriceCow: 4.5, PriceEgg: 6.0}, repo)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}

func mustSettings(t *testing.T, repo settings.Repository) settings.Service {
	t.Helper()
	svc, err := settings.NewService(repo)
	if err != nil {
		t.Fatal(err)
	}
	return svc
}
