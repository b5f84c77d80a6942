package delivery_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdelivery "github.com/jcastano/entregas-api/internal/application/delivery"
	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de repositorios y colaboradores
// ──────────────────────────────────────────────────────────────────────────────

type fakeDeliveryRepo struct {
	byID map[string]*entity.Delivery
}

func newFakeDeliveryRepo() *fakeDeliveryRepo {
	return &fakeDeliveryRepo{byID: map[string]*entity.Delivery{}}
}

func (f *fakeDeliveryRepo) Create(_ context.Context, d *entity.Delivery) error {
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDeliveryRepo) Update(_ context.Context, d *entity.Delivery) error {
	f.byID[d.ID] = d
	return nil
}

func (f *fakeDeliveryRepo) SetDistributionExpenseID(_ context.Context, deliveryID, expenseID string) error {
	if d, ok := f.byID[deliveryID]; ok {
		d.DistributionExpenseID = &expenseID
	}
	return nil
}

func (f *fakeDeliveryRepo) GetByID(_ context.Context, id string) (*entity.Delivery, error) {
	return f.byID[id], nil
}

func (f *fakeDeliveryRepo) GetBySaleID(_ context.Context, saleID string) ([]*entity.Delivery, error) {
	var out []*entity.Delivery
	for _, d := range f.byID {
		if d.SaleID == saleID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeliveryRepo) CountBySaleID(ctx context.Context, saleID string) (int, error) {
	ds, _ := f.GetBySaleID(ctx, saleID)
	return len(ds), nil
}

func (f *fakeDeliveryRepo) ListCodesByYear(_ context.Context, year int) ([]string, error) {
	var out []string
	prefix := "ENT-" + strconv.Itoa(year) + "-"
	for _, d := range f.byID {
		if len(d.Code) > len(prefix) && d.Code[:len(prefix)] == prefix {
			out = append(out, d.Code)
		}
	}
	return out, nil
}

type fakeSaleRepo struct {
	sale         *entity.Sale
	statusWrites []string
}

func (f *fakeSaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	if f.sale == nil || f.sale.ID != id {
		return nil, nil
	}
	return f.sale, nil
}

func (f *fakeSaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeSaleRepo) UpdateStatus(_ context.Context, _, status, _ string) error {
	f.statusWrites = append(f.statusWrites, status)
	f.sale.Status = status
	return nil
}

type fakeCarrierRepo struct {
	carrier *entity.Carrier
}

func (f *fakeCarrierRepo) GetByID(_ context.Context, id string) (*entity.Carrier, error) {
	if f.carrier == nil || f.carrier.ID != id {
		return nil, nil
	}
	return f.carrier, nil
}

func (f *fakeCarrierRepo) List(_ context.Context) ([]*entity.Carrier, error) { return nil, nil }

// fakeCounterRepo reproduce el contrato del contador atómico: arranca en
// seed+1 la primera vez y luego incrementa.
type fakeCounterRepo struct {
	values map[string]int
}

func (f *fakeCounterRepo) Next(_ context.Context, scope string, seed int) (int, error) {
	if f.values == nil {
		f.values = map[string]int{}
	}
	if _, ok := f.values[scope]; !ok {
		f.values[scope] = seed
	}
	f.values[scope]++
	return f.values[scope], nil
}

type unitCall struct {
	unitIDs []string
	reason  string
}

type fakeUnits struct {
	confirmed  [][]string
	released   []unitCall
	confirmErr error
}

func (f *fakeUnits) ConfirmSale(_ context.Context, unitIDs []string, _, _ string, _ decimal.Decimal, _ string) (appdelivery.GatewayResult, error) {
	if f.confirmErr != nil {
		return appdelivery.GatewayResult{Failed: len(unitIDs)}, f.confirmErr
	}
	f.confirmed = append(f.confirmed, unitIDs)
	return appdelivery.GatewayResult{Succeeded: len(unitIDs)}, nil
}

func (f *fakeUnits) Release(_ context.Context, unitIDs []string, reason, _ string) (appdelivery.GatewayResult, error) {
	f.released = append(f.released, unitCall{unitIDs: unitIDs, reason: reason})
	return appdelivery.GatewayResult{Succeeded: len(unitIDs)}, nil
}

type fakeExpenses struct {
	created []appdelivery.DistributionExpenseInput
	err     error
}

func (f *fakeExpenses) CreateDistributionExpense(_ context.Context, in appdelivery.DistributionExpenseInput, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, in)
	return fmt.Sprintf("exp-%d", len(f.created)), nil
}

type metricCall struct {
	success  bool
	duration int
	cost     decimal.Decimal
	district string
}

type fakeMetrics struct {
	calls []metricCall
}

func (f *fakeMetrics) RecordDelivery(_ context.Context, _ string, success bool, durationMinutes int, cost decimal.Decimal, district string) error {
	f.calls = append(f.calls, metricCall{success, durationMinutes, cost, district})
	return nil
}

type fakeLedger struct {
	appended []appdelivery.LedgerMovementInput
	err      error
}

func (f *fakeLedger) AppendDeliveryMovement(_ context.Context, in appdelivery.LedgerMovementInput, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, in)
	return "mov-1", nil
}

type fakeReconciler struct {
	calls []string
}

func (f *fakeReconciler) Reconcile(_ context.Context, saleID, _ string) error {
	f.calls = append(f.calls, saleID)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del caso de uso con todos los fakes
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc         *appdelivery.UseCase
	deliveries *fakeDeliveryRepo
	sales      *fakeSaleRepo
	units      *fakeUnits
	expenses   *fakeExpenses
	metrics    *fakeMetrics
	ledger     *fakeLedger
	reconciler *fakeReconciler
}

func newFixture() *fixture {
	f := &fixture{
		deliveries: newFakeDeliveryRepo(),
		sales: &fakeSaleRepo{sale: &entity.Sale{
			ID:           "sale-1",
			Number:       "V-2024-031",
			CustomerName: "Marta Quispe",
			Status:       entity.SaleStatusPending,
			Items: []entity.SaleItem{
				{ProductID: "p1", SKU: "ZAP-40", Brand: "Rider", Name: "Zapatilla urbana 40", Quantity: 6, UnitPrice: decimal.NewFromInt(90)},
				{ProductID: "p2", SKU: "ZAP-42", Brand: "Rider", Name: "Zapatilla urbana 42", Quantity: 4, UnitPrice: decimal.NewFromInt(95)},
			},
		}},
		units:      &fakeUnits{},
		expenses:   &fakeExpenses{},
		metrics:    &fakeMetrics{},
		ledger:     &fakeLedger{},
		reconciler: &fakeReconciler{},
	}
	carriers := &fakeCarrierRepo{carrier: &entity.Carrier{
		ID: "car-1", Name: "Julio Ruiz", Type: entity.CarrierTypeInternal, Phone: "987654321",
	}}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	f.uc = appdelivery.NewUseCase(
		f.deliveries, f.sales, carriers, &fakeCounterRepo{},
		f.units, f.expenses, f.metrics, f.ledger, f.reconciler, log,
	)
	return f
}

func scheduleInput() appdelivery.ScheduleInput {
	return appdelivery.ScheduleInput{
		SaleID:    "sale-1",
		CarrierID: "car-1",
		Items: []appdelivery.ScheduleItemInput{
			{ProductID: "p1", Quantity: 6, ReservedUnitIDs: []string{"u1", "u2", "u3", "u4", "u5", "u6"}},
		},
		Address:     "Av. Los Próceres 1540",
		District:    "Surco",
		ScheduledAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		CarrierCost: decimal.NewFromInt(15),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Schedule
// ──────────────────────────────────────────────────────────────────────────────

func TestSchedule_CreaEntregaConSnapshots(t *testing.T) {
	f := newFixture()

	d, err := f.uc.Schedule(context.Background(), scheduleInput(), "user-1")
	require.NoError(t, err)

	year := strconv.Itoa(time.Now().Year())
	assert.Equal(t, "ENT-"+year+"-001", d.Code)
	assert.Equal(t, 1, d.DeliveryIndex)
	assert.Equal(t, entity.DeliveryStatusScheduled, d.Status)

	// Snapshot del transportista y del cliente
	assert.Equal(t, "Julio Ruiz", d.CarrierName)
	assert.Equal(t, "Marta Quispe", d.CustomerName)

	// Snapshot de producto tomado de la línea de la venta
	require.Len(t, d.Items, 1)
	assert.Equal(t, "ZAP-40", d.Items[0].SKU)
	assert.True(t, d.Items[0].Subtotal.Equal(decimal.NewFromInt(540))) // 6 × 90
	assert.Equal(t, 6, d.ItemCount)
	assert.True(t, d.SubtotalAmount.Equal(decimal.NewFromInt(540)))

	// La venta entra en reparto
	assert.Equal(t, entity.SaleStatusInDelivery, f.sales.sale.Status)
}

func TestSchedule_IncrementaIndiceYCodigo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	in := scheduleInput()
	in.Items = []appdelivery.ScheduleItemInput{{ProductID: "p2", Quantity: 4, ReservedUnitIDs: []string{"u7", "u8", "u9", "u10"}}}
	d2, err := f.uc.Schedule(ctx, in, "user-1")
	require.NoError(t, err)

	year := strconv.Itoa(time.Now().Year())
	assert.Equal(t, 2, d2.DeliveryIndex)
	assert.Equal(t, "ENT-"+year+"-002", d2.Code)
}

func TestSchedule_TransportistaNoExiste(t *testing.T) {
	f := newFixture()
	in := scheduleInput()
	in.CarrierID = "car-fantasma"

	_, err := f.uc.Schedule(context.Background(), in, "user-1")
	assert.ErrorIs(t, err, domain.ErrCarrierNotFound)
}

func TestSchedule_ProductoFueraDeLaVenta(t *testing.T) {
	f := newFixture()
	in := scheduleInput()
	in.Items = []appdelivery.ScheduleItemInput{{ProductID: "p-ajeno", Quantity: 1}}

	_, err := f.uc.Schedule(context.Background(), in, "user-1")
	assert.ErrorIs(t, err, domain.ErrProductNotInSale)
}

func TestSchedule_VentaNoExiste(t *testing.T) {
	f := newFixture()
	in := scheduleInput()
	in.SaleID = "sale-fantasma"

	_, err := f.uc.Schedule(context.Background(), in, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// MarkEnRoute
// ──────────────────────────────────────────────────────────────────────────────

func TestMarkEnRoute(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	d, err = f.uc.MarkEnRoute(ctx, d.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusEnRoute, d.Status)
	require.NotNil(t, d.DepartedAt)

	// Segunda salida rechazada
	_, err = f.uc.MarkEnRoute(ctx, d.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordOutcome: camino de éxito
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordOutcome_Exito_SecuenciaCompleta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)
	d, err = f.uc.MarkEnRoute(ctx, d.ID, "user-1")
	require.NoError(t, err)

	collected := decimal.NewFromInt(540)
	deliveredAt := d.DepartedAt.Add(45 * time.Minute)
	d, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{
		DeliveryID:      d.ID,
		Success:         true,
		DeliveredAt:     &deliveredAt,
		AmountCollected: &collected,
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusDelivered, d.Status)
	require.NotNil(t, d.DeliveryDurationMinutes)
	assert.Equal(t, 45, *d.DeliveryDurationMinutes)

	// 1. Unidades confirmadas como vendidas
	require.Len(t, f.units.confirmed, 1)
	assert.Len(t, f.units.confirmed[0], 6)

	// 2. Gasto de distribución creado y guardado en la entrega
	require.Len(t, f.expenses.created, 1)
	assert.True(t, f.expenses.created[0].Cost.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, d.DistributionExpenseID)
	assert.Equal(t, "exp-1", *d.DistributionExpenseID)

	// 3. Movimiento successful_delivery con costo y cobro
	require.Len(t, f.ledger.appended, 1)
	mov := f.ledger.appended[0]
	assert.Equal(t, entity.MovementKindSuccessfulDelivery, mov.Kind)
	assert.True(t, mov.CarrierCost.Equal(decimal.NewFromInt(15)))
	require.NotNil(t, mov.AmountCollected)
	assert.True(t, mov.AmountCollected.Equal(collected))
	assert.Equal(t, "exp-1", mov.ExpenseID)

	// 4. Métrica de éxito con duración y costo
	require.Len(t, f.metrics.calls, 1)
	assert.True(t, f.metrics.calls[0].success)
	assert.Equal(t, 45, f.metrics.calls[0].duration)
	assert.Equal(t, "Surco", f.metrics.calls[0].district)

	// 5. Reconciliación de la venta padre
	assert.Equal(t, []string{"sale-1"}, f.reconciler.calls)
}

// El gasto se crea siempre, incluso con costo 0.
func TestRecordOutcome_Exito_GastoConCostoCero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	in := scheduleInput()
	in.CarrierCost = decimal.Zero
	d, err := f.uc.Schedule(ctx, in, "user-1")
	require.NoError(t, err)

	_, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{DeliveryID: d.ID, Success: true}, "user-1")
	require.NoError(t, err)
	require.Len(t, f.expenses.created, 1)
	assert.True(t, f.expenses.created[0].Cost.IsZero())
}

// Best-effort: un colaborador que falla no revierte el estado delivered ni
// bloquea los pasos siguientes.
func TestRecordOutcome_Exito_ColaboradorFallaNoAborta(t *testing.T) {
	f := newFixture()
	f.units.confirmErr = errors.New("inventario caído")
	f.expenses.err = errors.New("gastos caído")
	ctx := context.Background()

	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	d, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{DeliveryID: d.ID, Success: true}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusDelivered, d.Status)
	assert.Nil(t, d.DistributionExpenseID) // gasto no registrado: visible en el seguimiento
	assert.Len(t, f.ledger.appended, 1)    // el libro se asienta igual
	assert.Len(t, f.metrics.calls, 1)
	assert.Equal(t, []string{"sale-1"}, f.reconciler.calls)
}

// Brecha de idempotencia cerrada: segundo resultado sobre la misma entrega
// rechazado con error de transición.
func TestRecordOutcome_DobleInvocacionRechazada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	_, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{DeliveryID: d.ID, Success: true}, "user-1")
	require.NoError(t, err)

	_, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{DeliveryID: d.ID, Success: true}, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Sin dobles efectos
	assert.Len(t, f.units.confirmed, 1)
	assert.Len(t, f.expenses.created, 1)
	assert.Len(t, f.ledger.appended, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// RecordOutcome: camino de fallo
// ──────────────────────────────────────────────────────────────────────────────

func TestRecordOutcome_FalloSinReprogramar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	desc := "nadie atendió en dos visitas"
	d, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{
		DeliveryID:         d.ID,
		Success:            false,
		FailureReason:      entity.FailureReasonAbsent,
		FailureDescription: &desc,
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusFailed, d.Status)

	// Unidades liberadas con el motivo
	require.Len(t, f.units.released, 1)
	assert.Len(t, f.units.released[0].unitIDs, 6)
	assert.Equal(t, "entrega fallida: absent", f.units.released[0].reason)

	// Movimiento failed_delivery: costo 0, nunca se factura
	require.Len(t, f.ledger.appended, 1)
	assert.Equal(t, entity.MovementKindFailedDelivery, f.ledger.appended[0].Kind)
	assert.True(t, f.ledger.appended[0].CarrierCost.IsZero())

	// Métrica de fallo, sin reconciliación
	require.Len(t, f.metrics.calls, 1)
	assert.False(t, f.metrics.calls[0].success)
	assert.Empty(t, f.reconciler.calls)
}

func TestRecordOutcome_FalloConReprogramacion(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	newDate := time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)
	d, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{
		DeliveryID:     d.ID,
		Success:        false,
		Reschedule:     true,
		NewScheduledAt: &newDate,
		FailureReason:  entity.FailureReasonNotFound,
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusRescheduled, d.Status)
	assert.Equal(t, newDate, d.ScheduledAt)

	// La reserva se conserva: nada liberado, y tampoco se asienta en el libro
	assert.Empty(t, f.units.released)
	assert.Empty(t, f.ledger.appended)

	// Una entrega reprogramada admite un nuevo resultado
	_, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{DeliveryID: d.ID, Success: true}, "user-1")
	assert.NoError(t, err)
}

func TestRecordOutcome_MotivoInvalido(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	_, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{
		DeliveryID:    d.ID,
		Success:       false,
		FailureReason: "se pinchó la llanta",
	}, "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_LiberaUnidades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)

	d, err = f.uc.Cancel(ctx, d.ID, "cliente pidió anular", "user-1")
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusCancelled, d.Status)
	require.NotNil(t, d.CancelReason)
	assert.Equal(t, "cliente pidió anular", *d.CancelReason)

	require.Len(t, f.units.released, 1)
	assert.Equal(t, "entrega cancelada: cliente pidió anular", f.units.released[0].reason)

	// Cancelación no toca el libro del transportista
	assert.Empty(t, f.ledger.appended)
}

func TestCancel_RechazadaEnEstadoTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	d, err := f.uc.Schedule(ctx, scheduleInput(), "user-1")
	require.NoError(t, err)
	_, err = f.uc.RecordOutcome(ctx, appdelivery.OutcomeInput{DeliveryID: d.ID, Success: true}, "user-1")
	require.NoError(t, err)

	_, err = f.uc.Cancel(ctx, d.ID, "tarde", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
