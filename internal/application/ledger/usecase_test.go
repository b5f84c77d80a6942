package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastano/entregas-api/internal/application/ledger"
	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	domledger "github.com/jcastano/entregas-api/internal/domain/ledger"
	"github.com/jcastano/entregas-api/internal/domain/repository"
	"github.com/jcastano/entregas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria: el libro como slice append-only
// ──────────────────────────────────────────────────────────────────────────────

type fakeMovementRepo struct {
	movements []*entity.CarrierMovement
}

func (f *fakeMovementRepo) Create(_ context.Context, m *entity.CarrierMovement) error {
	f.movements = append(f.movements, m)
	return nil
}

func (f *fakeMovementRepo) GetLatestByCarrier(_ context.Context, carrierID string) (*entity.CarrierMovement, error) {
	for i := len(f.movements) - 1; i >= 0; i-- {
		if f.movements[i].CarrierID == carrierID {
			return f.movements[i], nil
		}
	}
	return nil, nil
}

func (f *fakeMovementRepo) ListByCarrier(_ context.Context, carrierID string, limit int) ([]*entity.CarrierMovement, error) {
	var out []*entity.CarrierMovement
	for i := len(f.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if f.movements[i].CarrierID == carrierID {
			out = append(out, f.movements[i])
		}
	}
	return out, nil
}

type fakeLedgerTx struct {
	movements *fakeMovementRepo
}

func (f *fakeLedgerTx) RunSerialized(ctx context.Context, _ string, fn func(repository.CarrierMovementRepository) error) error {
	return fn(f.movements)
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

func (f *fakeCarrierRepo) List(_ context.Context) ([]*entity.Carrier, error) {
	if f.carrier == nil {
		return nil, nil
	}
	return []*entity.Carrier{f.carrier}, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newUseCase(movs *fakeMovementRepo, carriers *fakeCarrierRepo) *ledger.UseCase {
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return ledger.NewUseCase(&fakeLedgerTx{movs}, movs, carriers, log, 0)
}

// ──────────────────────────────────────────────────────────────────────────────
// Append: encadenamiento de saldos
// ──────────────────────────────────────────────────────────────────────────────

// Transportista con saldo 0; entrega exitosa con costo 15.00 y cobro 50.00:
// movimiento neto -35.00, saldo final -35.00 (el transportista nos debe 35).
func TestAppend_EntregaExitosaConCobro(t *testing.T) {
	movs := &fakeMovementRepo{}
	uc := newUseCase(movs, &fakeCarrierRepo{})

	collected := dec("50.00")
	m, err := uc.Append(context.Background(), ledger.AppendInput{
		CarrierID:       "car-1",
		CarrierName:     "Julio Ruiz",
		Kind:            entity.MovementKindSuccessfulDelivery,
		DeliveryID:      "del-1",
		DeliveryCode:    "ENT-2024-001",
		CarrierCost:     dec("15.00"),
		AmountCollected: &collected,
	}, "user-1")
	require.NoError(t, err)

	assert.True(t, m.BalanceBefore.IsZero())
	assert.True(t, m.NetMovement.Equal(dec("-35.00")), "net = %s", m.NetMovement)
	assert.True(t, m.BalanceAfter.Equal(dec("-35.00")))
	assert.True(t, domledger.Chained(m))
}

// Entrega fallida: movimiento neto 0, el saldo no cambia.
func TestAppend_EntregaFallidaNoMueveSaldo(t *testing.T) {
	movs := &fakeMovementRepo{}
	uc := newUseCase(movs, &fakeCarrierRepo{})

	_, err := uc.Append(context.Background(), ledger.AppendInput{
		CarrierID:   "car-1",
		CarrierName: "Julio Ruiz",
		Kind:        entity.MovementKindSuccessfulDelivery,
		CarrierCost: dec("20.00"),
	}, "user-1")
	require.NoError(t, err)

	m, err := uc.Append(context.Background(), ledger.AppendInput{
		CarrierID:   "car-1",
		CarrierName: "Julio Ruiz",
		Kind:        entity.MovementKindFailedDelivery,
		CarrierCost: decimal.Zero,
	}, "user-1")
	require.NoError(t, err)

	assert.True(t, m.NetMovement.IsZero())
	assert.True(t, m.BalanceBefore.Equal(dec("20.00")))
	assert.True(t, m.BalanceAfter.Equal(dec("20.00")))
}

// Invariante de encadenamiento: entry[i+1].balanceBefore == entry[i].balanceAfter.
func TestAppend_CadenaDeSaldos(t *testing.T) {
	movs := &fakeMovementRepo{}
	uc := newUseCase(movs, &fakeCarrierRepo{carrier: &entity.Carrier{ID: "car-1", Name: "Julio Ruiz"}})
	ctx := context.Background()

	costs := []string{"15.00", "12.50", "18.00"}
	for _, c := range costs {
		_, err := uc.Append(ctx, ledger.AppendInput{
			CarrierID:   "car-1",
			CarrierName: "Julio Ruiz",
			Kind:        entity.MovementKindSuccessfulDelivery,
			CarrierCost: dec(c),
		}, "user-1")
		require.NoError(t, err)
	}
	_, err := uc.RecordPayment(ctx, "car-1", dec("30.00"), "pago semanal", "user-1")
	require.NoError(t, err)

	require.Len(t, movs.movements, 4)
	for i, m := range movs.movements {
		assert.True(t, domledger.Chained(m), "movimiento %d", i)
		if i > 0 {
			assert.True(t, m.BalanceBefore.Equal(movs.movements[i-1].BalanceAfter), "movimiento %d", i)
		}
	}
	// 15 + 12.50 + 18 - 30 = 15.50
	assert.True(t, movs.movements[3].BalanceAfter.Equal(dec("15.50")))
}

func TestRecordPayment_Validaciones(t *testing.T) {
	movs := &fakeMovementRepo{}
	uc := newUseCase(movs, &fakeCarrierRepo{carrier: &entity.Carrier{ID: "car-1", Name: "Julio Ruiz"}})
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, "car-1", decimal.Zero, "", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordPayment(ctx, "car-desconocido", dec("10.00"), "", "user-1")
	assert.ErrorIs(t, err, domain.ErrCarrierNotFound)
}

func TestCurrentBalance_SinMovimientos(t *testing.T) {
	uc := newUseCase(&fakeMovementRepo{}, &fakeCarrierRepo{})
	balance, err := uc.CurrentBalance(context.Background(), "car-1")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// AccountSummary: fold sobre los movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestAccountSummary(t *testing.T) {
	movs := &fakeMovementRepo{}
	uc := newUseCase(movs, &fakeCarrierRepo{carrier: &entity.Carrier{ID: "car-1", Name: "Julio Ruiz"}})
	ctx := context.Background()

	collected := dec("40.00")
	_, err := uc.Append(ctx, ledger.AppendInput{
		CarrierID: "car-1", CarrierName: "Julio Ruiz",
		Kind:        entity.MovementKindSuccessfulDelivery,
		CarrierCost: dec("15.00"), AmountCollected: &collected,
	}, "user-1")
	require.NoError(t, err)

	_, err = uc.Append(ctx, ledger.AppendInput{
		CarrierID: "car-1", CarrierName: "Julio Ruiz",
		Kind: entity.MovementKindFailedDelivery,
	}, "user-1")
	require.NoError(t, err)

	_, err = uc.RecordPayment(ctx, "car-1", dec("10.00"), "", "user-1")
	require.NoError(t, err)

	s, err := uc.AccountSummary(ctx, "car-1", 50)
	require.NoError(t, err)

	assert.Equal(t, "Julio Ruiz", s.CarrierName)
	assert.Equal(t, 1, s.SuccessfulDeliveries)
	assert.Equal(t, 1, s.FailedDeliveries)
	assert.True(t, s.TotalCost.Equal(dec("15.00")))
	assert.True(t, s.TotalCollected.Equal(dec("40.00")))
	assert.True(t, s.TotalPaid.Equal(dec("10.00")))
	// 15 - 40 - 10 = -35
	assert.True(t, s.Balance.Equal(dec("-35.00")), "balance = %s", s.Balance)
	assert.Len(t, s.Movements, 3)
}

func TestAccountSummary_TransportistaNoExiste(t *testing.T) {
	uc := newUseCase(&fakeMovementRepo{}, &fakeCarrierRepo{})
	_, err := uc.AccountSummary(context.Background(), "car-x", 10)
	assert.ErrorIs(t, err, domain.ErrCarrierNotFound)
}
