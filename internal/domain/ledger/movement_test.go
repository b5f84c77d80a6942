package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/ledger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Entrega exitosa con costo 15.00 y cobro 50.00: el transportista nos
// debe 35.00 (movimiento neto -35.00).
func TestNetMovement_EntregaExitosa(t *testing.T) {
	net, err := ledger.NetMovement(entity.MovementKindSuccessfulDelivery, dec("15.00"), dec("50.00"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("-35.00")), "net = %s", net)
}

func TestNetMovement_EntregaExitosaSinCobro(t *testing.T) {
	net, err := ledger.NetMovement(entity.MovementKindSuccessfulDelivery, dec("15.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("15.00")))
}

// Las entregas fallidas nunca se facturan: movimiento neto 0 aun con costo.
func TestNetMovement_EntregaFallida(t *testing.T) {
	net, err := ledger.NetMovement(entity.MovementKindFailedDelivery, dec("15.00"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, net.IsZero())
}

func TestNetMovement_PagoAlTransportista(t *testing.T) {
	net, err := ledger.NetMovement(entity.MovementKindCarrierPayment, decimal.Zero, decimal.Zero, dec("120.50"))
	require.NoError(t, err)
	assert.True(t, net.Equal(dec("-120.50")))
}

func TestNetMovement_TipoDesconocido(t *testing.T) {
	_, err := ledger.NetMovement("ajuste", decimal.Zero, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestChained(t *testing.T) {
	m := &entity.CarrierMovement{
		BalanceBefore: dec("10.00"),
		NetMovement:   dec("-35.00"),
		BalanceAfter:  dec("-25.00"),
	}
	assert.True(t, ledger.Chained(m))

	m.BalanceAfter = dec("-25.01")
	assert.False(t, ledger.Chained(m))
}
