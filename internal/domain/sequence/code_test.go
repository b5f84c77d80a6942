package sequence_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jcastano/entregas-api/internal/domain/sequence"
)

func TestNext_SaltaHuecos(t *testing.T) {
	existing := []string{"ENT-2024-001", "ENT-2024-007"}
	// El siguiente es máximo+1, no se rellenan huecos
	assert.Equal(t, "ENT-2024-008", sequence.Next("ENT", "2024", existing))
}

func TestNext_SerieVacia(t *testing.T) {
	assert.Equal(t, "ENT-2024-001", sequence.Next("ENT", "2024", nil))
	assert.Equal(t, "GD-001", sequence.Next("GD", "", nil))
}

func TestNext_IgnoraOtrasSeries(t *testing.T) {
	existing := []string{"ENT-2023-099", "GD-2024-050", "ENT-2024-002", "basura"}
	assert.Equal(t, "ENT-2024-003", sequence.Next("ENT", "2024", existing))
}

func TestFormat_Padding(t *testing.T) {
	assert.Equal(t, "ENT-2024-003", sequence.Format("ENT", "2024", 3))
	assert.Equal(t, "ENT-2024-042", sequence.Format("ENT", "2024", 42))
	// Más de 3 dígitos conserva el número completo
	assert.Equal(t, "ENT-2024-1205", sequence.Format("ENT", "2024", 1205))
}

func TestSuffix(t *testing.T) {
	n, ok := sequence.Suffix("ENT", "2024", "ENT-2024-017")
	assert.True(t, ok)
	assert.Equal(t, 17, n)

	_, ok = sequence.Suffix("ENT", "2024", "ENT-2023-017")
	assert.False(t, ok)

	_, ok = sequence.Suffix("ENT", "2024", "ENT-2024-XYZ")
	assert.False(t, ok)
}

func TestScope(t *testing.T) {
	assert.Equal(t, "ENT-2024", sequence.Scope("ENT", "2024"))
	assert.Equal(t, "GD", sequence.Scope("GD", ""))
}
