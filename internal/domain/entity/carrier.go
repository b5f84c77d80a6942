package entity

import "time"

// Tipos de transportista.
const (
	CarrierTypeInternal = "internal" // personal propio
	CarrierTypeExternal = "external" // courier externo
)

// Carrier es el transportista (personal interno o courier externo).
// Directorio de solo lectura para este subsistema; la entrega toma un
// snapshot de estos campos al programarse.
type Carrier struct {
	ID                  string
	Name                string
	Type                string
	Phone               string
	ExternalCourierKind string // moto, van, empresa de courier, etc.
	Active              bool
	CreatedAt           time.Time
}
