// Package delivery contiene las reglas puras de la máquina de estados de
// una entrega. La tabla de transiciones no consulta la base de datos:
// recibe el estado actual y decide si la operación es válida.
package delivery

import "github.com/jcastano/entregas-api/internal/domain/entity"

// outcomeStates son los estados desde los que se puede registrar un
// resultado (éxito o fallo). failed NO está incluido: una entrega fallida
// solo continúa si se optó por reprogramarla en el mismo registro.
var outcomeStates = map[string]bool{
	entity.DeliveryStatusScheduled:   true,
	entity.DeliveryStatusEnRoute:     true,
	entity.DeliveryStatusRescheduled: true,
}

// IsTerminal indica si el estado no admite ninguna transición posterior.
func IsTerminal(status string) bool {
	return status == entity.DeliveryStatusDelivered || status == entity.DeliveryStatusCancelled
}

// CanMarkEnRoute valida la transición scheduled -> en_route.
func CanMarkEnRoute(status string) bool {
	return status == entity.DeliveryStatusScheduled
}

// CanRecordOutcome valida si se puede registrar un resultado desde el
// estado actual. Rechaza delivered, cancelled y failed: esto cierra la
// brecha de doble invocación (doble confirmación de unidades, gasto y
// movimiento de libro duplicados).
func CanRecordOutcome(status string) bool {
	return outcomeStates[status]
}

// CanCancel valida la cancelación: permitida desde cualquier estado no
// terminal, incluido failed.
func CanCancel(status string) bool {
	return !IsTerminal(status)
}

// OutcomeStatus devuelve el estado destino de registrar un resultado.
func OutcomeStatus(success, reschedule bool) string {
	if success {
		return entity.DeliveryStatusDelivered
	}
	if reschedule {
		return entity.DeliveryStatusRescheduled
	}
	return entity.DeliveryStatusFailed
}

// ValidFailureReason indica si el motivo de fallo pertenece al catálogo.
func ValidFailureReason(reason string) bool {
	switch reason {
	case entity.FailureReasonNotFound, entity.FailureReasonAbsent,
		entity.FailureReasonRefused, entity.FailureReasonDamagedProduct,
		entity.FailureReasonPaymentRejected, entity.FailureReasonOther:
		return true
	}
	return false
}
