// Package sequence genera códigos secuenciales legibles por entidad y año
// (ej. ENT-2024-007, GD-2025-012). Funciones puras sobre los códigos ya
// almacenados; la reserva atómica del consecutivo la hace el repositorio
// de contadores.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
)

// Format construye un código prefix[-scope]-NNN con el sufijo a 3 dígitos
// (números mayores a 999 conservan todos sus dígitos).
func Format(prefix, scope string, n int) string {
	if scope == "" {
		return fmt.Sprintf("%s-%03d", prefix, n)
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, scope, n)
}

// Scope devuelve la clave de alcance del contador (ej. "ENT-2024").
func Scope(prefix, scope string) string {
	if scope == "" {
		return prefix
	}
	return prefix + "-" + scope
}

// Suffix extrae el sufijo numérico de un código que coincida con el
// prefijo y alcance dados. ok=false si el código no pertenece a la serie.
func Suffix(prefix, scope, code string) (int, bool) {
	head := Scope(prefix, scope) + "-"
	if !strings.HasPrefix(code, head) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(code, head))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MaxSuffix devuelve el mayor sufijo numérico entre los códigos existentes
// de la serie. 0 si ninguno coincide.
func MaxSuffix(prefix, scope string, existing []string) int {
	max := 0
	for _, code := range existing {
		if n, ok := Suffix(prefix, scope, code); ok && n > max {
			max = n
		}
	}
	return max
}

// Next devuelve el siguiente código de la serie a partir de los existentes
// (máximo sufijo + 1).
func Next(prefix, scope string, existing []string) string {
	return Format(prefix, scope, MaxSuffix(prefix, scope, existing)+1)
}
