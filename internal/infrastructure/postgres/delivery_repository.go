package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jcastano/entregas-api/internal/domain"
	"github.com/jcastano/entregas-api/internal/domain/entity"
	"github.com/jcastano/entregas-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

// DeliveryRepo implementación del puerto DeliveryRepository sobre PostgreSQL (usable con pool o tx).
type DeliveryRepo struct {
	q Querier
}

// NewDeliveryRepository construye el adaptador de persistencia para entregas. Pasar pool o tx (Querier).
func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

const deliveryColumns = `
	id, code, sale_id, sale_number, delivery_index, total_deliveries,
	carrier_id, carrier_name, carrier_type, carrier_phone, external_courier_kind,
	customer_name, customer_phone, customer_email, address, district, reference,
	item_count, subtotal_amount,
	collection_pending, amount_to_collect, expected_payment_method,
	carrier_cost, distribution_expense_id,
	status, scheduled_at, departed_at, delivered_at, delivery_duration_minutes,
	failure_reason, failure_description, cancel_reason,
	payment_collected, amount_collected, payment_method_received,
	photo_url, signature_url,
	created_at, updated_at, created_by, updated_by`

// Create persiste la entrega y sus líneas.
func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	query := `
		INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
		        $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32,
		        $33, $34, $35, $36, $37, $38, $39, $40, $41)`
	_, err := r.q.Exec(ctx, query,
		d.ID, d.Code, d.SaleID, d.SaleNumber, d.DeliveryIndex, d.TotalDeliveries,
		d.CarrierID, d.CarrierName, d.CarrierType, d.CarrierPhone, d.ExternalCourierKind,
		d.CustomerName, d.CustomerPhone, d.CustomerEmail, d.Address, d.District, d.Reference,
		d.ItemCount, d.SubtotalAmount,
		d.CollectionPending, d.AmountToCollect, d.ExpectedPaymentMethod,
		d.CarrierCost, d.DistributionExpenseID,
		d.Status, d.ScheduledAt, d.DepartedAt, d.DeliveredAt, d.DeliveryDurationMinutes,
		d.FailureReason, d.FailureDescription, d.CancelReason,
		d.PaymentCollected, d.AmountCollected, d.PaymentMethodReceived,
		d.PhotoURL, d.SignatureURL,
		d.CreatedAt, d.UpdatedAt, d.CreatedBy, d.UpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert delivery: %w", err)
	}

	for _, it := range d.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO delivery_items (id, delivery_id, product_id, sku, brand, name, quantity, reserved_unit_ids, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			it.ID, d.ID, it.ProductID, it.SKU, it.Brand, it.Name,
			it.Quantity, it.ReservedUnitIDs, it.UnitPrice, it.Subtotal,
		)
		if err != nil {
			return fmt.Errorf("insert delivery item: %w", err)
		}
	}
	return nil
}

// Update persiste los campos mutables de la entrega. Las líneas no cambian después de crear.
func (r *DeliveryRepo) Update(ctx context.Context, d *entity.Delivery) error {
	query := `
		UPDATE deliveries SET
			status = $2, scheduled_at = $3, departed_at = $4, delivered_at = $5,
			delivery_duration_minutes = $6, failure_reason = $7, failure_description = $8,
			cancel_reason = $9, payment_collected = $10, amount_collected = $11,
			payment_method_received = $12, photo_url = $13, signature_url = $14,
			updated_at = $15, updated_by = $16
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		d.ID, d.Status, d.ScheduledAt, d.DepartedAt, d.DeliveredAt,
		d.DeliveryDurationMinutes, d.FailureReason, d.FailureDescription,
		d.CancelReason, d.PaymentCollected, d.AmountCollected,
		d.PaymentMethodReceived, d.PhotoURL, d.SignatureURL,
		d.UpdatedAt, d.UpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("update delivery: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetDistributionExpenseID guarda el id del gasto de distribución una vez creado.
func (r *DeliveryRepo) SetDistributionExpenseID(ctx context.Context, deliveryID, expenseID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE deliveries SET distribution_expense_id = $2, updated_at = now() WHERE id = $1`,
		deliveryID, expenseID,
	)
	if err != nil {
		return fmt.Errorf("set distribution expense: %w", err)
	}
	return nil
}

// GetByID obtiene una entrega con sus líneas. nil si no existe.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	d, err := scanDelivery(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Delivery{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// GetBySaleID lista las entregas de una venta, con líneas, por ordinal ascendente.
func (r *DeliveryRepo) GetBySaleID(ctx context.Context, saleID string) ([]*entity.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE sale_id = $1 ORDER BY delivery_index ASC`
	rows, err := r.q.Query(ctx, query, saleID)
	if err != nil {
		return nil, fmt.Errorf("list deliveries by sale: %w", err)
	}
	defer rows.Close()

	var deliveries []*entity.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries by sale: %w", err)
	}
	if err := r.loadItems(ctx, deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// CountBySaleID cuenta las entregas registradas para una venta.
func (r *DeliveryRepo) CountBySaleID(ctx context.Context, saleID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM deliveries WHERE sale_id = $1`, saleID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count deliveries: %w", err)
	}
	return count, nil
}

// ListCodesByYear devuelve los códigos ENT-<año>-NNN existentes para el año dado.
func (r *DeliveryRepo) ListCodesByYear(ctx context.Context, year int) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT code FROM deliveries WHERE code LIKE 'ENT-' || $1::text || '-%'`, year)
	if err != nil {
		return nil, fmt.Errorf("list delivery codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan delivery code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// loadItems carga las líneas de las entregas dadas en una sola consulta.
func (r *DeliveryRepo) loadItems(ctx context.Context, deliveries []*entity.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	ids := make([]string, 0, len(deliveries))
	byID := make(map[string]*entity.Delivery, len(deliveries))
	for _, d := range deliveries {
		ids = append(ids, d.ID)
		byID[d.ID] = d
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, delivery_id, product_id, sku, brand, name, quantity, reserved_unit_ids, unit_price, subtotal
		FROM delivery_items WHERE delivery_id = ANY($1) ORDER BY sku ASC`, ids)
	if err != nil {
		return fmt.Errorf("list delivery items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.DeliveryItem
		if err := rows.Scan(
			&it.ID, &it.DeliveryID, &it.ProductID, &it.SKU, &it.Brand, &it.Name,
			&it.Quantity, &it.ReservedUnitIDs, &it.UnitPrice, &it.Subtotal,
		); err != nil {
			return fmt.Errorf("scan delivery item: %w", err)
		}
		if d, ok := byID[it.DeliveryID]; ok {
			d.Items = append(d.Items, it)
		}
	}
	return rows.Err()
}

// scanDelivery escanea una fila de deliveries en el orden de deliveryColumns.
func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	err := row.Scan(
		&d.ID, &d.Code, &d.SaleID, &d.SaleNumber, &d.DeliveryIndex, &d.TotalDeliveries,
		&d.CarrierID, &d.CarrierName, &d.CarrierType, &d.CarrierPhone, &d.ExternalCourierKind,
		&d.CustomerName, &d.CustomerPhone, &d.CustomerEmail, &d.Address, &d.District, &d.Reference,
		&d.ItemCount, &d.SubtotalAmount,
		&d.CollectionPending, &d.AmountToCollect, &d.ExpectedPaymentMethod,
		&d.CarrierCost, &d.DistributionExpenseID,
		&d.Status, &d.ScheduledAt, &d.DepartedAt, &d.DeliveredAt, &d.DeliveryDurationMinutes,
		&d.FailureReason, &d.FailureDescription, &d.CancelReason,
		&d.PaymentCollected, &d.AmountCollected, &d.PaymentMethodReceived,
		&d.PhotoURL, &d.SignatureURL,
		&d.CreatedAt, &d.UpdatedAt, &d.CreatedBy, &d.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
