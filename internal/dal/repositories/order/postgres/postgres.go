package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/kirastore/backend/internal/dal/postgres"
	"github.com/kirastore/backend/internal/service/models/order"
	"github.com/kirastore/backend/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no order matches the lookup.
var ErrNotFound = errors.New("order not found")

var orderColumns = []string{
	"id",
	"order_number",
	"first_name",
	"last_name",
	"email",
	"phone",
	"dni",
	"shipping_method",
	"shipping_street",
	"shipping_city",
	"shipping_province",
	"shipping_postal_code",
	"shipping_notes",
	"subtotal",
	"shipping_cost",
	"discount",
	"total",
	"status",
	"payment_status",
	"payment_method",
	"tracking_code",
	"expires_at",
	"paid_at",
	"shipped_at",
	"delivered_at",
	"created_at",
	"updated_at",
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id                 int64
	OrderNumber        string
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	Dni                sql.NullString
	ShippingMethod     string
	ShippingStreet     sql.NullString
	ShippingCity       sql.NullString
	ShippingProvince   sql.NullString
	ShippingPostalCode sql.NullString
	ShippingNotes      sql.NullString
	Subtotal           decimal.Decimal
	ShippingCost       decimal.Decimal
	Discount           decimal.Decimal
	Total              decimal.Decimal
	Status             string
	PaymentStatus      string
	PaymentMethod      string
	TrackingCode       sql.NullString
	ExpiresAt          sql.NullTime
	PaidAt             sql.NullTime
	ShippedAt          sql.NullTime
	DeliveredAt        sql.NullTime
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(o.PaymentStatus)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := order.ParsePaymentMethod(o.PaymentMethod)
	if err != nil {
		return nil, err
	}

	return &order.Order{
		ID:          o.Id,
		OrderNumber: o.OrderNumber,
		Customer: order.Customer{
			FirstName: o.FirstName,
			LastName:  o.LastName,
			Email:     o.Email,
			Phone:     o.Phone,
			DNI:       o.Dni.String,
		},
		Shipping: order.Shipping{
			Method:     o.ShippingMethod,
			Street:     o.ShippingStreet.String,
			City:       o.ShippingCity.String,
			Province:   o.ShippingProvince.String,
			PostalCode: o.ShippingPostalCode.String,
			Notes:      o.ShippingNotes.String,
		},
		Subtotal:      o.Subtotal,
		ShippingCost:  o.ShippingCost,
		Discount:      o.Discount,
		Total:         o.Total,
		Status:        status,
		PaymentStatus: paymentStatus,
		PaymentMethod: paymentMethod,
		TrackingCode:  o.TrackingCode.String,
		ExpiresAt:     nullTimePtr(o.ExpiresAt),
		PaidAt:        nullTimePtr(o.PaidAt),
		ShippedAt:     nullTimePtr(o.ShippedAt),
		DeliveredAt:   nullTimePtr(o.DeliveredAt),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		OrderItems:    []orderitem.OrderItem{}, // Populated separately
	}, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time

	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *t, Valid: true}
}

type PostgresOrderRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderRepository(conn postgres.Querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

// Insert persists an order and returns it with the generated ID.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o order.Order) (order.Order, error) {
	query, args, err := sq.Insert("orders").
		Columns(orderColumns[1:]...).
		Values(
			o.OrderNumber,
			o.Customer.FirstName,
			o.Customer.LastName,
			o.Customer.Email,
			o.Customer.Phone,
			nullString(o.Customer.DNI),
			o.Shipping.Method,
			nullString(o.Shipping.Street),
			nullString(o.Shipping.City),
			nullString(o.Shipping.Province),
			nullString(o.Shipping.PostalCode),
			nullString(o.Shipping.Notes),
			o.Subtotal,
			o.ShippingCost,
			o.Discount,
			o.Total,
			o.Status,
			o.PaymentStatus,
			o.PaymentMethod,
			nullString(o.TrackingCode),
			nullTime(o.ExpiresAt),
			nullTime(o.PaidAt),
			nullTime(o.ShippedAt),
			nullTime(o.DeliveredAt),
			o.CreatedAt,
			o.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&o.ID); err != nil {
		return order.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}

	return o, nil
}

// GetByNumber retrieves one order by its external order number.
func (r *PostgresOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"order_number": orderNumber}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(scanTargets(&dal)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return dal.ToModel()
}

// Patch applies a typed partial update to one order.
func (r *PostgresOrderRepository) Patch(
	ctx context.Context,
	orderNumber string,
	patch *order.PatchOrderModel,
) error {
	if patch.IsEmpty() {
		return nil
	}

	builder := sq.Update("orders").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"order_number": orderNumber}).
		PlaceholderFormat(sq.Dollar)

	if patch.Status != nil {
		builder = builder.Set("status", *patch.Status)
	}
	if patch.PaymentStatus != nil {
		builder = builder.Set("payment_status", *patch.PaymentStatus)
	}
	if patch.TrackingCode != nil {
		builder = builder.Set("tracking_code", nullString(*patch.TrackingCode))
	}
	if patch.PaidAt != nil {
		builder = builder.Set("paid_at", *patch.PaidAt)
	}
	if patch.ShippedAt != nil {
		builder = builder.Set("shipped_at", *patch.ShippedAt)
	}
	if patch.DeliveredAt != nil {
		builder = builder.Set("delivered_at", *patch.DeliveredAt)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Query retrieves orders based on filter criteria.
func (r *PostgresOrderRepository) Query(ctx context.Context, filter *order.QueryOrdersModel) ([]order.Order, error) {
	builder := sq.Select(orderColumns...).
		From("orders").
		PlaceholderFormat(sq.Dollar)

	if len(filter.Ids) > 0 {
		builder = builder.Where(sq.Eq{"id": filter.Ids})
	}
	if len(filter.OrderNumbers) > 0 {
		builder = builder.Where(sq.Eq{"order_number": filter.OrderNumbers})
	}
	if len(filter.Statuses) > 0 {
		builder = builder.Where(sq.Eq{"status": filter.Statuses})
	}
	if len(filter.PaymentStatuses) > 0 {
		builder = builder.Where(sq.Eq{"payment_status": filter.PaymentStatuses})
	}
	if filter.CustomerEmail != "" {
		builder = builder.Where(sq.Eq{"email": filter.CustomerEmail})
	}
	builder = builder.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		var dal OrderDal
		if err := rows.Scan(scanTargets(&dal)...); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

func scanTargets(dal *OrderDal) []any {
	return []any{
		&dal.Id,
		&dal.OrderNumber,
		&dal.FirstName,
		&dal.LastName,
		&dal.Email,
		&dal.Phone,
		&dal.Dni,
		&dal.ShippingMethod,
		&dal.ShippingStreet,
		&dal.ShippingCity,
		&dal.ShippingProvince,
		&dal.ShippingPostalCode,
		&dal.ShippingNotes,
		&dal.Subtotal,
		&dal.ShippingCost,
		&dal.Discount,
		&dal.Total,
		&dal.Status,
		&dal.PaymentStatus,
		&dal.PaymentMethod,
		&dal.TrackingCode,
		&dal.ExpiresAt,
		&dal.PaidAt,
		&dal.ShippedAt,
		&dal.DeliveredAt,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	}
}
