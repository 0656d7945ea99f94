package postgresrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/kirastore/backend/internal/dal/postgres"
	"github.com/kirastore/backend/internal/service/models/orderitem"
	"github.com/shopspring/decimal"
)

var itemColumns = []string{
	"id",
	"order_id",
	"product_id",
	"name",
	"price",
	"quantity",
	"size",
	"color",
	"image_url",
	"created_at",
}

// OrderItemDal represents the order item data access layer model.
type OrderItemDal struct {
	Id        int64
	OrderId   int64
	ProductId int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
	Size      sql.NullString
	Color     sql.NullString
	ImageUrl  sql.NullString
	CreatedAt time.Time
}

// ToModel converts OrderItemDal to the service layer OrderItem model.
func (i *OrderItemDal) ToModel() orderitem.OrderItem {
	return orderitem.OrderItem{
		ID:        i.Id,
		OrderID:   i.OrderId,
		ProductID: i.ProductId,
		Name:      i.Name,
		Price:     i.Price,
		Quantity:  i.Quantity,
		Size:      i.Size.String,
		Color:     i.Color.String,
		ImageURL:  i.ImageUrl.String,
		CreatedAt: i.CreatedAt,
	}
}

type PostgresOrderItemRepository struct {
	conn postgres.Querier
}

func NewPostgresOrderItemRepository(conn postgres.Querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts the items of an order and returns them with IDs.
func (r *PostgresOrderItemRepository) BulkInsert(
	ctx context.Context,
	items []orderitem.OrderItem,
) ([]orderitem.OrderItem, error) {
	if len(items) == 0 {
		return []orderitem.OrderItem{}, nil
	}

	builder := sq.Insert("order_items").
		Columns(itemColumns[1:]...).
		Suffix("RETURNING " + "id").
		PlaceholderFormat(sq.Dollar)

	for _, item := range items {
		builder = builder.Values(
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Price,
			item.Quantity,
			sql.NullString{String: item.Size, Valid: item.Size != ""},
			sql.NullString{String: item.Color, Valid: item.Color != ""},
			sql.NullString{String: item.ImageURL, Valid: item.ImageURL != ""},
			item.CreatedAt,
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to bulk insert order items: %w", err)
	}
	defer rows.Close()

	result := make([]orderitem.OrderItem, 0, len(items))
	i := 0
	for rows.Next() {
		item := items[i]
		if err := rows.Scan(&item.ID); err != nil {
			return nil, fmt.Errorf("failed to scan order item id: %w", err)
		}
		result = append(result, item)
		i++
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Query retrieves order items based on filter criteria.
func (r *PostgresOrderItemRepository) Query(
	ctx context.Context,
	filter *orderitem.QueryOrderItemsModel,
) ([]orderitem.OrderItem, error) {
	builder := sq.Select(itemColumns...).
		From("order_items").
		PlaceholderFormat(sq.Dollar)

	if len(filter.OrderIds) > 0 {
		builder = builder.Where(sq.Eq{"order_id": filter.OrderIds})
	}
	builder = builder.OrderBy("id ASC")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var dal OrderItemDal
		err := rows.Scan(
			&dal.Id,
			&dal.OrderId,
			&dal.ProductId,
			&dal.Name,
			&dal.Price,
			&dal.Quantity,
			&dal.Size,
			&dal.Color,
			&dal.ImageUrl,
			&dal.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
