package postgresrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/kirastore/backend/internal/dal/postgres"
	"github.com/kirastore/backend/internal/service/models/address"
)

// ErrNotFound is returned when no address matches the lookup.
var ErrNotFound = errors.New("address not found")

var addressColumns = []string{
	"id",
	"user_id",
	"street",
	"city",
	"province",
	"postal_code",
	"notes",
	"is_default",
	"created_at",
	"updated_at",
}

// AddressDal represents the address data access layer model.
type AddressDal struct {
	Id         int64
	UserId     int64
	Street     string
	City       string
	Province   string
	PostalCode string
	Notes      sql.NullString
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ToModel converts AddressDal to the service layer Address model.
func (a *AddressDal) ToModel() address.Address {
	return address.Address{
		ID:         a.Id,
		UserID:     a.UserId,
		Street:     a.Street,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Notes:      a.Notes.String,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

type PostgresAddressRepository struct {
	conn postgres.Querier
}

func NewPostgresAddressRepository(conn postgres.Querier) *PostgresAddressRepository {
	return &PostgresAddressRepository{
		conn: conn,
	}
}

// Insert persists an address and returns it with the generated ID.
func (r *PostgresAddressRepository) Insert(ctx context.Context, a address.Address) (address.Address, error) {
	query, args, err := sq.Insert("addresses").
		Columns(addressColumns[1:]...).
		Values(
			a.UserID,
			a.Street,
			a.City,
			a.Province,
			a.PostalCode,
			sql.NullString{String: a.Notes, Valid: a.Notes != ""},
			a.IsDefault,
			a.CreatedAt,
			a.UpdatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return address.Address{}, fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRowContext(ctx, query, args...).Scan(&a.ID); err != nil {
		return address.Address{}, fmt.Errorf("failed to insert address: %w", err)
	}

	return a, nil
}

// GetByID retrieves one address.
func (r *PostgresAddressRepository) GetByID(ctx context.Context, id int64) (*address.Address, error) {
	query, args, err := sq.Select(addressColumns...).
		From("addresses").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal AddressDal
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(scanTargets(&dal)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	model := dal.ToModel()

	return &model, nil
}

// ListByUser retrieves all addresses of one user, newest first.
func (r *PostgresAddressRepository) ListByUser(ctx context.Context, userID int64) ([]address.Address, error) {
	query, args, err := sq.Select(addressColumns...).
		From("addresses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var result []address.Address
	for rows.Next() {
		var dal AddressDal
		if err := rows.Scan(scanTargets(&dal)...); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		result = append(result, dal.ToModel())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Patch applies a typed partial update to one address.
func (r *PostgresAddressRepository) Patch(
	ctx context.Context,
	id int64,
	patch *address.PatchAddressModel,
) error {
	if patch.IsEmpty() {
		return nil
	}

	builder := sq.Update("addresses").
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar)

	if patch.Street != nil {
		builder = builder.Set("street", *patch.Street)
	}
	if patch.City != nil {
		builder = builder.Set("city", *patch.City)
	}
	if patch.Province != nil {
		builder = builder.Set("province", *patch.Province)
	}
	if patch.PostalCode != nil {
		builder = builder.Set("postal_code", *patch.PostalCode)
	}
	if patch.Notes != nil {
		builder = builder.Set("notes", sql.NullString{String: *patch.Notes, Valid: *patch.Notes != ""})
	}
	if patch.IsDefault != nil {
		builder = builder.Set("is_default", *patch.IsDefault)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch address: %w", err)
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

// Delete removes one address.
func (r *PostgresAddressRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("addresses").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
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

// ClearDefault unsets the default flag on every address of the user.
func (r *PostgresAddressRepository) ClearDefault(ctx context.Context, userID int64) error {
	query, args, err := sq.Update("addresses").
		Set("is_default", false).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"user_id": userID, "is_default": true}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}

	return nil
}

// SetDefault sets the default flag on one address.
func (r *PostgresAddressRepository) SetDefault(ctx context.Context, id int64) error {
	query, args, err := sq.Update("addresses").
		Set("is_default", true).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to set default address: %w", err)
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

// MostRecent retrieves the most recently created address of the user.
func (r *PostgresAddressRepository) MostRecent(ctx context.Context, userID int64) (*address.Address, error) {
	query, args, err := sq.Select(addressColumns...).
		From("addresses").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal AddressDal
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(scanTargets(&dal)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get most recent address: %w", err)
	}

	model := dal.ToModel()

	return &model, nil
}

func scanTargets(dal *AddressDal) []any {
	return []any{
		&dal.Id,
		&dal.UserId,
		&dal.Street,
		&dal.City,
		&dal.Province,
		&dal.PostalCode,
		&dal.Notes,
		&dal.IsDefault,
		&dal.CreatedAt,
		&dal.UpdatedAt,
	}
}
