package addresssvc

import (
	"context"
	"errors"
	"time"

	"github.com/kirastore/backend/internal/dal/interfaces/iaddressrepo"
	"github.com/kirastore/backend/internal/dal/postgres"
	addressrepo "github.com/kirastore/backend/internal/dal/repositories/address/postgres"
	"github.com/kirastore/backend/internal/dal/uow"
	"github.com/kirastore/backend/internal/service/models/address"
)

// ErrAddressNotFound is returned when the referenced address does not exist.
var ErrAddressNotFound = errors.New("address not found")

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AddressRepository() iaddressrepo.IAddressRepository
}

// AddressService manages a user's address book. The default-address swap and
// the delete-then-promote path each run inside one transaction, so a
// concurrent reader never observes two defaults or none while one exists.
type AddressService struct {
	pgClient *postgres.Client
	newUOW   func() unitOfWork
	now      func() time.Time
}

// option is a function that configures the AddressService.
type option func(*AddressService)

// MustNewAddressService creates a new AddressService.
func MustNewAddressService(opts ...option) *AddressService {
	s := &AddressService{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the AddressService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *AddressService) {
		s.pgClient = pgClient
	}
}

// WithUnitOfWorkFactory overrides transaction construction, for tests.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory func() unitOfWork) option {
	return func(s *AddressService) {
		s.newUOW = factory
	}
}

// CreateAddress persists a new address. When it is marked default, every
// other default of the user is cleared in the same transaction.
func (s *AddressService) CreateAddress(ctx context.Context, a address.Address) (address.Address, error) {
	now := s.now()
	a.CreatedAt = now
	a.UpdatedAt = now

	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return address.Address{}, err
	}
	defer func() {
		_ = work.Rollback()
	}()

	if a.IsDefault {
		if err := work.AddressRepository().ClearDefault(ctx, a.UserID); err != nil {
			return address.Address{}, err
		}
	}

	inserted, err := work.AddressRepository().Insert(ctx, a)
	if err != nil {
		return address.Address{}, err
	}

	if err := work.Commit(); err != nil {
		return address.Address{}, err
	}

	return inserted, nil
}

// UpdateAddress applies a partial update. Promoting an address to default
// clears the previous default atomically.
func (s *AddressService) UpdateAddress(
	ctx context.Context,
	userID, addressID int64,
	patch *address.PatchAddressModel,
) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = work.Rollback()
	}()

	existing, err := work.AddressRepository().GetByID(ctx, addressID)
	if errors.Is(err, addressrepo.ErrNotFound) {
		return ErrAddressNotFound
	}
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrAddressNotFound
	}

	if patch.IsDefault != nil && *patch.IsDefault {
		if err := work.AddressRepository().ClearDefault(ctx, userID); err != nil {
			return err
		}
	}

	if err := work.AddressRepository().Patch(ctx, addressID, patch); err != nil {
		return err
	}

	return work.Commit()
}

// DeleteAddress removes an address. Deleting the current default promotes
// the most recently created remaining address, if any remain.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID int64) error {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = work.Rollback()
	}()

	existing, err := work.AddressRepository().GetByID(ctx, addressID)
	if errors.Is(err, addressrepo.ErrNotFound) {
		return ErrAddressNotFound
	}
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrAddressNotFound
	}

	if err := work.AddressRepository().Delete(ctx, addressID); err != nil {
		return err
	}

	if existing.IsDefault {
		next, err := work.AddressRepository().MostRecent(ctx, userID)
		if err != nil && !errors.Is(err, addressrepo.ErrNotFound) {
			return err
		}
		if next != nil {
			if err := work.AddressRepository().SetDefault(ctx, next.ID); err != nil {
				return err
			}
		}
	}

	return work.Commit()
}

// ListAddresses retrieves the user's address book, newest first.
func (s *AddressService) ListAddresses(ctx context.Context, userID int64) ([]address.Address, error) {
	work := s.newUOW()

	return work.AddressRepository().ListByUser(ctx, userID)
}
