package iaddressrepo

import (
	"context"

	"github.com/kirastore/backend/internal/service/models/address"
)

// IAddressRepository is an interface for the address postgres repository.
type IAddressRepository interface {
	Insert(ctx context.Context, a address.Address) (address.Address, error)
	GetByID(ctx context.Context, id int64) (*address.Address, error)
	ListByUser(ctx context.Context, userID int64) ([]address.Address, error)
	Patch(ctx context.Context, id int64, patch *address.PatchAddressModel) error
	Delete(ctx context.Context, id int64) error
	ClearDefault(ctx context.Context, userID int64) error
	SetDefault(ctx context.Context, id int64) error
	MostRecent(ctx context.Context, userID int64) (*address.Address, error)
}
