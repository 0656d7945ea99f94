package uow

import (
	"context"
	"database/sql"

	"github.com/kirastore/backend/internal/dal/interfaces/iaddressrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iinboxrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iorderitemrepo"
	"github.com/kirastore/backend/internal/dal/interfaces/iorderrepo"
	"github.com/kirastore/backend/internal/dal/postgres"
	addressrepo "github.com/kirastore/backend/internal/dal/repositories/address/postgres"
	inboxrepo "github.com/kirastore/backend/internal/dal/repositories/inbox/postgres"
	orderrepo "github.com/kirastore/backend/internal/dal/repositories/order/postgres"
	orderitemrepo "github.com/kirastore/backend/internal/dal/repositories/orderitem/postgres"
)

// unitOfWork scopes repositories to one database transaction. Before Begin
// the repositories run against the pool directly, which suits read paths.
type unitOfWork struct {
	db            *sql.DB
	tx            *sql.Tx
	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	addressRepo   iaddressrepo.IAddressRepository
	inboxRepo     iinboxrepo.IInboxRepository
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) AddressRepository() iaddressrepo.IAddressRepository {
	return u.addressRepo
}

func (u *unitOfWork) InboxRepository() iinboxrepo.IInboxRepository {
	return u.inboxRepo
}

func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	u := &unitOfWork{db: client.DB()}
	u.bind(u.db)

	return u
}

func (u *unitOfWork) bind(conn postgres.Querier) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(conn)
	u.addressRepo = addressrepo.NewPostgresAddressRepository(conn)
	u.inboxRepo = inboxrepo.NewInboxRepository(conn)
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Commit()
	u.tx = nil

	return err
}

func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback()
}
