package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"bookingengine/internal/app/uow"
	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	ResourcesRepo domainresource.Repository
	BookingsRepo  domainbooking.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

const transientTxnLabel = "TransientTransactionError"

// Begin starts a MongoDB session/transaction. Slot counters and bookings are
// written in the same snapshot transaction, so capacity checks see
// committed state only.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.ResourcesRepo == nil || f.BookingsRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if opts.ReadOnly {
		txnOpts = options.Transaction().SetReadConcern(readconcern.Majority())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:   session,
		resources: f.ResourcesRepo,
		bookings:  f.BookingsRepo,
	}, nil
}

type Unit struct {
	uow.Hooks

	session mongo.Session

	resources domainresource.Repository
	bookings  domainbooking.Repository
}

func (u *Unit) Resources() domainresource.Repository {
	return u.resources
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if err := u.session.CommitTransaction(ctx); err != nil {
		u.Discard()
		return mapTxnError(err)
	}
	u.RunCommitted(ctx)
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	u.Discard()
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

// mapTxnError reports write conflicts between concurrent transactions as
// ErrConcurrentModified so callers can retry.
func mapTxnError(err error) error {
	if err == nil {
		return nil
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) && labeled.HasErrorLabel(transientTxnLabel) {
		return errors.Join(domainbooking.ErrConcurrentModified, err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Join(domainbooking.ErrConcurrentModified, err)
	}
	return err
}

var (
	_ uow.UoWFactory      = Factory{}
	_ uow.ContextInjector = (*Unit)(nil)
)
