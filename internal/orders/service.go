package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/jmkoster/stockroom-backend/internal/sequence"
	"github.com/jmkoster/stockroom-backend/pkg/config"
	"github.com/jmkoster/stockroom-backend/pkg/db"
	"github.com/jmkoster/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jmkoster/stockroom-backend/pkg/errors"
	"github.com/jmkoster/stockroom-backend/pkg/pagination"
)

// Service drives orders between the pending and received phases. An order
// lives in exactly one of the two tables; transitions move the row and mint
// a fresh id on the destination side.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*models.PendingOrder, error)
	GetPending(ctx context.Context, id int32) (*models.PendingOrder, error)
	ListPending(ctx context.Context, params pagination.Params) ([]models.PendingOrder, error)
	UpdatePending(ctx context.Context, id int32, amount float64) (*models.PendingOrder, error)
	DeletePending(ctx context.Context, id int32) error

	MarkReceived(ctx context.Context, pendingID int32, input ReceiveInput) (*models.ReceivedOrder, error)
	GetReceived(ctx context.Context, id int32) (*models.ReceivedOrder, error)
	ListReceived(ctx context.Context, params pagination.Params) ([]models.ReceivedOrder, error)
	UpdateReceived(ctx context.Context, id int32, input UpdateReceivedInput) (*models.ReceivedOrder, error)
	DeleteReceived(ctx context.Context, id int32) error

	Revert(ctx context.Context, receivedID int32) (*models.PendingOrder, error)
}

// PlaceInput opens a new order against a product.
type PlaceInput struct {
	ProductID int32
	Amount    float64
}

// ReceiveInput records what physically arrived for a pending order.
type ReceiveInput struct {
	ReceivedAt       *time.Time
	ActuallyReceived float64
	Damaged          float64
}

// UpdateReceivedInput corrects the receipt data on a received order.
type UpdateReceivedInput struct {
	ReceivedAt       *time.Time
	ActuallyReceived *float64
	Damaged          *float64
}

type productChecker interface {
	FindByID(ctx context.Context, id int32) (*models.Product, error)
}

type service struct {
	repo      *Repository
	products  productChecker
	dbClient  *db.Client
	ordersCfg config.OrdersConfig
}

// NewService constructs the order lifecycle service.
func NewService(repo *Repository, products productChecker, dbClient *db.Client, ordersCfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, products: products, dbClient: dbClient, ordersCfg: ordersCfg}, nil
}

// Place opens a pending order for the product.
func (s *service) Place(ctx context.Context, input PlaceInput) (*models.PendingOrder, error) {
	if input.Amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	if _, err := s.products.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	row := &models.PendingOrder{ProductID: input.ProductID, Amount: input.Amount}
	err := s.withIDRetry(ctx, func(tx *gorm.DB) error {
		id, err := sequence.NextID(ctx, tx, &models.PendingOrder{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating pending order id")
		}
		row.ID = id
		return s.repo.WithTx(tx).CreatePending(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetPending loads one pending order.
func (s *service) GetPending(ctx context.Context, id int32) (*models.PendingOrder, error) {
	row, err := s.repo.FindPending(ctx, id)
	if err != nil {
		return nil, mapOrderLookupError(err, "pending order")
	}
	return row, nil
}

// ListPending returns pending orders ordered by id.
func (s *service) ListPending(ctx context.Context, params pagination.Params) ([]models.PendingOrder, error) {
	rows, err := s.repo.ListPending(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing pending orders")
	}
	return rows, nil
}

// UpdatePending replaces the ordered quantity.
func (s *service) UpdatePending(ctx context.Context, id int32, amount float64) (*models.PendingOrder, error) {
	if amount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount cannot be negative")
	}
	row, err := s.GetPending(ctx, id)
	if err != nil {
		return nil, err
	}
	row.Amount = amount
	if err := s.repo.SavePending(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving pending order")
	}
	return row, nil
}

// DeletePending removes a pending order outright.
func (s *service) DeletePending(ctx context.Context, id int32) error {
	affected, err := s.repo.DeletePending(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting pending order")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found")
	}
	return nil
}

// MarkReceived moves a pending order to the received table. The ordered
// quantity is preserved as gross_amount; the receipt fields come from the
// caller; the pending row is gone when the transaction commits.
func (s *service) MarkReceived(ctx context.Context, pendingID int32, input ReceiveInput) (*models.ReceivedOrder, error) {
	if input.ActuallyReceived < 0 || input.Damaged < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received quantities cannot be negative")
	}

	created := &models.ReceivedOrder{}
	err := s.withIDRetry(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		pending, err := txRepo.FindPending(ctx, pendingID)
		if err != nil {
			return mapOrderLookupError(err, "pending order")
		}

		id, err := sequence.NextID(ctx, tx, &models.ReceivedOrder{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating received order id")
		}

		created.ID = id
		created.Received = input.ReceivedAt
		created.ProductID = pending.ProductID
		created.GrossAmount = pending.Amount
		created.ActuallyReceived = input.ActuallyReceived
		created.Damaged = input.Damaged

		if err := txRepo.CreateReceived(ctx, created); err != nil {
			return err
		}
		affected, err := txRepo.DeletePending(ctx, pendingID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting pending order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetReceived loads one received order.
func (s *service) GetReceived(ctx context.Context, id int32) (*models.ReceivedOrder, error) {
	row, err := s.repo.FindReceived(ctx, id)
	if err != nil {
		return nil, mapOrderLookupError(err, "received order")
	}
	return row, nil
}

// ListReceived returns received orders ordered by id.
func (s *service) ListReceived(ctx context.Context, params pagination.Params) ([]models.ReceivedOrder, error) {
	rows, err := s.repo.ListReceived(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing received orders")
	}
	return rows, nil
}

// UpdateReceived corrects receipt data on a received order.
func (s *service) UpdateReceived(ctx context.Context, id int32, input UpdateReceivedInput) (*models.ReceivedOrder, error) {
	row, err := s.GetReceived(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ReceivedAt != nil {
		row.Received = input.ReceivedAt
	}
	if input.ActuallyReceived != nil {
		if *input.ActuallyReceived < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "received quantities cannot be negative")
		}
		row.ActuallyReceived = *input.ActuallyReceived
	}
	if input.Damaged != nil {
		if *input.Damaged < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "received quantities cannot be negative")
		}
		row.Damaged = *input.Damaged
	}

	if err := s.repo.SaveReceived(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving received order")
	}
	return row, nil
}

// DeleteReceived removes a received order outright.
func (s *service) DeleteReceived(ctx context.Context, id int32) error {
	affected, err := s.repo.DeleteReceived(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting received order")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "received order not found")
	}
	return nil
}

// Revert moves a received order back to pending under a fresh id, restoring
// the originally ordered quantity. The receipt data (actually_received,
// damaged, received timestamp) does not survive the trip, so the operation
// is refused unless lossy reverts are enabled.
func (s *service) Revert(ctx context.Context, receivedID int32) (*models.PendingOrder, error) {
	if !s.ordersCfg.AllowLossyRevert {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reverting a received order discards receipt data and is disabled")
	}

	created := &models.PendingOrder{}
	err := s.withIDRetry(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		received, err := txRepo.FindReceived(ctx, receivedID)
		if err != nil {
			return mapOrderLookupError(err, "received order")
		}

		id, err := sequence.NextID(ctx, tx, &models.PendingOrder{})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocating pending order id")
		}

		created.ID = id
		created.ProductID = received.ProductID
		created.Amount = received.GrossAmount

		if err := txRepo.CreatePending(ctx, created); err != nil {
			return err
		}
		affected, err := txRepo.DeleteReceived(ctx, receivedID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting received order")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "received order not found")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// withIDRetry runs the transactional insert once, and once more if it lost
// an id allocation race.
func (s *service) withIDRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	run := func() error {
		return s.dbClient.WithTx(ctx, fn)
	}

	if err := run(); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return err
		}
		if !db.IsUniqueViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing order")
		}
		if err := run(); err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return err
			}
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order id allocation conflict")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing order")
		}
	}
	return nil
}

func mapOrderLookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading "+entity)
}
