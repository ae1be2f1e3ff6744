package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solostack/marketplace-backend/pkg/db/models"
	"github.com/solostack/marketplace-backend/pkg/enums"
	pkgerrors "github.com/solostack/marketplace-backend/pkg/errors"
	"github.com/solostack/marketplace-backend/pkg/types"
)

// commissionPercent is the platform's fixed cut of every sub-order, applied
// to integer cents with truncation.
const commissionPercent = 10

type orderRepository interface {
	CreateOrderWithTx(tx *gorm.DB, order *models.Order) error
	CreateSubOrderWithTx(tx *gorm.DB, subOrder *models.SubOrder) error
	CreateOrderItemsWithTx(tx *gorm.DB, items []models.OrderItem) error
	DecrementStockWithTx(tx *gorm.DB, variantID uuid.UUID, quantity int) (int64, error)
	VariantExistsWithTx(tx *gorm.DB, variantID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.SubOrder, error)
	FindSubOrder(ctx context.Context, id uuid.UUID) (*models.SubOrder, error)
	UpdateSubOrderStatus(ctx context.Context, id uuid.UUID, status string) error
	StoreNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
	ProductTitles(ctx context.Context, variantIDs []uuid.UUID) (map[uuid.UUID]string, error)
	Buyers(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.User, error)
}

type storeLookup interface {
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Store, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes checkout and fulfilment operations.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error)
	MyOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	VendorOrders(ctx context.Context, ownerID uuid.UUID) ([]VendorSubOrderDTO, error)
	UpdateSubOrderStatus(ctx context.Context, ownerID, subOrderID uuid.UUID, input UpdateSubOrderStatusInput) (*SubOrderDTO, error)
}

type service struct {
	repo   orderRepository
	stores storeLookup
	tx     txRunner
}

// NewService builds an order service.
func NewService(repo orderRepository, stores storeLookup, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if stores == nil {
		return nil, fmt.Errorf("store lookup required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, stores: stores, tx: tx}, nil
}

// storeGroup accumulates cart lines per store, preserving the order in which
// each store first appears in the cart.
type storeGroup struct {
	storeID uuid.UUID
	items   []models.OrderItem
	cents   int
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*OrderDTO, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if len(input.ShippingAddress) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}

	groups := make([]*storeGroup, 0, len(input.Lines))
	byStore := make(map[uuid.UUID]*storeGroup, len(input.Lines))
	totalCents := 0

	for i, line := range input.Lines {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i+1))
		}
		cents, err := types.ParseMoney(line.Price)
		if err != nil || cents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line %d: invalid price", i+1))
		}

		group, ok := byStore[line.StoreID]
		if !ok {
			group = &storeGroup{storeID: line.StoreID}
			byStore[line.StoreID] = group
			groups = append(groups, group)
		}
		lineCents := cents * line.Quantity
		group.cents += lineCents
		group.items = append(group.items, models.OrderItem{
			ID:                   uuid.New(),
			ProductVariantID:     line.VariantID,
			Quantity:             line.Quantity,
			PriceAtPurchaseCents: cents,
		})
		totalCents += lineCents
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalCents:      totalCents,
		PaymentStatus:   enums.PaymentStatusPaid,
		ShippingAddress: input.ShippingAddress,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateOrderWithTx(tx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, group := range groups {
			subTotal := group.cents
			commission := subTotal * commissionPercent / 100
			subOrder := &models.SubOrder{
				ID:              uuid.New(),
				ParentOrderID:   order.ID,
				StoreID:         group.storeID,
				SubTotalCents:   subTotal,
				CommissionCents: commission,
				PayoutCents:     subTotal - commission,
				Status:          enums.SubOrderStatusPending,
			}
			if err := s.repo.CreateSubOrderWithTx(tx, subOrder); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sub-order")
			}

			for i := range group.items {
				group.items[i].SubOrderID = subOrder.ID
			}
			if err := s.repo.CreateOrderItemsWithTx(tx, group.items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
			}

			for _, item := range group.items {
				affected, err := s.repo.DecrementStockWithTx(tx, item.ProductVariantID, item.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if affected == 0 {
					exists, err := s.repo.VariantExistsWithTx(tx, item.ProductVariantID)
					if err != nil {
						return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check variant")
					}
					if !exists {
						return pkgerrors.New(pkgerrors.CodeInternal, "order processing failed")
					}
					return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
				}
			}

			subOrder.Items = group.items
			order.SubOrders = append(order.SubOrders, *subOrder)
		}
		return nil
	})
	if err != nil {
		var coded *pkgerrors.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	order.CreatedAt = time.Now().UTC()
	dto, err := s.decorate(ctx, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &dto[0], nil
}

func (s *service) MyOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return s.decorate(ctx, orders)
}

func (s *service) VendorOrders(ctx context.Context, ownerID uuid.UUID) ([]VendorSubOrderDTO, error) {
	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	subOrders, err := s.repo.ListByStore(ctx, store.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store orders")
	}

	orderIDs := make([]uuid.UUID, 0, len(subOrders))
	variantIDs := make([]uuid.UUID, 0)
	for i := range subOrders {
		orderIDs = append(orderIDs, subOrders[i].ParentOrderID)
		for _, item := range subOrders[i].Items {
			variantIDs = append(variantIDs, item.ProductVariantID)
		}
	}

	buyers, err := s.repo.Buyers(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyers")
	}
	titles, err := s.repo.ProductTitles(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product titles")
	}

	dtos := make([]VendorSubOrderDTO, 0, len(subOrders))
	for i := range subOrders {
		buyer := buyers[subOrders[i].ParentOrderID]
		dtos = append(dtos, VendorSubOrderDTO{
			SubOrderDTO: subOrderToDTO(&subOrders[i], store.Name, titles),
			BuyerName:   buyer.FirstName + " " + buyer.LastName,
			BuyerEmail:  buyer.Email,
		})
	}
	return dtos, nil
}

func (s *service) UpdateSubOrderStatus(ctx context.Context, ownerID, subOrderID uuid.UUID, input UpdateSubOrderStatusInput) (*SubOrderDTO, error) {
	next, err := enums.ParseSubOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}

	store, err := s.ownedStore(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	subOrder, err := s.repo.FindSubOrder(ctx, subOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sub-order")
	}
	if subOrder.StoreID != store.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another store")
	}
	if !subOrder.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", subOrder.Status, next))
	}

	if err := s.repo.UpdateSubOrderStatus(ctx, subOrder.ID, next.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	subOrder.Status = next

	variantIDs := make([]uuid.UUID, 0, len(subOrder.Items))
	for _, item := range subOrder.Items {
		variantIDs = append(variantIDs, item.ProductVariantID)
	}
	titles, err := s.repo.ProductTitles(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product titles")
	}

	dto := subOrderToDTO(subOrder, store.Name, titles)
	return &dto, nil
}

func (s *service) ownedStore(ctx context.Context, ownerID uuid.UUID) (*models.Store, error) {
	store, err := s.stores.FindByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor store required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

// decorate resolves store names and product titles for a batch of orders.
func (s *service) decorate(ctx context.Context, orders []models.Order) ([]OrderDTO, error) {
	storeIDs := make([]uuid.UUID, 0)
	variantIDs := make([]uuid.UUID, 0)
	for i := range orders {
		for j := range orders[i].SubOrders {
			storeIDs = append(storeIDs, orders[i].SubOrders[j].StoreID)
			for _, item := range orders[i].SubOrders[j].Items {
				variantIDs = append(variantIDs, item.ProductVariantID)
			}
		}
	}

	names, err := s.repo.StoreNames(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store names")
	}
	titles, err := s.repo.ProductTitles(ctx, variantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product titles")
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		subDTOs := make([]SubOrderDTO, 0, len(orders[i].SubOrders))
		for j := range orders[i].SubOrders {
			sub := &orders[i].SubOrders[j]
			subDTOs = append(subDTOs, subOrderToDTO(sub, names[sub.StoreID], titles))
		}
		dtos = append(dtos, OrderDTO{
			ID:              orders[i].ID,
			Total:           formatCents(orders[i].TotalCents),
			PaymentStatus:   orders[i].PaymentStatus,
			ShippingAddress: orders[i].ShippingAddress,
			SubOrders:       subDTOs,
			CreatedAt:       orders[i].CreatedAt,
		})
	}
	return dtos, nil
}

func subOrderToDTO(sub *models.SubOrder, storeName string, titles map[uuid.UUID]string) SubOrderDTO {
	items := make([]OrderItemDTO, 0, len(sub.Items))
	for _, item := range sub.Items {
		items = append(items, OrderItemDTO{
			ID:              item.ID,
			VariantID:       item.ProductVariantID,
			ProductTitle:    titles[item.ProductVariantID],
			Quantity:        item.Quantity,
			PriceAtPurchase: formatCents(item.PriceAtPurchaseCents),
		})
	}
	return SubOrderDTO{
		ID:         sub.ID,
		StoreID:    sub.StoreID,
		StoreName:  storeName,
		SubTotal:   formatCents(sub.SubTotalCents),
		Commission: formatCents(sub.CommissionCents),
		Payout:     formatCents(sub.PayoutCents),
		Status:     sub.Status,
		Items:      items,
		CreatedAt:  sub.CreatedAt,
	}
}
