package services

import (
	"errors"

	apperrors "pet_portrait_go_backend/internal/errors"
	"pet_portrait_go_backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Canvas size surcharges on top of the style base price.
var canvasSizeSurchargeCents = map[string]int{
	"20x30": 0,
	"30x40": 3000,
	"40x60": 6500,
}

type OrderServiceDB interface {
	CreateOrder(order *models.Order) error
	GetOrderByID(id uuid.UUID) (*models.Order, error)
	GetOrdersByAccountID(accountID uuid.UUID) ([]models.Order, error)
}

type DefaultOrderService struct {
	db *gorm.DB
}

func NewOrderServiceDB(db *gorm.DB) OrderServiceDB {
	return &DefaultOrderService{db: db}
}

func (s *DefaultOrderService) CreateOrder(order *models.Order) error {
	return s.db.Create(order).Error
}

func (s *DefaultOrderService) GetOrderByID(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *DefaultOrderService) GetOrdersByAccountID(accountID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("account_id = ?", accountID).Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderService validates and prices canvas orders.
type OrderService struct {
	orders OrderServiceDB
}

func NewOrderService(orders OrderServiceDB) *OrderService {
	return &OrderService{orders: orders}
}

type PlaceOrderInput struct {
	StyleTag        string
	CanvasSize      string
	PetName         string
	ShippingName    string
	ShippingAddress string
}

func (s *OrderService) PlaceOrder(accountID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	style, ok := StyleByTag(input.StyleTag)
	if !ok {
		return nil, apperrors.New400Error("unknown style tag")
	}
	surcharge, ok := canvasSizeSurchargeCents[input.CanvasSize]
	if !ok {
		return nil, apperrors.New400Error("canvas_size must be one of 20x30, 30x40, 40x60")
	}
	if input.ShippingName == "" || input.ShippingAddress == "" {
		return nil, apperrors.New400Error("shipping_name and shipping_address are required")
	}

	order := &models.Order{
		AccountID:       accountID,
		StyleTag:        style.Tag,
		CanvasSize:      input.CanvasSize,
		PriceCents:      style.PriceCents + surcharge,
		PetName:         input.PetName,
		ShippingName:    input.ShippingName,
		ShippingAddress: input.ShippingAddress,
		Status:          "pending",
	}
	if err := s.orders.CreateOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetOrder(accountID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New404Error("order not found")
		}
		return nil, err
	}
	// Owners only; existence of other users' orders is not disclosed.
	if order.AccountID != accountID {
		return nil, apperrors.New404Error("order not found")
	}
	return order, nil
}

func (s *OrderService) ListOrders(accountID uuid.UUID) ([]models.Order, error) {
	return s.orders.GetOrdersByAccountID(accountID)
}
