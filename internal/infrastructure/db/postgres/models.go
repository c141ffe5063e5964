package postgres

import (
	"time"

	"github.com/99minutos/order-tracking/internal/core/domain"
)

type userModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"not null"`
	Email        string    `gorm:"not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"type:varchar(32);not null;index"`
	CreatedAt    time.Time `gorm:"not null;index"`
	UpdatedAt    time.Time `gorm:"not null"`

	Orders []orderModel `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() domain.User {
	return domain.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Role:      domain.Role(m.Role),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func userFromCredentials(c *domain.Credentials) *userModel {
	return &userModel{
		ID:           c.User.ID,
		Name:         c.User.Name,
		Email:        c.User.Email,
		PasswordHash: c.PasswordHash,
		Role:         string(c.User.Role),
		CreatedAt:    c.User.CreatedAt,
		UpdatedAt:    c.User.UpdatedAt,
	}
}

type orderModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	UserID          string    `gorm:"type:uuid;not null;index"`
	Status          string    `gorm:"type:varchar(32);not null;index"`
	TotalAmount     float64   `gorm:"type:double precision;not null"`
	ShippingAddress string    `gorm:"not null"`
	TrackingNumber  string    `gorm:"type:varchar(32);not null;uniqueIndex:idx_orders_tracking_number"`
	Notes           string    `gorm:"not null;default:''"`
	CreatedAt       time.Time `gorm:"not null;index"`
	UpdatedAt       time.Time `gorm:"not null"`

	Items   []orderItemModel        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []orderStatusEventModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderModel) TableName() string { return "orders" }

type orderItemModel struct {
	ID          uint    `gorm:"primaryKey"`
	OrderID     string  `gorm:"type:uuid;not null;index"`
	Position    int     `gorm:"not null"`
	Name        string  `gorm:"not null"`
	Description string  `gorm:"not null;default:''"`
	Quantity    int     `gorm:"not null;check:chk_order_items_quantity,quantity > 0"`
	Price       float64 `gorm:"type:double precision;not null;check:chk_order_items_price,price >= 0"`
}

func (orderItemModel) TableName() string { return "order_items" }

type orderStatusEventModel struct {
	ID        uint      `gorm:"primaryKey"`
	OrderID   string    `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(32);not null"`
	Notes     string    `gorm:"not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (orderStatusEventModel) TableName() string { return "order_status_history" }

func orderToModel(o *domain.Order) *orderModel {
	m := &orderModel{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for i, it := range o.Items {
		m.Items = append(m.Items, orderItemModel{
			OrderID:     o.ID,
			Position:    i,
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	for _, h := range o.StatusHistory {
		m.History = append(m.History, orderStatusEventModel{
			OrderID:   o.ID,
			Status:    string(h.Status),
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return m
}

func (m *orderModel) toDomain() domain.Order {
	o := domain.Order{
		ID:              m.ID,
		UserID:          m.UserID,
		Status:          domain.OrderStatus(m.Status),
		TotalAmount:     m.TotalAmount,
		ShippingAddress: m.ShippingAddress,
		TrackingNumber:  m.TrackingNumber,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		Items:           make([]domain.OrderItem, 0, len(m.Items)),
		StatusHistory:   make([]domain.OrderStatusEvent, 0, len(m.History)),
	}
	for _, it := range m.Items {
		o.Items = append(o.Items, domain.OrderItem{
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	for _, h := range m.History {
		o.StatusHistory = append(o.StatusHistory, domain.OrderStatusEvent{
			Status:    domain.OrderStatus(h.Status),
			Notes:     h.Notes,
			CreatedAt: h.CreatedAt,
		})
	}
	return o
}
