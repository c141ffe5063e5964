package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// OrderRepository implements ports.OrderRepository on Postgres.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create writes the order row, its items and its initial history in one
// transaction.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := orderToModel(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
			switch {
			case isUniqueViolation(err):
				return domain.ErrTrackingNumberTaken
			case isForeignKeyViolation(err):
				return domain.ErrUserNotFound
			}
			return err
		}
		if len(m.Items) > 0 {
			if err := tx.Create(&m.Items).Error; err != nil {
				return err
			}
		}
		if len(m.History) > 0 {
			if err := tx.Create(&m.History).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m, err := r.load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	o := m.toDomain()
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []orderModel
	err := withAggregate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return ordersToDomain(rows), nil
}

func (r *OrderRepository) List(ctx context.Context, page ports.Page) ([]domain.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var total int64
	if err := r.db.WithContext(ctx).Model(&orderModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []orderModel
	err := withAggregate(r.db.WithContext(ctx)).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return ordersToDomain(rows), total, nil
}

// UpdateStatus serialises concurrent transitions on the same order with a
// row lock, so every committed status has exactly one history entry.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, change ports.StatusChange) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out domain.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked orderModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", id).
			Take(&locked).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrOrderNotFound
			}
			return err
		}

		err = tx.Model(&orderModel{}).
			Where("id = ?", id).
			Updates(map[string]any{"status": string(change.Status), "updated_at": change.At}).Error
		if err != nil {
			return err
		}

		event := orderStatusEventModel{
			OrderID:   id,
			Status:    string(change.Status),
			Notes:     change.Notes,
			CreatedAt: change.At,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		m, err := r.load(tx, id)
		if err != nil {
			return err
		}
		out = m.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrOrderNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&orderStatusEventModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&orderItemModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&orderModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrOrderNotFound
		}
		return nil
	})
}

// CountByStatus backs the orders-by-status gauge.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[domain.OrderStatus]int64, len(rows))
	for _, row := range rows {
		out[domain.OrderStatus(row.Status)] = row.Count
	}
	return out, nil
}

func (r *OrderRepository) load(db *gorm.DB, id string) (*orderModel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrOrderNotFound
	}

	var m orderModel
	if err := withAggregate(db).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &m, nil
}

// withAggregate preloads items in insertion order and history newest first.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		})
}

func ordersToDomain(rows []orderModel) []domain.Order {
	out := make([]domain.Order, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}
