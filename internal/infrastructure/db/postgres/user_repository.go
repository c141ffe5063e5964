package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// UserRepository implements ports.UserRepository on Postgres.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user. The unique index on email turns a concurrent
// duplicate registration into domain.ErrUserExists.
func (r *UserRepository) Create(ctx context.Context, cred *domain.Credentials) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(userFromCredentials(cred)).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	m, err := r.find(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	u := m.toDomain()
	return &u, nil
}

func (r *UserRepository) FindCredentialsByEmail(ctx context.Context, email string) (*domain.Credentials, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &domain.Credentials{User: m.toDomain(), PasswordHash: m.PasswordHash}, nil
}

func (r *UserRepository) List(ctx context.Context, page ports.Page) ([]domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var total int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []userModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return usersToDomain(rows), total, nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rows []userModel
	err := r.db.WithContext(ctx).
		Where("role = ?", string(role)).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return usersToDomain(rows), nil
}

// Search is a case-sensitive substring match on name or email.
func (r *UserRepository) Search(ctx context.Context, query string) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pattern := "%" + escapeLike(query) + "%"
	var rows []userModel
	err := r.db.WithContext(ctx).
		Where("name LIKE ? OR email LIKE ?", pattern, pattern).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return usersToDomain(rows), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var out domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := r.find(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}

		m.UpdatedAt = time.Now().UTC()
		updates := map[string]any{"updated_at": m.UpdatedAt}
		if patch.Name != nil {
			m.Name = *patch.Name
			updates["name"] = m.Name
		}
		if patch.Email != nil {
			m.Email = *patch.Email
			updates["email"] = m.Email
		}
		if patch.Role != nil {
			m.Role = string(*patch.Role)
			updates["role"] = m.Role
		}

		if err := tx.Model(&userModel{}).Where("id = ?", m.ID).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrEmailInUse
			}
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

// Delete removes the user's order history, order items, orders and finally
// the user, in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := r.find(ctx, tx.Clauses(clause.Locking{Strength: "UPDATE"}), id); err != nil {
			return err
		}

		owned := tx.Model(&orderModel{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("order_id IN (?)", owned).Delete(&orderStatusEventModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id IN (?)", owned).Delete(&orderItemModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&orderModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&userModel{}).Error
	})
}

// find loads a user row through db, which may be a transaction or carry
// locking clauses. Ids that are not UUIDs cannot exist.
func (r *UserRepository) find(ctx context.Context, db *gorm.DB, id string) (*userModel, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m userModel
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &m, nil
}

func usersToDomain(rows []userModel) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
