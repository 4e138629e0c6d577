package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
)

// AccountRepository stores users and their settings.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateUser inserts the user and its settings row in one transaction. The
// settings row is fetched-or-created so a user never ends up with two.
func (r *AccountRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}

		settings := models.DefaultUserSettings(user.ID)
		err := tx.Where(models.UserSettings{UserID: user.ID}).
			Attrs(settings).
			FirstOrCreate(&settings).Error
		if err != nil {
			return err
		}
		user.Settings = &settings
		return nil
	}))
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Settings").Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Preload("Settings").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *AccountRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return translate(r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error)
}

func (r *AccountRepository) SaveSettings(ctx context.Context, settings *models.UserSettings) error {
	return translate(r.db.WithContext(ctx).Save(settings).Error)
}
