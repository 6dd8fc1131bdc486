package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/IceCubeQq/YouGileTasksNexaBot/internal/model"
)

// UserRepository handles CRUD for Telegram-to-YouGile user links.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the record for telegramID, creating a default-valued
// one on first contact. Calling it twice for the same id yields the same row.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.Where("telegram_id = ?", telegramID).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case err == gorm.ErrRecordNotFound:
		user = model.User{TelegramID: telegramID}
		if err := db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

// FindByTelegramID returns gorm.ErrRecordNotFound when the user never
// interacted with the bot.
func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// SetYougileCredentials stores the verified email and, when non-empty, the
// YouGile id. Returns gorm.ErrRecordNotFound if no record exists.
func (r *UserRepository) SetYougileCredentials(ctx context.Context, telegramID int64, email, yougileID string) error {
	db := r.db.WithContext(ctx)
	var user model.User
	if err := db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return err
	}
	updates := map[string]interface{}{"yougile_email": email}
	if yougileID != "" {
		updates["yougile_id"] = yougileID
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return fmt.Errorf("update credentials: %w", err)
	}
	return nil
}

// SetDefaultColumn stores the column new tasks are filed into.
func (r *UserRepository) SetDefaultColumn(ctx context.Context, telegramID int64, columnID string) error {
	return r.updateField(ctx, telegramID, "default_column_id", columnID)
}

// SetTelegramUsername stores the user's Telegram handle (without "@").
func (r *UserRepository) SetTelegramUsername(ctx context.Context, telegramID int64, username string) error {
	return r.updateField(ctx, telegramID, "telegram_username", username)
}

func (r *UserRepository) updateField(ctx context.Context, telegramID int64, column string, value string) error {
	db := r.db.WithContext(ctx)
	var user model.User
	if err := db.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return err
	}
	if err := db.Model(&user).Update(column, value).Error; err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	return nil
}

// FindYougileIDByUsername resolves a Telegram handle (with or without a
// leading "@") to the linked YouGile id. Returns gorm.ErrRecordNotFound when
// no record carries that handle; an empty id with nil error means the record
// exists but is not linked to YouGile yet.
func (r *UserRepository) FindYougileIDByUsername(ctx context.Context, username string) (string, error) {
	clean := strings.TrimPrefix(username, "@")
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_username = ?", clean).First(&user).Error; err != nil {
		return "", err
	}
	return user.YougileID, nil
}
