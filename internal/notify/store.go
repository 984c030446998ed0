package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"jobhunter/internal/database"
)

// ErrNotFound means the notification does not exist or belongs to another user.
var ErrNotFound = errors.New("notification not found")

// Store persists notification records and serves the per-user read surface.
// The core only ever calls Create; everything else backs the notification
// endpoints. An unread-count cache sits in Redis and is strictly best-effort:
// every cache failure falls back to the database.
type Store struct {
	db          *gorm.DB
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewStore constructs the store. redisClient may be nil; caching is then skipped.
func NewStore(db *gorm.DB, redisClient *redis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, redisClient: redisClient, logger: logger}
}

// Create appends one immutable record for userID. Category is the
// human-readable status label shown in the notification bell.
func (s *Store) Create(ctx context.Context, userID uint, title, content, category string) (*database.Notification, error) {
	n := database.Notification{
		UserID:  userID,
		Title:   title,
		Content: content,
		Type:    category,
		Read:    false,
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	s.invalidateUnread(ctx, userID)
	return &n, nil
}

// List returns one page of the user's notifications, newest first, plus the total count.
func (s *Store) List(ctx context.Context, userID uint, page, pageSize int) ([]database.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	scope := s.db.WithContext(ctx).Model(&database.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []database.Notification
	err := scope.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *Store) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	if count, ok := s.cachedUnread(ctx, userID); ok {
		return count, nil
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	s.storeUnread(ctx, userID, count)
	return count, nil
}

// MarkRead flips the read flag of one notification owned by userID.
func (s *Store) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// MarkAllRead flips the read flag on every unread notification of userID.
func (s *Store) MarkAllRead(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// Delete removes one notification owned by userID.
func (s *Store) Delete(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&database.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// DeleteAll removes every notification of userID.
func (s *Store) DeleteAll(ctx context.Context, userID uint) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&database.Notification{}).Error
	if err != nil {
		return err
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

const unreadCacheTTL = 5 * time.Minute

func unreadKey(userID uint) string {
	return fmt.Sprintf("notify_unread:%d", userID)
}

func (s *Store) cachedUnread(ctx context.Context, userID uint) (int64, bool) {
	if s.redisClient == nil {
		return 0, false
	}
	raw, err := s.redisClient.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("unread cache read failed", slog.Any("error", err))
		}
		return 0, false
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (s *Store) storeUnread(ctx context.Context, userID uint, count int64) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Set(ctx, unreadKey(userID), count, unreadCacheTTL).Err(); err != nil {
		s.logger.Debug("unread cache write failed", slog.Any("error", err))
	}
}

func (s *Store) invalidateUnread(ctx context.Context, userID uint) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, unreadKey(userID)).Err(); err != nil {
		s.logger.Debug("unread cache invalidate failed", slog.Any("error", err))
	}
}
