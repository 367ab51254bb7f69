package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db    *database.DB
	retry *Retrier
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB, retrier *Retrier) notification.Repository {
	return &notificationRepository{db: db, retry: retrier}
}

const notificationColumns = `id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n         notification.Notification
		dataJSON  []byte
		notifType string
	)
	if err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&notifType,
		&n.Title,
		&n.Message,
		&dataJSON,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}

	n.Type = notification.NotificationType(notifType)
	if dataJSON != nil {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification data: %w", err)
		}
	}
	return &n, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

// CreateBatch inserts every notification with a single statement
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*9)

	for i, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}

		dataJSON, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}

		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.RecipientID,
			n.SenderID,
			string(n.Type),
			n.Title,
			n.Message,
			dataJSON,
			n.IsRead,
			n.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ", "))

	err := r.retry.Do(ctx, func(ctx context.Context) error {
		_, err := GetQuerier(ctx, r.db).Exec(ctx, query, valueArgs...)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	return nil
}

// List retrieves one page of a user's notifications, newest first
func (r *notificationRepository) List(ctx context.Context, userID string, filter notification.ListFilter) ([]*notification.Notification, int, error) {
	conditions := []string{"recipient_id = $1"}
	args := []interface{}{userID}
	if filter.UnreadOnly {
		conditions = append(conditions, "is_read = false")
	}
	if filter.Type != nil {
		args = append(args, string(*filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + where
	query := fmt.Sprintf(`
		SELECT %s
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, notificationColumns, where, len(args)+1, len(args)+2)
	pageArgs := append(append([]interface{}{}, args...), filter.PageSize, filter.Offset())

	var (
		total         int
		notifications []*notification.Notification
	)
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)
		if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count notifications: %w", err)
		}

		rows, err := q.Query(ctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query notifications: %w", err)
		}
		defer rows.Close()

		notifications = notifications[:0]
		for rows.Next() {
			n, err := scanNotification(rows)
			if err != nil {
				return fmt.Errorf("failed to scan notification: %w", err)
			}
			notifications = append(notifications, n)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return GetQuerier(ctx, r.db).QueryRow(ctx,
			`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`, userID,
		).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead marks specific notifications as read
func (r *notificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND id = ANY($3::uuid[])
	`

	err := r.retry.Do(ctx, func(ctx context.Context) error {
		_, err := GetQuerier(ctx, r.db).Exec(ctx, query, time.Now(), userID, ids)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// MarkAllAsRead marks all notifications as read for a user
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	query := `
		UPDATE notifications
		SET is_read = true, read_at = $1
		WHERE recipient_id = $2 AND is_read = false
	`

	err := r.retry.Do(ctx, func(ctx context.Context) error {
		_, err := GetQuerier(ctx, r.db).Exec(ctx, query, time.Now(), userID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// Delete deletes a notification
func (r *notificationRepository) Delete(ctx context.Context, id string, userID string) error {
	return r.retry.Do(ctx, func(ctx context.Context) error {
		result, err := GetQuerier(ctx, r.db).Exec(ctx,
			`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete notification: %w", err)
		}
		if result.RowsAffected() == 0 {
			return notification.ErrNotificationNotFound
		}
		return nil
	})
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		tag, err := GetQuerier(ctx, r.db).Exec(ctx,
			`DELETE FROM notifications WHERE is_read = true AND created_at < $1`, cutoff,
		)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return removed, nil
}

// ============= Preferences =============

// GetPreferences retrieves all notification preferences for a user
func (r *notificationRepository) GetPreferences(ctx context.Context, userID string) ([]*notification.NotificationPreference, error) {
	query := `
		SELECT user_id, notification_type, push_enabled, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	var prefs []*notification.NotificationPreference
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		rows, err := GetQuerier(ctx, r.db).Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		prefs = prefs[:0]
		for rows.Next() {
			var (
				p         notification.NotificationPreference
				notifType string
			)
			if err := rows.Scan(&p.UserID, &notifType, &p.PushEnabled, &p.UpdatedAt); err != nil {
				return err
			}
			p.NotificationType = notification.NotificationType(notifType)
			prefs = append(prefs, &p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	return prefs, nil
}

// UpsertPreference creates or updates a notification preference
func (r *notificationRepository) UpsertPreference(ctx context.Context, pref *notification.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences (user_id, notification_type, push_enabled, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, notification_type)
		DO UPDATE SET push_enabled = EXCLUDED.push_enabled, updated_at = NOW()
	`

	err := r.retry.Do(ctx, func(ctx context.Context) error {
		_, err := GetQuerier(ctx, r.db).Exec(ctx, query, pref.UserID, string(pref.NotificationType), pref.PushEnabled)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}

// IsNotificationEnabled checks if push notifications are enabled for a user and type
func (r *notificationRepository) IsNotificationEnabled(ctx context.Context, userID string, notifType notification.NotificationType) (bool, error) {
	var enabled bool
	err := r.retry.Do(ctx, func(ctx context.Context) error {
		return GetQuerier(ctx, r.db).QueryRow(ctx,
			`SELECT push_enabled FROM notification_preferences WHERE user_id = $1 AND notification_type = $2`,
			userID, string(notifType),
		).Scan(&enabled)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Default to enabled if no preference exists
			return true, nil
		}
		return false, fmt.Errorf("failed to check notification enabled: %w", err)
	}
	return enabled, nil
}
