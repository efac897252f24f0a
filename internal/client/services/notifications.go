package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/freightdesk/internal/client/repositories/kv"
	"github.com/dmitrijs2005/freightdesk/internal/logging"
)

// KeyNotificationSettings is the local store key of the notification
// preferences. They belong to the device, so logout keeps them.
const KeyNotificationSettings = "notification_settings"

type PushNotifications struct {
	NewShipment bool `json:"newShipment"`
}

type NotificationSettings struct {
	PushNotifications PushNotifications `json:"pushNotifications"`
}

// DefaultNotificationSettings has every notification on.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{PushNotifications: PushNotifications{NewShipment: true}}
}

type NotificationService struct {
	repo   kv.Repository
	logger logging.Logger
}

func NewNotificationService(db *sql.DB, logger logging.Logger) *NotificationService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &NotificationService{repo: kv.NewSQLiteRepository(db), logger: logger}
}

// Load returns the stored settings laid over the defaults, so fields a
// stored record lacks keep their default. An unreadable record reads as the
// defaults.
func (s *NotificationService) Load(ctx context.Context) NotificationSettings {
	settings := DefaultNotificationSettings()

	raw, ok, err := s.repo.Get(ctx, KeyNotificationSettings)
	if err != nil {
		s.logger.Warn(ctx, "cannot read notification settings", "error", err)
		return settings
	}
	if !ok {
		return settings
	}
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		s.logger.Warn(ctx, "ignoring malformed notification settings", "error", err)
		return DefaultNotificationSettings()
	}
	return settings
}

func (s *NotificationService) Save(ctx context.Context, settings NotificationSettings) error {
	b, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode notification settings: %w", err)
	}
	if err := s.repo.Set(ctx, KeyNotificationSettings, string(b)); err != nil {
		return fmt.Errorf("save notification settings: %w", err)
	}
	return nil
}

// SetNewShipment switches the new-shipment notification and returns the
// settings as saved.
func (s *NotificationService) SetNewShipment(ctx context.Context, on bool) (NotificationSettings, error) {
	settings := s.Load(ctx)
	settings.PushNotifications.NewShipment = on
	if err := s.Save(ctx, settings); err != nil {
		return settings, err
	}
	s.logger.Info(ctx, "notification settings changed", "new_shipment", on)
	return settings, nil
}
