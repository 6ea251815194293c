package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const settingsColumns = `owner_id, discount_enabled, discount_threshold, discount_percentage,
	notify_browser_enabled, notify_browser_min, notify_sms_enabled, notify_sms_min,
	notify_email_enabled, notify_email_min, updated_at`

// GetOwnerSettings loads the owner's settings row, returning zero-valued
// defaults (everything disabled) when none has been saved yet.
func (s *Store) GetOwnerSettings(ctx context.Context, ownerID string) (OwnerSettings, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return OwnerSettings{}, err
	}
	row := s.Pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM owner_settings WHERE owner_id = $1`, oid)
	settings, err := scanSettings(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return OwnerSettings{OwnerID: ownerID}, nil
	}
	return settings, err
}

// GetOwnerSettingsTx is the transactional variant used by the commit gateway
// so the discount snapshot reads from the same consistent view.
func (s *Store) GetOwnerSettingsTx(ctx context.Context, tx pgx.Tx, ownerID string) (OwnerSettings, error) {
	oid, err := ToUUID(ownerID)
	if err != nil {
		return OwnerSettings{}, err
	}
	row := tx.QueryRow(ctx, `SELECT `+settingsColumns+` FROM owner_settings WHERE owner_id = $1`, oid)
	settings, err := scanSettings(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return OwnerSettings{OwnerID: ownerID}, nil
	}
	return settings, err
}

// UpsertOwnerSettings saves the owner's settings, creating the row on first use.
func (s *Store) UpsertOwnerSettings(ctx context.Context, in OwnerSettings) (OwnerSettings, error) {
	oid, err := ToUUID(in.OwnerID)
	if err != nil {
		return OwnerSettings{}, err
	}
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO owner_settings (owner_id, discount_enabled, discount_threshold, discount_percentage,
			notify_browser_enabled, notify_browser_min, notify_sms_enabled, notify_sms_min,
			notify_email_enabled, notify_email_min, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (owner_id) DO UPDATE SET
			discount_enabled = EXCLUDED.discount_enabled,
			discount_threshold = EXCLUDED.discount_threshold,
			discount_percentage = EXCLUDED.discount_percentage,
			notify_browser_enabled = EXCLUDED.notify_browser_enabled,
			notify_browser_min = EXCLUDED.notify_browser_min,
			notify_sms_enabled = EXCLUDED.notify_sms_enabled,
			notify_sms_min = EXCLUDED.notify_sms_min,
			notify_email_enabled = EXCLUDED.notify_email_enabled,
			notify_email_min = EXCLUDED.notify_email_min,
			updated_at = now()
		RETURNING `+settingsColumns,
		oid, in.DiscountEnabled, in.DiscountThreshold, in.DiscountPercentage,
		in.NotifyBrowserEnable, in.NotifyBrowserMin, in.NotifySMSEnable, in.NotifySMSMin,
		in.NotifyEmailEnable, in.NotifyEmailMin)
	return scanSettings(row)
}

func scanSettings(row rowScanner) (OwnerSettings, error) {
	var (
		ownerID   pgtype.UUID
		updatedAt pgtype.Timestamptz
		settings  OwnerSettings
	)
	err := row.Scan(&ownerID, &settings.DiscountEnabled, &settings.DiscountThreshold, &settings.DiscountPercentage,
		&settings.NotifyBrowserEnable, &settings.NotifyBrowserMin, &settings.NotifySMSEnable, &settings.NotifySMSMin,
		&settings.NotifyEmailEnable, &settings.NotifyEmailMin, &updatedAt)
	if err != nil {
		return OwnerSettings{}, err
	}
	settings.OwnerID = UUIDString(ownerID)
	settings.UpdatedAt = timeFromPG(updatedAt)
	return settings, nil
}
