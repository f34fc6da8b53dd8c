package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zigate/zigated/pkg/zigate"
)

var ErrZigateSettingsNotFound = errors.New("zigate settings not found")

// ZigateSettings holds the per-profile coordinator configuration: which
// serial port to open and the framing/network options to apply to it.
// Discovered device/endpoint/cluster state is never stored here or
// anywhere else in the database; it is rebuilt from the coordinator on
// every connect.
type ZigateSettings struct {
	ID             int64
	ProfileID      int64
	SerialPort     string
	ChannelMask    uint32
	DeviceType     zigate.DeviceType
	StrictChecksum bool
	CreatedAt      time.Time
}

// ZigateSettingsStore provides coordinator-settings CRUD operations.
type ZigateSettingsStore interface {
	Get(ctx context.Context, profileID int64) (*ZigateSettings, error)
	Create(ctx context.Context, s *ZigateSettings) error
	Update(ctx context.Context, s *ZigateSettings) error
	Delete(ctx context.Context, profileID int64) error
}

// ZigateSettings returns a ZigateSettingsStore for this database.
func (db *DB) ZigateSettings() ZigateSettingsStore {
	return &zigateSettingsStore{db: db}
}

type zigateSettingsStore struct {
	db *DB
}

func (s *zigateSettingsStore) Get(ctx context.Context, profileID int64) (*ZigateSettings, error) {
	zs := &ZigateSettings{}
	var createdAt string
	var deviceType, strictChecksum int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, serial_port, channel_mask, device_type, strict_checksum, created_at
		FROM zigate_settings WHERE profile_id = ?
	`, profileID).Scan(&zs.ID, &zs.ProfileID, &zs.SerialPort, &zs.ChannelMask, &deviceType, &strictChecksum, &createdAt)
	if err == sql.ErrNoRows {
		return nil, ErrZigateSettingsNotFound
	}
	if err != nil {
		return nil, err
	}
	zs.DeviceType = zigate.DeviceType(deviceType)
	zs.StrictChecksum = strictChecksum != 0
	zs.CreatedAt, _ = time.Parse(time.DateTime, createdAt)
	return zs, nil
}

func (s *zigateSettingsStore) Create(ctx context.Context, zs *ZigateSettings) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO zigate_settings (profile_id, serial_port, channel_mask, device_type, strict_checksum)
		VALUES (?, ?, ?, ?, ?)
	`, zs.ProfileID, zs.SerialPort, zs.ChannelMask, int(zs.DeviceType), boolToInt(zs.StrictChecksum))
	if err != nil {
		return fmt.Errorf("failed to create zigate settings: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	zs.ID = id
	return nil
}

func (s *zigateSettingsStore) Update(ctx context.Context, zs *ZigateSettings) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE zigate_settings
		SET serial_port = ?, channel_mask = ?, device_type = ?, strict_checksum = ?
		WHERE profile_id = ?
	`, zs.SerialPort, zs.ChannelMask, int(zs.DeviceType), boolToInt(zs.StrictChecksum), zs.ProfileID)
	return err
}

func (s *zigateSettingsStore) Delete(ctx context.Context, profileID int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM zigate_settings WHERE profile_id = ?`, profileID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrZigateSettingsNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
