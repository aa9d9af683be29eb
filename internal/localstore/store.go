// Package localstore is the gateway's durable client-side state: the handful
// of keys the storefront keeps across restarts (token, profile blob, saved
// shipping address) plus the set of payment references that already produced
// a confirmation, so re-verifying one is a replay and not a new side effect.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Key names mirror the browser localStorage keys of the original storefront.
const (
	KeyToken        = "token"
	KeyTokenExpiry  = "tokenExpiry"
	KeyUser         = "user"
	KeyUserID       = "userId"
	KeySavedAddress = "savedShippingAddress"
	KeyAddressOptIn = "saveAddressPreference"
)

type entry struct {
	Key       string `gorm:"primaryKey;size:64;not null"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

type processedPayment struct {
	Reference   string `gorm:"primaryKey;size:128;not null"`
	Status      string `gorm:"size:32;not null"`
	ProcessedAt time.Time
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	if err := db.AutoMigrate(&entry{}, &processedPayment{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored value and whether the key exists.
func (s *Store) Get(key string) (string, bool, error) {
	var e entry
	err := s.db.Where("key = ?", key).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return e.Value, true, nil
}

func (s *Store) Set(key, value string) error {
	e := entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(keys ...string) error {
	if err := s.db.Where("key IN ?", keys).Delete(&entry{}).Error; err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

func (s *Store) GetJSON(key string, out any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) SetJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(key, string(b))
}

// MarkPaymentProcessed records the outcome for a payment reference. Inserting
// the same reference twice keeps the first outcome.
func (s *Store) MarkPaymentProcessed(reference, status string) error {
	p := processedPayment{Reference: reference, Status: status, ProcessedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("record payment %s: %w", reference, err)
	}
	return nil
}

// PaymentOutcome returns the recorded status for a reference, if any.
func (s *Store) PaymentOutcome(reference string) (string, bool, error) {
	var p processedPayment
	err := s.db.Where("reference = ?", reference).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read payment %s: %w", reference, err)
	}
	return p.Status, true, nil
}
