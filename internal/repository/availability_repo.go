package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/careline/hms-backend/internal/domain"
)

type AvailabilityRepository interface {
	Upsert(slot *domain.DoctorAvailability) error
	Window(doctorID uint, from, to time.Time) ([]domain.DoctorAvailability, error)
	AvailableWindow(doctorID uint, from, to time.Time) ([]domain.DoctorAvailability, error)
}

type availabilityRepository struct {
	db *gorm.DB
}

func NewAvailabilityRepository(db *gorm.DB) AvailabilityRepository {
	return &availabilityRepository{db: db}
}

// Upsert keeps at most one row per (doctor, date): an existing row for the
// date is overwritten in place, otherwise the slot is inserted.
func (r *availabilityRepository) Upsert(slot *domain.DoctorAvailability) error {
	var existing domain.DoctorAvailability
	err := r.db.Where("doctor_id = ? AND date = ?", slot.DoctorID, slot.Date).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(slot).Error
		}
		return err
	}
	existing.StartTime = slot.StartTime
	existing.EndTime = slot.EndTime
	existing.IsAvailable = slot.IsAvailable
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*slot = existing
	return nil
}

func (r *availabilityRepository) Window(doctorID uint, from, to time.Time) ([]domain.DoctorAvailability, error) {
	var slots []domain.DoctorAvailability
	err := r.db.Where("doctor_id = ? AND date >= ? AND date <= ?", doctorID, from, to).
		Order("date").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *availabilityRepository) AvailableWindow(doctorID uint, from, to time.Time) ([]domain.DoctorAvailability, error) {
	var slots []domain.DoctorAvailability
	err := r.db.Where("doctor_id = ? AND date >= ? AND date <= ? AND is_available = ?",
		doctorID, from, to, true).
		Order("date").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}
