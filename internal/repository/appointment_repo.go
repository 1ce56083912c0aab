package repository

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/careline/hms-backend/internal/domain"
)

// ErrSlotTaken surfaces the partial unique index on Booked appointments;
// two concurrent bookings for one slot resolve here, not in the pre-check.
var ErrSlotTaken = errors.New("slot already booked")

type AppointmentRepository interface {
	Create(appointment *domain.Appointment) error
	FindByID(id uint) (*domain.Appointment, error)
	Save(appointment *domain.Appointment) error
	HasBookedSlot(doctorID uint, date time.Time, clock string, excludeID uint) (bool, error)
	ListAll(status string) ([]domain.Appointment, error)
	ListByDoctor(doctorID uint, status string) ([]domain.Appointment, error)
	ListBookedByDoctorBetween(doctorID uint, from, to time.Time) ([]domain.Appointment, error)
	ListByDoctorBetween(doctorID uint, from, to time.Time) ([]domain.Appointment, error)
	ListUpcomingByPatient(patientID uint, from time.Time) ([]domain.Appointment, error)
	ListPastByPatient(patientID uint, before time.Time, limit int) ([]domain.Appointment, error)
	ListCompletedByPatient(patientID uint) ([]domain.Appointment, error)
	ListCompletedByPatientAndDoctor(patientID, doctorID uint) ([]domain.Appointment, error)
	ListTodayBooked(today time.Time) ([]domain.Appointment, error)
	Recent(limit int) ([]domain.Appointment, error)
	Count(status string) (int64, error)
	CountUpcoming(from time.Time) (int64, error)
	CountByDoctorStatus(doctorID uint, status string) (int64, error)
	CountByPatientAndDoctor(patientID, doctorID uint) (int64, error)
	CountDistinctPatients(doctorID uint) (int64, error)
	FindTreatment(appointmentID uint) (*domain.Treatment, error)
	CompleteWithTreatment(appointment *domain.Appointment, treatment *domain.Treatment) error
}

type appointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (r *appointmentRepository) Create(appointment *domain.Appointment) error {
	if err := r.db.Create(appointment).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *appointmentRepository) FindByID(id uint) (*domain.Appointment, error) {
	var appointment domain.Appointment
	err := r.db.Preload("Patient").Preload("Patient.User").
		Preload("Doctor").Preload("Treatment").
		First(&appointment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Save(appointment *domain.Appointment) error {
	if err := r.db.Save(appointment).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

// HasBookedSlot reports whether another Booked appointment already holds the
// (doctor, date, time) slot. excludeID skips the appointment being
// rescheduled.
func (r *appointmentRepository) HasBookedSlot(doctorID uint, date time.Time, clock string, excludeID uint) (bool, error) {
	query := r.db.Model(&domain.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status = ?",
			doctorID, date, clock, domain.StatusBooked)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepository) ListAll(status string) ([]domain.Appointment, error) {
	query := r.db.Preload("Patient").Preload("Doctor")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var appointments []domain.Appointment
	err := query.Order("appointment_date DESC, appointment_time DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(doctorID uint, status string) ([]domain.Appointment, error) {
	query := r.db.Preload("Patient").Preload("Treatment").
		Where("doctor_id = ?", doctorID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var appointments []domain.Appointment
	err := query.Order("appointment_date DESC, appointment_time DESC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBookedByDoctorBetween(doctorID uint, from, to time.Time) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Patient").
		Where("doctor_id = ? AND appointment_date >= ? AND appointment_date <= ? AND status = ?",
			doctorID, from, to, domain.StatusBooked).
		Order("appointment_date, appointment_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctorBetween(doctorID uint, from, to time.Time) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Patient").Preload("Treatment").
		Where("doctor_id = ? AND appointment_date >= ? AND appointment_date <= ?", doctorID, from, to).
		Order("appointment_date, appointment_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListUpcomingByPatient(patientID uint, from time.Time) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Doctor").
		Where("patient_id = ? AND appointment_date >= ? AND status = ?",
			patientID, from, domain.StatusBooked).
		Order("appointment_date, appointment_time").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListPastByPatient(patientID uint, before time.Time, limit int) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Where("appointment_date < ? OR status IN ?", before,
			[]string{domain.StatusCompleted, domain.StatusCancelled}).
		Order("appointment_date DESC").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListCompletedByPatient(patientID uint) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Doctor").Preload("Treatment").
		Where("patient_id = ? AND status = ?", patientID, domain.StatusCompleted).
		Order("appointment_date DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListCompletedByPatientAndDoctor(patientID, doctorID uint) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Treatment").
		Where("patient_id = ? AND doctor_id = ? AND status = ?",
			patientID, doctorID, domain.StatusCompleted).
		Order("appointment_date DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) ListTodayBooked(today time.Time) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Patient").Preload("Doctor").
		Where("appointment_date = ? AND status = ?", today, domain.StatusBooked).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Recent(limit int) ([]domain.Appointment, error) {
	var appointments []domain.Appointment
	err := r.db.Preload("Patient").Preload("Doctor").
		Order("created_at DESC").
		Limit(limit).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(status string) (int64, error) {
	query := r.db.Model(&domain.Appointment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountUpcoming(from time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Appointment{}).
		Where("appointment_date >= ? AND status = ?", from, domain.StatusBooked).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountByDoctorStatus(doctorID uint, status string) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Appointment{}).
		Where("doctor_id = ? AND status = ?", doctorID, status).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountByPatientAndDoctor(patientID, doctorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Appointment{}).
		Where("patient_id = ? AND doctor_id = ?", patientID, doctorID).
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountDistinctPatients(doctorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Count(&count).Error
	return count, err
}

func (r *appointmentRepository) FindTreatment(appointmentID uint) (*domain.Treatment, error) {
	var treatment domain.Treatment
	err := r.db.Where("appointment_id = ?", appointmentID).First(&treatment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &treatment, nil
}

// CompleteWithTreatment persists the status change and the treatment
// record in one transaction so a failed treatment write never leaves an
// appointment marked Completed without its record.
func (r *appointmentRepository) CompleteWithTreatment(appointment *domain.Appointment, treatment *domain.Treatment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(appointment).Error; err != nil {
			return err
		}
		return tx.Save(treatment).Error
	})
}
