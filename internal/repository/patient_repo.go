package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/careline/hms-backend/internal/domain"
)

type PatientRepository interface {
	FindByID(id uint) (*domain.Patient, error)
	FindByUserID(userID uint) (*domain.Patient, error)
	ListActive(search string) ([]domain.Patient, error)
	ListByDoctor(doctorID uint) ([]domain.Patient, error)
	Count() (int64, error)
	Save(patient *domain.Patient) error
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) FindByID(id uint) (*domain.Patient, error) {
	var patient domain.Patient
	if err := r.db.Preload("User").First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) FindByUserID(userID uint) (*domain.Patient, error) {
	var patient domain.Patient
	err := r.db.Preload("User").Where("user_id = ?", userID).First(&patient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &patient, nil
}

func (r *patientRepository) ListActive(search string) ([]domain.Patient, error) {
	query := r.db.Preload("User").
		Joins("JOIN users ON users.id = patients.user_id").
		Where("users.is_active = ?", true)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("patients.name ILIKE ? OR patients.phone ILIKE ?", pattern, pattern)
	}
	var patients []domain.Patient
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// ListByDoctor returns the distinct patients who have ever had an
// appointment with the doctor.
func (r *patientRepository) ListByDoctor(doctorID uint) ([]domain.Patient, error) {
	var patients []domain.Patient
	err := r.db.Preload("User").
		Joins("JOIN appointments ON appointments.patient_id = patients.id").
		Where("appointments.doctor_id = ?", doctorID).
		Distinct("patients.*").
		Find(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *patientRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Patient{}).Count(&count).Error
	return count, err
}

func (r *patientRepository) Save(patient *domain.Patient) error {
	return r.db.Save(patient).Error
}
