package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/careline/hms-backend/internal/domain"
)

// DoctorFilter narrows the patient-facing doctor browse.
type DoctorFilter struct {
	Specialization string
	DepartmentID   uint
	Search         string
}

type DoctorRepository interface {
	FindByID(id uint) (*domain.Doctor, error)
	FindByUserID(userID uint) (*domain.Doctor, error)
	ListActive(search string) ([]domain.Doctor, error)
	Browse(filter DoctorFilter) ([]domain.Doctor, error)
	ListAll() ([]domain.Doctor, error)
	Count() (int64, error)
	Save(doctor *domain.Doctor) error
}

type doctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepository(db *gorm.DB) DoctorRepository {
	return &doctorRepository{db: db}
}

func (r *doctorRepository) FindByID(id uint) (*domain.Doctor, error) {
	var doctor domain.Doctor
	err := r.db.Preload("User").Preload("Department").First(&doctor, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doctor, nil
}

func (r *doctorRepository) FindByUserID(userID uint) (*domain.Doctor, error) {
	var doctor domain.Doctor
	err := r.db.Preload("User").Preload("Department").
		Where("user_id = ?", userID).First(&doctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doctor, nil
}

// ListActive returns doctors whose account is still active, optionally
// filtered by a name/specialization search term.
func (r *doctorRepository) ListActive(search string) ([]domain.Doctor, error) {
	query := r.db.Preload("User").Preload("Department").
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("users.is_active = ?", true)
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("doctors.name ILIKE ? OR doctors.specialization ILIKE ?", pattern, pattern)
	}
	var doctors []domain.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Browse(filter DoctorFilter) ([]domain.Doctor, error) {
	query := r.db.Preload("User").Preload("Department").
		Joins("JOIN users ON users.id = doctors.user_id").
		Where("users.is_active = ?", true)
	if filter.Specialization != "" {
		query = query.Where("doctors.specialization ILIKE ?", "%"+filter.Specialization+"%")
	}
	if filter.DepartmentID != 0 {
		query = query.Where("doctors.department_id = ?", filter.DepartmentID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("doctors.name ILIKE ? OR doctors.specialization ILIKE ?", pattern, pattern)
	}
	var doctors []domain.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) ListAll() ([]domain.Doctor, error) {
	var doctors []domain.Doctor
	if err := r.db.Preload("User").Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (r *doctorRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Doctor{}).Count(&count).Error
	return count, err
}

func (r *doctorRepository) Save(doctor *domain.Doctor) error {
	return r.db.Save(doctor).Error
}
