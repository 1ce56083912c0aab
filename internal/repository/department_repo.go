package repository

import (
	"gorm.io/gorm"

	"github.com/careline/hms-backend/internal/domain"
)

type DepartmentRepository interface {
	ListSummaries() ([]domain.DepartmentSummary, error)
	List() ([]domain.Department, error)
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

// ListSummaries counts only doctors with an active account, matching what
// patients can actually book against.
func (r *departmentRepository) ListSummaries() ([]domain.DepartmentSummary, error) {
	departments, err := r.List()
	if err != nil {
		return nil, err
	}
	summaries := make([]domain.DepartmentSummary, 0, len(departments))
	for _, dept := range departments {
		var count int64
		err := r.db.Model(&domain.Doctor{}).
			Joins("JOIN users ON users.id = doctors.user_id").
			Where("doctors.department_id = ? AND users.is_active = ?", dept.ID, true).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, domain.DepartmentSummary{
			ID:           dept.ID,
			Name:         dept.Name,
			Description:  dept.Description,
			DoctorsCount: int(count),
		})
	}
	return summaries, nil
}

func (r *departmentRepository) List() ([]domain.Department, error) {
	var departments []domain.Department
	if err := r.db.Order("id").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}
