package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/cache"
	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

// CreateDoctorInput carries the admin doctor-provisioning payload.
type CreateDoctorInput struct {
	Username        string
	Email           string
	Password        string
	Name            string
	Specialization  string
	DepartmentID    uint
	Phone           string
	ExperienceYears int
	Qualification   string
}

// UpdateDoctorInput is a partial update; nil fields are left untouched.
type UpdateDoctorInput struct {
	Name            *string
	Specialization  *string
	DepartmentID    *uint
	Phone           *string
	ExperienceYears *int
	Qualification   *string
	Email           *string
}

// UpdatePatientInput is a partial update; nil fields are left untouched.
type UpdatePatientInput struct {
	Name        *string
	Phone       *string
	DateOfBirth *string
	Gender      *string
	Address     *string
	BloodGroup  *string
	Email       *string
}

// SearchResults groups the cross-entity admin search response.
type SearchResults struct {
	Doctors  []domain.Doctor
	Patients []domain.Patient
}

type AdminService interface {
	DashboardStats() (*domain.DashboardStats, error)
	Departments() ([]domain.DepartmentSummary, error)
	ListDoctors(search string) ([]domain.Doctor, error)
	CreateDoctor(input CreateDoctorInput) (*domain.Doctor, error)
	UpdateDoctor(doctorID uint, input UpdateDoctorInput) (*domain.Doctor, error)
	DeactivateDoctor(doctorID uint) error
	ListPatients(search string) ([]domain.Patient, error)
	UpdatePatient(patientID uint, input UpdatePatientInput) error
	DeactivatePatient(patientID uint) error
	ListAppointments(status string) ([]domain.Appointment, error)
	Search(query, searchType string) (*SearchResults, error)
}

type adminService struct {
	users        repository.UserRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	departments  repository.DepartmentRepository
	appointments repository.AppointmentRepository
	cache        cache.Store
	logger       *logrus.Logger
}

func NewAdminService(
	users repository.UserRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	departments repository.DepartmentRepository,
	appointments repository.AppointmentRepository,
	cacheStore cache.Store,
	logger *logrus.Logger,
) AdminService {
	return &adminService{
		users:        users,
		doctors:      doctors,
		patients:     patients,
		departments:  departments,
		appointments: appointments,
		cache:        cacheStore,
		logger:       logger,
	}
}

// DashboardStats is a read-through cached aggregate: cache hit returns the
// stored payload verbatim, a miss recomputes and stores it.
func (s *adminService) DashboardStats() (*domain.DashboardStats, error) {
	ctx := context.Background()
	if raw, ok := s.cache.Get(ctx, cache.KeyAdminDashboard); ok {
		var stats domain.DashboardStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return &stats, nil
		}
	}

	totalDoctors, err := s.doctors.Count()
	if err != nil {
		return nil, err
	}
	totalPatients, err := s.patients.Count()
	if err != nil {
		return nil, err
	}
	totalAppointments, err := s.appointments.Count("")
	if err != nil {
		return nil, err
	}
	upcoming, err := s.appointments.CountUpcoming(utils.Today())
	if err != nil {
		return nil, err
	}
	recent, err := s.appointments.Recent(5)
	if err != nil {
		return nil, err
	}

	stats := &domain.DashboardStats{
		TotalDoctors:         totalDoctors,
		TotalPatients:        totalPatients,
		TotalAppointments:    totalAppointments,
		UpcomingAppointments: upcoming,
		RecentAppointments:   make([]domain.RecentAppointment, 0, len(recent)),
	}
	for _, apt := range recent {
		stats.RecentAppointments = append(stats.RecentAppointments, domain.RecentAppointment{
			ID:          apt.ID,
			PatientName: apt.Patient.Name,
			DoctorName:  apt.Doctor.Name,
			Date:        utils.FormatDate(apt.AppointmentDate),
			Time:        apt.AppointmentTime,
			Status:      apt.Status,
		})
	}

	if raw, err := json.Marshal(stats); err == nil {
		s.cache.Set(ctx, cache.KeyAdminDashboard, raw)
	}
	return stats, nil
}

func (s *adminService) Departments() ([]domain.DepartmentSummary, error) {
	ctx := context.Background()
	if raw, ok := s.cache.Get(ctx, cache.KeyDepartments); ok {
		var summaries []domain.DepartmentSummary
		if err := json.Unmarshal(raw, &summaries); err == nil {
			return summaries, nil
		}
	}

	summaries, err := s.departments.ListSummaries()
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(summaries); err == nil {
		s.cache.Set(ctx, cache.KeyDepartments, raw)
	}
	return summaries, nil
}

func (s *adminService) ListDoctors(search string) ([]domain.Doctor, error) {
	return s.doctors.ListActive(search)
}

func (s *adminService) CreateDoctor(input CreateDoctorInput) (*domain.Doctor, error) {
	s.logger.WithFields(logrus.Fields{
		"Function": "CreateDoctor",
		"Username": input.Username,
	}).Info("Creating doctor")

	if input.Username == "" || input.Email == "" || input.Password == "" ||
		input.Name == "" || input.Specialization == "" || input.DepartmentID == 0 {
		return nil, ErrMissingFields
	}
	if taken, err := s.users.UsernameExists(input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.users.EmailExists(input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Role:     domain.RoleDoctor,
		IsActive: true,
	}
	doctor := &domain.Doctor{
		Name:            input.Name,
		Specialization:  input.Specialization,
		DepartmentID:    input.DepartmentID,
		Phone:           input.Phone,
		ExperienceYears: input.ExperienceYears,
		Qualification:   input.Qualification,
	}
	if err := s.users.CreateDoctorAccount(user, doctor); err != nil {
		s.logger.WithError(err).Error("Failed to create doctor account")
		return nil, err
	}
	doctor.User = *user

	s.invalidate(cache.KeyAdminDashboard, cache.KeyDepartments)
	s.logger.WithField("DoctorId", doctor.ID).Info("Doctor created successfully")
	return doctor, nil
}

func (s *adminService) UpdateDoctor(doctorID uint, input UpdateDoctorInput) (*domain.Doctor, error) {
	doctor, err := s.doctors.FindByID(doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.Name != nil {
		doctor.Name = *input.Name
	}
	if input.Specialization != nil {
		doctor.Specialization = *input.Specialization
	}
	if input.DepartmentID != nil {
		doctor.DepartmentID = *input.DepartmentID
	}
	if input.Phone != nil {
		doctor.Phone = *input.Phone
	}
	if input.ExperienceYears != nil {
		doctor.ExperienceYears = *input.ExperienceYears
	}
	if input.Qualification != nil {
		doctor.Qualification = *input.Qualification
	}
	if err := s.doctors.Save(doctor); err != nil {
		return nil, err
	}

	if input.Email != nil {
		user, err := s.users.FindByID(doctor.UserID)
		if err != nil {
			return nil, err
		}
		user.Email = *input.Email
		if err := s.users.Save(user); err != nil {
			return nil, err
		}
	}

	s.invalidate(cache.KeyAdminDashboard, cache.KeyDepartments)
	s.logger.WithField("DoctorId", doctor.ID).Info("Doctor updated successfully")
	return doctor, nil
}

// DeactivateDoctor soft-deletes by flipping the account's active flag.
func (s *adminService) DeactivateDoctor(doctorID uint) error {
	doctor, err := s.doctors.FindByID(doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	user, err := s.users.FindByID(doctor.UserID)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.users.Save(user); err != nil {
		return err
	}

	s.invalidate(cache.KeyAdminDashboard, cache.KeyDepartments)
	s.logger.WithField("DoctorId", doctorID).Info("Doctor deactivated")
	return nil
}

func (s *adminService) ListPatients(search string) ([]domain.Patient, error) {
	return s.patients.ListActive(search)
}

func (s *adminService) UpdatePatient(patientID uint, input UpdatePatientInput) error {
	patient, err := s.patients.FindByID(patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if input.Name != nil {
		patient.Name = *input.Name
	}
	if input.Phone != nil {
		patient.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		dob, err := utils.ParseDate(*input.DateOfBirth)
		if err != nil {
			return err
		}
		patient.DateOfBirth = &dob
	}
	if input.Gender != nil {
		patient.Gender = *input.Gender
	}
	if input.Address != nil {
		patient.Address = *input.Address
	}
	if input.BloodGroup != nil {
		patient.BloodGroup = *input.BloodGroup
	}
	if err := s.patients.Save(patient); err != nil {
		return err
	}

	if input.Email != nil {
		user, err := s.users.FindByID(patient.UserID)
		if err != nil {
			return err
		}
		user.Email = *input.Email
		if err := s.users.Save(user); err != nil {
			return err
		}
	}

	s.invalidate(cache.KeyAdminDashboard)
	s.logger.WithField("PatientId", patientID).Info("Patient updated successfully")
	return nil
}

func (s *adminService) DeactivatePatient(patientID uint) error {
	patient, err := s.patients.FindByID(patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	user, err := s.users.FindByID(patient.UserID)
	if err != nil {
		return err
	}
	user.IsActive = false
	if err := s.users.Save(user); err != nil {
		return err
	}

	s.invalidate(cache.KeyAdminDashboard)
	s.logger.WithField("PatientId", patientID).Info("Patient deactivated")
	return nil
}

func (s *adminService) ListAppointments(status string) ([]domain.Appointment, error) {
	return s.appointments.ListAll(status)
}

func (s *adminService) Search(query, searchType string) (*SearchResults, error) {
	results := &SearchResults{
		Doctors:  []domain.Doctor{},
		Patients: []domain.Patient{},
	}
	if searchType == "all" || searchType == "doctor" {
		doctors, err := s.doctors.ListActive(query)
		if err != nil {
			return nil, err
		}
		if len(doctors) > 10 {
			doctors = doctors[:10]
		}
		results.Doctors = doctors
	}
	if searchType == "all" || searchType == "patient" {
		patients, err := s.patients.ListActive(query)
		if err != nil {
			return nil, err
		}
		if len(patients) > 10 {
			patients = patients[:10]
		}
		results.Patients = patients
	}
	return results, nil
}

// invalidate deletes the aggregate cache keys touched by a mutation. The
// delete is synchronous so readers never see stale data past the write.
func (s *adminService) invalidate(keys ...string) {
	s.cache.Delete(context.Background(), keys...)
}
