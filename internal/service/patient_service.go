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

// PatientDashboard aggregates the patient's landing-page data.
type PatientDashboard struct {
	Patient              *domain.Patient
	Departments          []domain.DepartmentSummary
	UpcomingAppointments []domain.Appointment
	PastAppointments     []domain.Appointment
}

// DoctorWithAvailability pairs a doctor with the advisory availability
// windows for the next seven days. Booking does not validate against these
// windows; they are informational.
type DoctorWithAvailability struct {
	Doctor       domain.Doctor
	Availability []domain.DoctorAvailability
}

// UpdateProfileInput is a partial profile update; nil fields keep their
// stored value.
type UpdateProfileInput struct {
	Name        *string
	Phone       *string
	DateOfBirth *string
	Gender      *string
	Address     *string
	BloodGroup  *string
}

type PatientService interface {
	PatientByUser(userID uint) (*domain.Patient, error)
	Dashboard(userID uint) (*PatientDashboard, error)
	Profile(userID uint) (*domain.Patient, error)
	UpdateProfile(userID uint, input UpdateProfileInput) error
	Doctors(filter repository.DoctorFilter) ([]DoctorWithAvailability, error)
	TreatmentHistory(userID uint) ([]domain.Appointment, error)
	Departments() ([]domain.DepartmentSummary, error)
}

type patientService struct {
	patients     repository.PatientRepository
	doctors      repository.DoctorRepository
	departments  repository.DepartmentRepository
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
	cache        cache.Store
	logger       *logrus.Logger
}

func NewPatientService(
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	departments repository.DepartmentRepository,
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	cacheStore cache.Store,
	logger *logrus.Logger,
) PatientService {
	return &patientService{
		patients:     patients,
		doctors:      doctors,
		departments:  departments,
		appointments: appointments,
		availability: availability,
		cache:        cacheStore,
		logger:       logger,
	}
}

func (s *patientService) PatientByUser(userID uint) (*domain.Patient, error) {
	patient, err := s.patients.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return patient, nil
}

func (s *patientService) Dashboard(userID uint) (*PatientDashboard, error) {
	patient, err := s.PatientByUser(userID)
	if err != nil {
		return nil, err
	}
	departments, err := s.Departments()
	if err != nil {
		return nil, err
	}
	today := utils.Today()
	upcoming, err := s.appointments.ListUpcomingByPatient(patient.ID, today)
	if err != nil {
		return nil, err
	}
	past, err := s.appointments.ListPastByPatient(patient.ID, today, 5)
	if err != nil {
		return nil, err
	}
	return &PatientDashboard{
		Patient:              patient,
		Departments:          departments,
		UpcomingAppointments: upcoming,
		PastAppointments:     past,
	}, nil
}

func (s *patientService) Profile(userID uint) (*domain.Patient, error) {
	return s.PatientByUser(userID)
}

func (s *patientService) UpdateProfile(userID uint, input UpdateProfileInput) error {
	patient, err := s.PatientByUser(userID)
	if err != nil {
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
		s.logger.WithError(err).Error("Failed to update patient profile")
		return err
	}
	s.logger.WithField("PatientId", patient.ID).Info("Profile updated successfully")
	return nil
}

// Doctors lists bookable doctors with their advisory availability for the
// next seven days.
func (s *patientService) Doctors(filter repository.DoctorFilter) ([]DoctorWithAvailability, error) {
	doctors, err := s.doctors.Browse(filter)
	if err != nil {
		return nil, err
	}
	today := utils.Today()
	nextWeek := today.AddDate(0, 0, 7)
	result := make([]DoctorWithAvailability, 0, len(doctors))
	for _, doctor := range doctors {
		slots, err := s.availability.AvailableWindow(doctor.ID, today, nextWeek)
		if err != nil {
			return nil, err
		}
		result = append(result, DoctorWithAvailability{
			Doctor:       doctor,
			Availability: slots,
		})
	}
	return result, nil
}

// TreatmentHistory returns completed appointments that carry a treatment
// record, newest first.
func (s *patientService) TreatmentHistory(userID uint) ([]domain.Appointment, error) {
	patient, err := s.PatientByUser(userID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.ListCompletedByPatient(patient.ID)
	if err != nil {
		return nil, err
	}
	treated := appointments[:0]
	for _, apt := range appointments {
		if apt.Treatment != nil {
			treated = append(treated, apt)
		}
	}
	return treated, nil
}

// Departments shares the read-through cache entry with the admin listing.
func (s *patientService) Departments() ([]domain.DepartmentSummary, error) {
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
