package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

// DoctorDashboard aggregates the doctor's landing-page data: profile,
// counters and the next seven days of booked appointments.
type DoctorDashboard struct {
	Doctor               *domain.Doctor
	UpcomingAppointments []domain.Appointment
	TodayCount           int
	TotalPatients        int64
	CompletedCount       int64
}

// PatientSummary is a patient row in the doctor's patient list.
type PatientSummary struct {
	Patient           domain.Patient
	TotalAppointments int64
}

type DoctorService interface {
	DoctorByUser(userID uint) (*domain.Doctor, error)
	Dashboard(userID uint) (*DoctorDashboard, error)
	Appointments(userID uint, status string) ([]domain.Appointment, error)
	Patients(userID uint) ([]PatientSummary, error)
	PatientHistory(userID, patientID uint) (*domain.Patient, []domain.Appointment, error)
	GetAvailability(userID uint) ([]domain.DoctorAvailability, error)
	SetAvailability(userID uint, date, start, end string, isAvailable bool) (*domain.DoctorAvailability, error)
}

type doctorService struct {
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
	logger       *logrus.Logger
}

func NewDoctorService(
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	logger *logrus.Logger,
) DoctorService {
	return &doctorService{
		doctors:      doctors,
		patients:     patients,
		appointments: appointments,
		availability: availability,
		logger:       logger,
	}
}

func (s *doctorService) DoctorByUser(userID uint) (*domain.Doctor, error) {
	doctor, err := s.doctors.FindByUserID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doctor, nil
}

func (s *doctorService) Dashboard(userID uint) (*DoctorDashboard, error) {
	doctor, err := s.DoctorByUser(userID)
	if err != nil {
		return nil, err
	}

	today := utils.Today()
	nextWeek := today.AddDate(0, 0, 7)
	upcoming, err := s.appointments.ListBookedByDoctorBetween(doctor.ID, today, nextWeek)
	if err != nil {
		return nil, err
	}
	todayCount := 0
	for _, apt := range upcoming {
		if apt.AppointmentDate.Equal(today) {
			todayCount++
		}
	}
	totalPatients, err := s.appointments.CountDistinctPatients(doctor.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.appointments.CountByDoctorStatus(doctor.ID, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}

	return &DoctorDashboard{
		Doctor:               doctor,
		UpcomingAppointments: upcoming,
		TodayCount:           todayCount,
		TotalPatients:        totalPatients,
		CompletedCount:       completed,
	}, nil
}

func (s *doctorService) Appointments(userID uint, status string) ([]domain.Appointment, error) {
	doctor, err := s.DoctorByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.appointments.ListByDoctor(doctor.ID, status)
}

func (s *doctorService) Patients(userID uint) ([]PatientSummary, error) {
	doctor, err := s.DoctorByUser(userID)
	if err != nil {
		return nil, err
	}
	patients, err := s.patients.ListByDoctor(doctor.ID)
	if err != nil {
		return nil, err
	}
	summaries := make([]PatientSummary, 0, len(patients))
	for _, patient := range patients {
		total, err := s.appointments.CountByPatientAndDoctor(patient.ID, doctor.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, PatientSummary{
			Patient:           patient,
			TotalAppointments: total,
		})
	}
	return summaries, nil
}

// PatientHistory returns the completed, treated appointments this doctor
// has had with the patient, newest first.
func (s *doctorService) PatientHistory(userID, patientID uint) (*domain.Patient, []domain.Appointment, error) {
	doctor, err := s.DoctorByUser(userID)
	if err != nil {
		return nil, nil, err
	}
	patient, err := s.patients.FindByID(patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	appointments, err := s.appointments.ListCompletedByPatientAndDoctor(patientID, doctor.ID)
	if err != nil {
		return nil, nil, err
	}
	treated := appointments[:0]
	for _, apt := range appointments {
		if apt.Treatment != nil {
			treated = append(treated, apt)
		}
	}
	return patient, treated, nil
}

func (s *doctorService) GetAvailability(userID uint) ([]domain.DoctorAvailability, error) {
	doctor, err := s.DoctorByUser(userID)
	if err != nil {
		return nil, err
	}
	today := utils.Today()
	return s.availability.Window(doctor.ID, today, today.AddDate(0, 0, 7))
}

// SetAvailability upserts the doctor's window for a date: a second call for
// the same date overwrites the first.
func (s *doctorService) SetAvailability(userID uint, date, start, end string, isAvailable bool) (*domain.DoctorAvailability, error) {
	doctor, err := s.DoctorByUser(userID)
	if err != nil {
		return nil, err
	}
	if date == "" || start == "" || end == "" {
		return nil, ErrMissingFields
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, err
	}
	startClock, err := utils.ParseClock(start)
	if err != nil {
		return nil, err
	}
	endClock, err := utils.ParseClock(end)
	if err != nil {
		return nil, err
	}

	slot := &domain.DoctorAvailability{
		DoctorID:    doctor.ID,
		Date:        day,
		StartTime:   startClock,
		EndTime:     endClock,
		IsAvailable: isAvailable,
	}
	if err := s.availability.Upsert(slot); err != nil {
		s.logger.WithError(err).Error("Failed to upsert availability")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"Function": "SetAvailability",
		"DoctorId": doctor.ID,
		"Date":     date,
	}).Info("Availability set successfully")
	return slot, nil
}
