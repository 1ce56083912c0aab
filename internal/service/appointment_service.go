package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

// EventPublisher pushes appointment lifecycle events to the event stream.
// Publishing is best-effort; the scheduling engine never fails a request
// because the stream is down.
type EventPublisher interface {
	PublishAppointmentEvent(event domain.AppointmentEvent) error
}

// TreatmentInput carries the partial treatment payload of a Complete call.
// Nil fields were omitted by the caller and keep their stored value.
type TreatmentInput struct {
	Diagnosis    *string
	Prescription *string
	Notes        *string
	NextVisit    *string // YYYY-MM-DD
}

type AppointmentService interface {
	Book(patientID, doctorID uint, date, clock, reason string) (*domain.Appointment, error)
	Reschedule(appointmentID, patientID uint, newDate, newClock string) (*domain.Appointment, error)
	CancelByPatient(appointmentID, patientID uint) error
	CancelByDoctor(appointmentID, doctorID uint) error
	Complete(appointmentID, doctorID uint, input TreatmentInput) (*domain.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	publisher EventPublisher
	logger    *logrus.Logger
}

func NewAppointmentService(repo repository.AppointmentRepository, publisher EventPublisher, logger *logrus.Logger) AppointmentService {
	return &appointmentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Book creates a Booked appointment for the slot. The repository pre-check
// gives a clean conflict error; the partial unique index on Booked rows
// closes the race between two concurrent bookings, surfacing as
// ErrSlotTaken from Create.
func (s *appointmentService) Book(patientID, doctorID uint, date, clock, reason string) (*domain.Appointment, error) {
	s.logger.WithFields(logrus.Fields{
		"Function":  "Book",
		"PatientId": patientID,
		"DoctorId":  doctorID,
		"Date":      date,
		"Time":      clock,
	}).Info("Booking appointment")

	appointmentDate, err := utils.ParseDate(date)
	if err != nil {
		return nil, err
	}
	appointmentTime, err := utils.ParseClock(clock)
	if err != nil {
		return nil, err
	}
	if appointmentDate.Before(utils.Today()) {
		return nil, ErrPastDate
	}

	taken, err := s.repo.HasBookedSlot(doctorID, appointmentDate, appointmentTime, 0)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check slot availability")
		return nil, err
	}
	if taken {
		return nil, ErrSlotConflict
	}

	appointment := &domain.Appointment{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: appointmentDate,
		AppointmentTime: appointmentTime,
		Status:          domain.StatusBooked,
		Reason:          reason,
	}
	if err := s.repo.Create(appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotConflict
		}
		s.logger.WithError(err).Error("Failed to save appointment")
		return nil, err
	}

	s.publish(appointment)
	s.logger.WithField("AppointmentId", appointment.ID).Info("Appointment booked successfully")
	return appointment, nil
}

// Reschedule moves a Booked appointment to a new date and/or time. Empty
// strings mean the field was not provided.
func (s *appointmentService) Reschedule(appointmentID, patientID uint, newDate, newClock string) (*domain.Appointment, error) {
	s.logger.WithFields(logrus.Fields{
		"Function":      "Reschedule",
		"AppointmentId": appointmentID,
		"PatientId":     patientID,
	}).Info("Rescheduling appointment")

	appointment, err := s.repo.FindByID(appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.PatientID != patientID {
		return nil, ErrForbidden
	}
	if appointment.Status != domain.StatusBooked {
		return nil, ErrInvalidState
	}

	if newDate != "" {
		date, err := utils.ParseDate(newDate)
		if err != nil {
			return nil, err
		}
		if date.Before(utils.Today()) {
			return nil, ErrPastDate
		}
		appointment.AppointmentDate = date
	}

	if newClock != "" {
		clock, err := utils.ParseClock(newClock)
		if err != nil {
			return nil, err
		}
		// Conflict check runs against the possibly already-moved date,
		// skipping the appointment's own slot.
		taken, err := s.repo.HasBookedSlot(appointment.DoctorID, appointment.AppointmentDate, clock, appointment.ID)
		if err != nil {
			s.logger.WithError(err).Error("Failed to check slot availability")
			return nil, err
		}
		if taken {
			return nil, ErrSlotConflict
		}
		appointment.AppointmentTime = clock
	}

	if err := s.repo.Save(appointment); err != nil {
		if errors.Is(err, repository.ErrSlotTaken) {
			return nil, ErrSlotConflict
		}
		s.logger.WithError(err).Error("Failed to save rescheduled appointment")
		return nil, err
	}

	s.logger.WithField("AppointmentId", appointment.ID).Info("Appointment rescheduled successfully")
	return appointment, nil
}

func (s *appointmentService) CancelByPatient(appointmentID, patientID uint) error {
	return s.cancel(appointmentID, func(a *domain.Appointment) bool {
		return a.PatientID == patientID
	})
}

func (s *appointmentService) CancelByDoctor(appointmentID, doctorID uint) error {
	return s.cancel(appointmentID, func(a *domain.Appointment) bool {
		return a.DoctorID == doctorID
	})
}

// cancel transitions Booked -> Cancelled. Completed and Cancelled are
// terminal; cancelling them fails with ErrInvalidState.
func (s *appointmentService) cancel(appointmentID uint, owns func(*domain.Appointment) bool) error {
	appointment, err := s.repo.FindByID(appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !owns(appointment) {
		return ErrForbidden
	}
	if appointment.Status != domain.StatusBooked {
		return ErrInvalidState
	}

	appointment.Status = domain.StatusCancelled
	if err := s.repo.Save(appointment); err != nil {
		s.logger.WithError(err).Error("Failed to cancel appointment")
		return err
	}

	s.publish(appointment)
	s.logger.WithField("AppointmentId", appointment.ID).Info("Appointment cancelled successfully")
	return nil
}

// Complete marks the appointment Completed and upserts its treatment
// record. Completing twice merges: omitted fields keep their stored value.
func (s *appointmentService) Complete(appointmentID, doctorID uint, input TreatmentInput) (*domain.Appointment, error) {
	s.logger.WithFields(logrus.Fields{
		"Function":      "Complete",
		"AppointmentId": appointmentID,
		"DoctorId":      doctorID,
	}).Info("Completing appointment")

	appointment, err := s.repo.FindByID(appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appointment.DoctorID != doctorID {
		return nil, ErrForbidden
	}

	treatment, err := s.repo.FindTreatment(appointment.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		treatment = &domain.Treatment{AppointmentID: appointment.ID}
	}
	if input.Diagnosis != nil {
		treatment.Diagnosis = *input.Diagnosis
	}
	if input.Prescription != nil {
		treatment.Prescription = *input.Prescription
	}
	if input.Notes != nil {
		treatment.Notes = *input.Notes
	}
	if input.NextVisit != nil {
		if nextVisit, err := utils.ParseDate(*input.NextVisit); err == nil {
			treatment.NextVisit = &nextVisit
		}
	}

	// Status flip and treatment write commit together; a failure leaves
	// the appointment Booked.
	appointment.Status = domain.StatusCompleted
	if err := s.repo.CompleteWithTreatment(appointment, treatment); err != nil {
		s.logger.WithError(err).Error("Failed to complete appointment")
		return nil, err
	}
	appointment.Treatment = treatment

	s.publish(appointment)
	s.logger.WithField("AppointmentId", appointment.ID).Info("Appointment completed successfully")
	return appointment, nil
}

func (s *appointmentService) publish(appointment *domain.Appointment) {
	if s.publisher == nil {
		return
	}
	event := domain.AppointmentEvent{
		AppointmentID:   appointment.ID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		AppointmentDate: utils.FormatDate(appointment.AppointmentDate),
		AppointmentTime: appointment.AppointmentTime,
		Status:          appointment.Status,
	}
	if err := s.publisher.PublishAppointmentEvent(event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish appointment event")
	}
}
