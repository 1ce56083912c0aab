package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

// Export job states, following the task-queue convention: an unknown job id
// reads as PENDING.
const (
	JobStatePending = "PENDING"
	JobStateSuccess = "SUCCESS"
	JobStateFailure = "FAILURE"
)

// JobStore persists export job status and results. The scheduling engine
// has no dependency on it; it only backs the async export endpoints.
type JobStore interface {
	Put(ctx context.Context, job domain.ExportJob) error
	Get(ctx context.Context, taskID string) (*domain.ExportJob, error)
}

type ExportService interface {
	ExportTreatments(userID uint) (string, error)
	EnqueueExport(userID uint) (string, error)
	ExportStatus(taskID string) (*domain.ExportJob, error)
}

type exportService struct {
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	jobs         JobStore
	logger       *logrus.Logger
}

func NewExportService(
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	jobs JobStore,
	logger *logrus.Logger,
) ExportService {
	return &exportService{
		patients:     patients,
		appointments: appointments,
		jobs:         jobs,
		logger:       logger,
	}
}

// ExportTreatments renders the patient's completed-treatment history as CSV.
func (s *exportService) ExportTreatments(userID uint) (string, error) {
	patient, err := s.patients.FindByUserID(userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.buildCSV(patient)
}

// EnqueueExport starts the export in the background and returns a task id
// to poll.
func (s *exportService) EnqueueExport(userID uint) (string, error) {
	patient, err := s.patients.FindByUserID(userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return "", ErrNotFound
		}
		return "", err
	}

	taskID := uuid.New().String()
	ctx := context.Background()
	if err := s.jobs.Put(ctx, domain.ExportJob{TaskID: taskID, State: JobStatePending}); err != nil {
		return "", err
	}

	go s.runExport(taskID, patient)

	s.logger.WithFields(logrus.Fields{
		"Function": "EnqueueExport",
		"TaskId":   taskID,
	}).Info("Export job enqueued")
	return taskID, nil
}

// ExportStatus reads the job state; an id the store has never seen reports
// as PENDING, matching task-queue polling semantics.
func (s *exportService) ExportStatus(taskID string) (*domain.ExportJob, error) {
	job, err := s.jobs.Get(context.Background(), taskID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return &domain.ExportJob{TaskID: taskID, State: JobStatePending}, nil
	}
	return job, nil
}

func (s *exportService) runExport(taskID string, patient *domain.Patient) {
	ctx := context.Background()
	csvData, err := s.buildCSV(patient)
	if err != nil {
		s.logger.WithError(err).WithField("TaskId", taskID).Error("Export job failed")
		_ = s.jobs.Put(ctx, domain.ExportJob{TaskID: taskID, State: JobStateFailure})
		return
	}
	if err := s.jobs.Put(ctx, domain.ExportJob{TaskID: taskID, State: JobStateSuccess, CSVData: csvData}); err != nil {
		s.logger.WithError(err).WithField("TaskId", taskID).Error("Failed to store export result")
		return
	}
	s.logger.WithField("TaskId", taskID).Info("Export job completed")
}

func (s *exportService) buildCSV(patient *domain.Patient) (string, error) {
	appointments, err := s.appointments.ListCompletedByPatient(patient.ID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	_ = writer.Write([]string{
		"Patient ID", "Patient Name", "Doctor Name", "Appointment Date",
		"Diagnosis", "Treatment", "Next Visit Suggested",
	})
	for _, apt := range appointments {
		if apt.Treatment == nil {
			continue
		}
		nextVisit := ""
		if apt.Treatment.NextVisit != nil {
			nextVisit = utils.FormatDate(*apt.Treatment.NextVisit)
		}
		_ = writer.Write([]string{
			strconv.FormatUint(uint64(patient.ID), 10),
			patient.Name,
			apt.Doctor.Name,
			utils.FormatDate(apt.AppointmentDate),
			apt.Treatment.Diagnosis,
			apt.Treatment.Prescription,
			nextVisit,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
