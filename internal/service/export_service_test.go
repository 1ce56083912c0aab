package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
)

type fakePatientRepo struct {
	repository.PatientRepository
	byUser map[uint]*domain.Patient
}

func (f *fakePatientRepo) FindByUserID(userID uint) (*domain.Patient, error) {
	patient, ok := f.byUser[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return patient, nil
}

func (f *fakeAppointmentRepo) ListCompletedByPatient(patientID uint) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, apt := range f.appointments {
		if apt.PatientID == patientID && apt.Status == domain.StatusCompleted {
			copied := *apt
			if treatment, ok := f.treatments[apt.ID]; ok {
				t := *treatment
				copied.Treatment = &t
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

// fakeJobStore records every Put so tests can observe the final state of a
// job after the background worker finishes.
type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]domain.ExportJob
	done chan struct{}
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: make(map[string]domain.ExportJob), done: make(chan struct{}, 4)}
}

func (f *fakeJobStore) Put(ctx context.Context, job domain.ExportJob) error {
	f.mu.Lock()
	f.jobs[job.TaskID] = job
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func (f *fakeJobStore) Get(ctx context.Context, taskID string) (*domain.ExportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[taskID]
	if !ok {
		return nil, nil
	}
	return &job, nil
}

func (f *fakeJobStore) waitForPuts(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job store write %d of %d", i+1, n)
		}
	}
}

func exportFixture() (*fakePatientRepo, *fakeAppointmentRepo) {
	patients := &fakePatientRepo{byUser: map[uint]*domain.Patient{
		10: {Name: "Alice Smith"},
	}}
	patients.byUser[10].ID = 5

	repo := newFakeAppointmentRepo()
	visit := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	apt := &domain.Appointment{
		PatientID:       5,
		DoctorID:        2,
		Doctor:          domain.Doctor{Name: "Bob Jones"},
		AppointmentDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "10:30",
		Status:          domain.StatusCompleted,
	}
	apt.ID = 1
	repo.appointments[1] = apt
	repo.treatments[1] = &domain.Treatment{
		AppointmentID: 1,
		Diagnosis:     "flu",
		Prescription:  "rest",
		NextVisit:     &visit,
	}
	return patients, repo
}

func TestExportTreatments(t *testing.T) {
	patients, repo := exportFixture()
	svc := NewExportService(patients, repo, newFakeJobStore(), testLogger())

	csvData, err := svc.ExportTreatments(10)
	if err != nil {
		t.Fatalf("ExportTreatments() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(csvData), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), csvData)
	}
	if lines[0] != "Patient ID,Patient Name,Doctor Name,Appointment Date,Diagnosis,Treatment,Next Visit Suggested" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "5,Alice Smith,Bob Jones,2026-03-10,flu,rest,2026-04-01" {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportTreatmentsSkipsUntreated(t *testing.T) {
	patients, repo := exportFixture()
	delete(repo.treatments, 1)
	svc := NewExportService(patients, repo, newFakeJobStore(), testLogger())

	csvData, err := svc.ExportTreatments(10)
	if err != nil {
		t.Fatalf("ExportTreatments() error = %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(csvData), "\n"); len(lines) != 1 {
		t.Errorf("got %d lines, want header only:\n%s", len(lines), csvData)
	}
}

func TestExportTreatmentsUnknownUser(t *testing.T) {
	patients, repo := exportFixture()
	svc := NewExportService(patients, repo, newFakeJobStore(), testLogger())

	if _, err := svc.ExportTreatments(999); !errors.Is(err, ErrNotFound) {
		t.Errorf("ExportTreatments(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestEnqueueExport(t *testing.T) {
	patients, repo := exportFixture()
	jobs := newFakeJobStore()
	svc := NewExportService(patients, repo, jobs, testLogger())

	taskID, err := svc.EnqueueExport(10)
	if err != nil {
		t.Fatalf("EnqueueExport() error = %v", err)
	}
	if taskID == "" {
		t.Fatal("EnqueueExport() returned empty task id")
	}

	// One Put for PENDING, one from the background worker.
	jobs.waitForPuts(t, 2)

	job, err := svc.ExportStatus(taskID)
	if err != nil {
		t.Fatalf("ExportStatus() error = %v", err)
	}
	if job.State != JobStateSuccess {
		t.Errorf("state = %q, want %q", job.State, JobStateSuccess)
	}
	if !strings.Contains(job.CSVData, "Alice Smith") {
		t.Errorf("csv missing patient row:\n%s", job.CSVData)
	}
}

func TestExportStatusUnknownTask(t *testing.T) {
	patients, repo := exportFixture()
	svc := NewExportService(patients, repo, newFakeJobStore(), testLogger())

	job, err := svc.ExportStatus("no-such-task")
	if err != nil {
		t.Fatalf("ExportStatus() error = %v", err)
	}
	if job.State != JobStatePending {
		t.Errorf("state = %q, want %q", job.State, JobStatePending)
	}
}
