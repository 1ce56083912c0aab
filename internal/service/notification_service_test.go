package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

type fakeDoctorRepo struct {
	repository.DoctorRepository
	all []domain.Doctor
}

func (f *fakeDoctorRepo) ListAll() ([]domain.Doctor, error) {
	return f.all, nil
}

func (f *fakeAppointmentRepo) ListTodayBooked(today time.Time) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, apt := range f.appointments {
		if apt.Status == domain.StatusBooked && apt.AppointmentDate.Equal(today) {
			out = append(out, *apt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByDoctorBetween(doctorID uint, from, to time.Time) ([]domain.Appointment, error) {
	var out []domain.Appointment
	for _, apt := range f.appointments {
		if apt.DoctorID != doctorID {
			continue
		}
		if apt.AppointmentDate.Before(from) || apt.AppointmentDate.After(to) {
			continue
		}
		out = append(out, *apt)
	}
	return out, nil
}

type fakeChat struct {
	messages []string
	err      error
	failOn   string
}

func (f *fakeChat) Post(text string) error {
	if f.err != nil {
		return f.err
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return errors.New("delivery refused")
	}
	f.messages = append(f.messages, text)
	return nil
}

type fakeMailer struct {
	configured bool
	sent       map[string]string
}

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) Send(to, subject, htmlBody string) error {
	if f.sent == nil {
		f.sent = make(map[string]string)
	}
	f.sent[to] = htmlBody
	return nil
}

func todayBooked(id, doctorID uint, patientName, doctorName, clock string) *domain.Appointment {
	apt := &domain.Appointment{
		DoctorID:        doctorID,
		Patient:         domain.Patient{Name: patientName},
		Doctor:          domain.Doctor{Name: doctorName},
		AppointmentDate: utils.Today(),
		AppointmentTime: clock,
		Status:          domain.StatusBooked,
	}
	apt.ID = id
	return apt
}

func TestSendDailyReminders(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.appointments[1] = todayBooked(1, 2, "Alice Smith", "Bob Jones", "10:30")
	repo.appointments[2] = todayBooked(2, 2, "Carol White", "Bob Jones", "11:00")

	tomorrow := todayBooked(3, 2, "Dan Black", "Bob Jones", "09:00")
	tomorrow.AppointmentDate = utils.Today().AddDate(0, 0, 1)
	repo.appointments[3] = tomorrow

	chat := &fakeChat{}
	svc := NewNotificationService(repo, &fakeDoctorRepo{}, chat, &fakeMailer{}, testLogger())

	if sent := svc.SendDailyReminders(); sent != 2 {
		t.Errorf("SendDailyReminders() = %d, want 2", sent)
	}
	found := false
	for _, msg := range chat.messages {
		if msg == "Reminder: Alice Smith, your appointment with Dr. Bob Jones is today at 10:30" {
			found = true
		}
	}
	if !found {
		t.Errorf("reminder text missing, got %q", chat.messages)
	}
}

func TestSendDailyRemindersSkipsFailures(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.appointments[1] = todayBooked(1, 2, "Alice Smith", "Bob Jones", "10:30")
	repo.appointments[2] = todayBooked(2, 2, "Carol White", "Bob Jones", "11:00")

	chat := &fakeChat{failOn: "Alice"}
	svc := NewNotificationService(repo, &fakeDoctorRepo{}, chat, &fakeMailer{}, testLogger())

	if sent := svc.SendDailyReminders(); sent != 1 {
		t.Errorf("SendDailyReminders() = %d, want 1", sent)
	}
}

func TestSendMonthlyReports(t *testing.T) {
	doctor := domain.Doctor{
		Name: "Bob Jones",
		User: domain.User{Email: "bob@hospital.com"},
	}
	doctor.ID = 2
	noMail := domain.Doctor{Name: "Eve Gray"}
	noMail.ID = 3

	repo := newFakeAppointmentRepo()
	first, _ := utils.MonthBounds(utils.Today())
	completed := &domain.Appointment{
		DoctorID:        2,
		Patient:         domain.Patient{Name: "Alice Smith"},
		AppointmentDate: first.AddDate(0, 0, 4),
		Status:          domain.StatusCompleted,
		Treatment:       &domain.Treatment{Diagnosis: "flu"},
	}
	completed.ID = 1
	cancelled := &domain.Appointment{
		DoctorID:        2,
		Patient:         domain.Patient{Name: "Carol White"},
		AppointmentDate: first.AddDate(0, 0, 6),
		Status:          domain.StatusCancelled,
	}
	cancelled.ID = 2
	repo.appointments[1] = completed
	repo.appointments[2] = cancelled

	mailer := &fakeMailer{configured: true}
	svc := NewNotificationService(repo, &fakeDoctorRepo{all: []domain.Doctor{doctor, noMail}}, &fakeChat{}, mailer, testLogger())

	if sent := svc.SendMonthlyReports(); sent != 1 {
		t.Errorf("SendMonthlyReports() = %d, want 1", sent)
	}
	report, ok := mailer.sent["bob@hospital.com"]
	if !ok {
		t.Fatal("no report mailed to bob@hospital.com")
	}
	for _, want := range []string{
		"<li>Total Appointments: 2</li>",
		"<li>Completed: 1</li>",
		"<li>Cancelled: 1</li>",
		"flu",
		"Bob Jones",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestSendMonthlyReportsWithoutMailConfig(t *testing.T) {
	svc := NewNotificationService(newFakeAppointmentRepo(), &fakeDoctorRepo{}, &fakeChat{}, &fakeMailer{configured: false}, testLogger())
	if sent := svc.SendMonthlyReports(); sent != 0 {
		t.Errorf("SendMonthlyReports() = %d, want 0", sent)
	}
}
