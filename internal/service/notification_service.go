package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

// ChatNotifier posts a plain-text message to the configured chat channel.
type ChatNotifier interface {
	Post(text string) error
}

// MailSender delivers an HTML mail. Configured reports whether outbound
// mail is set up at all; when it is not, report delivery is a silent no-op.
type MailSender interface {
	Configured() bool
	Send(to, subject, htmlBody string) error
}

// NotificationService runs the scheduled jobs. Both jobs are best-effort:
// per-item delivery failures are logged and skipped, and each job returns
// only a summary count.
type NotificationService interface {
	SendDailyReminders() int
	SendMonthlyReports() int
}

type notificationService struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	chat         ChatNotifier
	mail         MailSender
	logger       *logrus.Logger
}

func NewNotificationService(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	chat ChatNotifier,
	mail MailSender,
	logger *logrus.Logger,
) NotificationService {
	return &notificationService{
		appointments: appointments,
		doctors:      doctors,
		chat:         chat,
		mail:         mail,
		logger:       logger,
	}
}

// SendDailyReminders pushes a chat reminder for every appointment booked
// for today.
func (s *notificationService) SendDailyReminders() int {
	s.logger.Info("Sending daily appointment reminders")

	appointments, err := s.appointments.ListTodayBooked(utils.Today())
	if err != nil {
		s.logger.WithError(err).Error("Error fetching today's appointments")
		return 0
	}

	sent := 0
	for _, apt := range appointments {
		message := fmt.Sprintf("Reminder: %s, your appointment with Dr. %s is today at %s",
			apt.Patient.Name, apt.Doctor.Name, apt.AppointmentTime)
		if err := s.chat.Post(message); err != nil {
			s.logger.WithError(err).WithField("AppointmentId", apt.ID).
				Warn("Failed to send reminder, skipping")
			continue
		}
		sent++
	}

	s.logger.WithField("Count", sent).Info("Daily appointment reminders sent")
	return sent
}

// SendMonthlyReports mails each doctor an activity report for the previous
// calendar month. Without mail configuration the job is a no-op.
func (s *notificationService) SendMonthlyReports() int {
	s.logger.Info("Sending monthly doctor reports")

	if s.mail == nil || !s.mail.Configured() {
		s.logger.Info("Outbound mail not configured, skipping monthly reports")
		return 0
	}

	doctors, err := s.doctors.ListAll()
	if err != nil {
		s.logger.WithError(err).Error("Error fetching doctors")
		return 0
	}

	first, last := utils.MonthBounds(utils.Today())
	sent := 0
	for _, doctor := range doctors {
		appointments, err := s.appointments.ListByDoctorBetween(doctor.ID, first, last)
		if err != nil {
			s.logger.WithError(err).WithField("DoctorId", doctor.ID).
				Warn("Failed to fetch appointments for report, skipping")
			continue
		}
		if doctor.User.Email == "" {
			continue
		}
		report := renderMonthlyReport(doctor, appointments, first, last)
		if err := s.mail.Send(doctor.User.Email, "Monthly Activity Report", report); err != nil {
			s.logger.WithError(err).WithField("DoctorId", doctor.ID).
				Warn("Failed to mail report, skipping")
			continue
		}
		sent++
	}

	s.logger.WithField("Count", sent).Info("Monthly doctor reports sent")
	return sent
}

func renderMonthlyReport(doctor domain.Doctor, appointments []domain.Appointment, first, last time.Time) string {
	completed := 0
	cancelled := 0
	for _, apt := range appointments {
		switch apt.Status {
		case domain.StatusCompleted:
			completed++
		case domain.StatusCancelled:
			cancelled++
		}
	}

	var b strings.Builder
	b.WriteString("<html><body>")
	b.WriteString("<h2>Monthly Activity Report</h2>")
	fmt.Fprintf(&b, "<p><strong>Doctor:</strong> %s</p>", doctor.Name)
	fmt.Fprintf(&b, "<p><strong>Period:</strong> %s to %s</p>",
		first.Format(utils.DateLayout), last.Format(utils.DateLayout))
	b.WriteString("<ul>")
	fmt.Fprintf(&b, "<li>Total Appointments: %d</li>", len(appointments))
	fmt.Fprintf(&b, "<li>Completed: %d</li>", completed)
	fmt.Fprintf(&b, "<li>Cancelled: %d</li>", cancelled)
	b.WriteString("</ul>")
	b.WriteString(`<table border="1" cellpadding="6" cellspacing="0">`)
	b.WriteString("<tr><th>Date</th><th>Patient</th><th>Status</th><th>Diagnosis</th></tr>")
	for _, apt := range appointments {
		diagnosis := "-"
		if apt.Treatment != nil && apt.Treatment.Diagnosis != "" {
			diagnosis = apt.Treatment.Diagnosis
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			utils.FormatDate(apt.AppointmentDate), apt.Patient.Name, apt.Status, diagnosis)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}
