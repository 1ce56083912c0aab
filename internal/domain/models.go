package domain

import (
	"time"

	"gorm.io/gorm"
)

// Role values stored on User.Role.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// Appointment status values.
const (
	StatusBooked    = "Booked"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;size:80"`
	Email    string `gorm:"uniqueIndex;size:120"`
	Password string
	Role     string `gorm:"size:20"`
	IsActive bool   `gorm:"default:true"`
	Doctor   *Doctor
	Patient  *Patient
}

type Department struct {
	gorm.Model
	Name        string `gorm:"uniqueIndex;size:100"`
	Description string
	Doctors     []Doctor
}

type Doctor struct {
	gorm.Model
	UserID          uint `gorm:"uniqueIndex"`
	User            User
	Name            string `gorm:"size:100"`
	Specialization  string `gorm:"size:100"`
	DepartmentID    uint
	Department      Department
	Phone           string `gorm:"size:20"`
	ExperienceYears int
	Qualification   string `gorm:"size:200"`
}

type Patient struct {
	gorm.Model
	UserID      uint `gorm:"uniqueIndex"`
	User        User
	Name        string     `gorm:"size:100"`
	Phone       string     `gorm:"size:20"`
	DateOfBirth *time.Time `gorm:"type:date"`
	Gender      string     `gorm:"size:10"`
	Address     string
	BloodGroup  string `gorm:"size:5"`
}

// Appointment is one slot of a doctor's day. At most one Booked row may
// exist per (doctor, date, time); the partial unique index created in
// config.InitDatabase enforces that even under concurrent bookings.
type Appointment struct {
	gorm.Model
	PatientID       uint `gorm:"index"`
	Patient         Patient
	DoctorID        uint `gorm:"index"`
	Doctor          Doctor
	AppointmentDate time.Time `gorm:"type:date"`
	AppointmentTime string    `gorm:"size:5"` // HH:MM, 24-hour
	Status          string    `gorm:"size:20;default:Booked"`
	Reason          string
	Treatment       *Treatment
}

type Treatment struct {
	gorm.Model
	AppointmentID uint `gorm:"uniqueIndex"`
	Diagnosis     string
	Prescription  string
	Notes         string
	NextVisit     *time.Time `gorm:"type:date"`
}

type DoctorAvailability struct {
	gorm.Model
	DoctorID    uint      `gorm:"index:idx_doctor_date,unique"`
	Date        time.Time `gorm:"type:date;index:idx_doctor_date,unique"`
	StartTime   string    `gorm:"size:5"`
	EndTime     string    `gorm:"size:5"`
	IsAvailable bool      `gorm:"default:true"`
}

// AppointmentEvent is published to Kafka whenever an appointment changes
// state.
type AppointmentEvent struct {
	AppointmentID   uint   `json:"appointment_id"`
	PatientID       uint   `json:"patient_id"`
	DoctorID        uint   `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Status          string `json:"status"`
}

// ExportJob tracks an async treatment-history export.
type ExportJob struct {
	TaskID  string `json:"task_id"`
	State   string `json:"state"`
	CSVData string `json:"csv_data,omitempty"`
}

// DashboardStats backs the cached admin dashboard payload.
type DashboardStats struct {
	TotalDoctors         int64               `json:"total_doctors"`
	TotalPatients        int64               `json:"total_patients"`
	TotalAppointments    int64               `json:"total_appointments"`
	UpcomingAppointments int64               `json:"upcoming_appointments"`
	RecentAppointments   []RecentAppointment `json:"recent_appointments"`
}

type RecentAppointment struct {
	ID          uint   `json:"id"`
	PatientName string `json:"patient_name"`
	DoctorName  string `json:"doctor_name"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Status      string `json:"status"`
}

// DepartmentSummary backs the cached department listing.
type DepartmentSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	DoctorsCount int    `json:"doctors_count"`
}
