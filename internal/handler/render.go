package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/utils"
)

// formatDatePtr renders an optional date as YYYY-MM-DD, or JSON null.
func formatDatePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return utils.FormatDate(*t)
}

func doctorJSON(doctor domain.Doctor) gin.H {
	return gin.H{
		"id":               doctor.ID,
		"user_id":          doctor.UserID,
		"name":             doctor.Name,
		"specialization":   doctor.Specialization,
		"department_id":    doctor.DepartmentID,
		"department_name":  doctor.Department.Name,
		"phone":            doctor.Phone,
		"experience_years": doctor.ExperienceYears,
		"qualification":    doctor.Qualification,
		"is_active":        doctor.User.IsActive,
	}
}

func patientJSON(patient domain.Patient) gin.H {
	return gin.H{
		"id":            patient.ID,
		"user_id":       patient.UserID,
		"name":          patient.Name,
		"phone":         patient.Phone,
		"date_of_birth": formatDatePtr(patient.DateOfBirth),
		"gender":        patient.Gender,
		"address":       patient.Address,
		"blood_group":   patient.BloodGroup,
		"email":         patient.User.Email,
		"is_active":     patient.User.IsActive,
	}
}

func availabilityJSON(slot domain.DoctorAvailability) gin.H {
	return gin.H{
		"id":           slot.ID,
		"date":         utils.FormatDate(slot.Date),
		"start_time":   slot.StartTime,
		"end_time":     slot.EndTime,
		"is_available": slot.IsAvailable,
	}
}

func treatmentJSON(apt domain.Appointment) gin.H {
	return gin.H{
		"appointment_id":   apt.ID,
		"appointment_date": utils.FormatDate(apt.AppointmentDate),
		"appointment_time": apt.AppointmentTime,
		"diagnosis":        apt.Treatment.Diagnosis,
		"prescription":     apt.Treatment.Prescription,
		"notes":            apt.Treatment.Notes,
		"next_visit":       formatDatePtr(apt.Treatment.NextVisit),
	}
}
