package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/service"
	"github.com/careline/hms-backend/internal/utils"
)

type CompleteAppointmentRequest struct {
	Diagnosis    *string `json:"diagnosis"`
	Prescription *string `json:"prescription"`
	Notes        *string `json:"notes"`
	NextVisit    *string `json:"next_visit"`
}

type SetAvailabilityRequest struct {
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable *bool  `json:"is_available"`
}

type DoctorHandler struct {
	doctors      service.DoctorService
	appointments service.AppointmentService
}

func NewDoctorHandler(doctors service.DoctorService, appointments service.AppointmentService) *DoctorHandler {
	return &DoctorHandler{doctors: doctors, appointments: appointments}
}

func (h *DoctorHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.doctors.Dashboard(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	upcoming := make([]gin.H, 0, len(dashboard.UpcomingAppointments))
	for _, apt := range dashboard.UpcomingAppointments {
		upcoming = append(upcoming, gin.H{
			"id":               apt.ID,
			"patient_name":     apt.Patient.Name,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"reason":           apt.Reason,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"doctor":                 doctorJSON(*dashboard.Doctor),
		"today_appointments":     dashboard.TodayCount,
		"total_patients":         dashboard.TotalPatients,
		"completed_appointments": dashboard.CompletedCount,
		"upcoming_appointments":  upcoming,
	})
}

func (h *DoctorHandler) Appointments(c *gin.Context) {
	appointments, err := h.doctors.Appointments(currentUserID(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(appointments))
	for _, apt := range appointments {
		item := gin.H{
			"id":               apt.ID,
			"patient_id":       apt.PatientID,
			"patient_name":     apt.Patient.Name,
			"patient_phone":    apt.Patient.Phone,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"status":           apt.Status,
			"reason":           apt.Reason,
		}
		if apt.Treatment != nil {
			item["treatment"] = treatmentJSON(apt)
		}
		payload = append(payload, item)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *DoctorHandler) CompleteAppointment(c *gin.Context) {
	appointmentID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	doctor, err := h.doctors.DoctorByUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	var req CompleteAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	apt, err := h.appointments.Complete(appointmentID, doctor.ID, service.TreatmentInput{
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
		Notes:        req.Notes,
		NextVisit:    req.NextVisit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Appointment completed",
		"appointment": gin.H{"id": apt.ID, "status": apt.Status},
	})
}

func (h *DoctorHandler) CancelAppointment(c *gin.Context) {
	appointmentID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	doctor, err := h.doctors.DoctorByUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.appointments.CancelByDoctor(appointmentID, doctor.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled"})
}

func (h *DoctorHandler) Patients(c *gin.Context) {
	summaries, err := h.doctors.Patients(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		item := patientJSON(summary.Patient)
		item["total_appointments"] = summary.TotalAppointments
		payload = append(payload, item)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *DoctorHandler) PatientHistory(c *gin.Context) {
	patientID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	patient, history, err := h.doctors.PatientHistory(currentUserID(c), patientID)
	if err != nil {
		respondError(c, err)
		return
	}

	visits := make([]gin.H, 0, len(history))
	for _, apt := range history {
		visits = append(visits, gin.H{
			"appointment_id":   apt.ID,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"reason":           apt.Reason,
			"treatment":        treatmentJSON(apt),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"patient": patientJSON(*patient),
		"history": visits,
	})
}

func (h *DoctorHandler) GetAvailability(c *gin.Context) {
	slots, err := h.doctors.GetAvailability(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	payload := make([]gin.H, 0, len(slots))
	for _, slot := range slots {
		payload = append(payload, availabilityJSON(slot))
	}
	c.JSON(http.StatusOK, payload)
}

func (h *DoctorHandler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	slot, err := h.doctors.SetAvailability(currentUserID(c), req.Date, req.StartTime, req.EndTime, isAvailable)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Availability updated",
		"availability": availabilityJSON(*slot),
	})
}
