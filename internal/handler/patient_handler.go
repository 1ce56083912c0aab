package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/service"
	"github.com/careline/hms-backend/internal/utils"
)

type BookAppointmentRequest struct {
	DoctorID        uint   `json:"doctor_id" binding:"required"`
	AppointmentDate string `json:"appointment_date" binding:"required"`
	AppointmentTime string `json:"appointment_time" binding:"required"`
	Reason          string `json:"reason"`
}

type RescheduleRequest struct {
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender"`
	Address     *string `json:"address"`
	BloodGroup  *string `json:"blood_group"`
}

type PatientHandler struct {
	patients     service.PatientService
	appointments service.AppointmentService
	exports      service.ExportService
}

func NewPatientHandler(patients service.PatientService, appointments service.AppointmentService, exports service.ExportService) *PatientHandler {
	return &PatientHandler{patients: patients, appointments: appointments, exports: exports}
}

func (h *PatientHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.patients.Dashboard(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"patient":               patientJSON(*dashboard.Patient),
		"departments":           dashboard.Departments,
		"upcoming_appointments": appointmentRows(dashboard.UpcomingAppointments),
		"past_appointments":     appointmentRows(dashboard.PastAppointments),
	})
}

func (h *PatientHandler) Profile(c *gin.Context) {
	patient, err := h.patients.Profile(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patientJSON(*patient))
}

func (h *PatientHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err := h.patients.UpdateProfile(currentUserID(c), service.UpdateProfileInput{
		Name:        req.Name,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (h *PatientHandler) Doctors(c *gin.Context) {
	filter := repository.DoctorFilter{
		Specialization: c.Query("specialization"),
		Search:         c.Query("search"),
	}
	if raw := c.Query("department_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.DepartmentID = uint(id)
		}
	}

	doctors, err := h.patients.Doctors(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(doctors))
	for _, entry := range doctors {
		item := doctorJSON(entry.Doctor)
		slots := make([]gin.H, 0, len(entry.Availability))
		for _, slot := range entry.Availability {
			slots = append(slots, availabilityJSON(slot))
		}
		item["availability"] = slots
		payload = append(payload, item)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *PatientHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	patient, err := h.patients.PatientByUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	apt, err := h.appointments.Book(patient.ID, req.DoctorID, req.AppointmentDate, req.AppointmentTime, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Appointment booked successfully",
		"appointment": gin.H{
			"id":               apt.ID,
			"doctor_id":        apt.DoctorID,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"status":           apt.Status,
		},
	})
}

func (h *PatientHandler) RescheduleAppointment(c *gin.Context) {
	appointmentID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	patient, err := h.patients.PatientByUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	apt, err := h.appointments.Reschedule(appointmentID, patient.ID, req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Appointment rescheduled successfully",
		"appointment": gin.H{
			"id":               apt.ID,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"status":           apt.Status,
		},
	})
}

func (h *PatientHandler) CancelAppointment(c *gin.Context) {
	appointmentID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID"})
		return
	}
	patient, err := h.patients.PatientByUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.appointments.CancelByPatient(appointmentID, patient.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment cancelled successfully"})
}

func (h *PatientHandler) TreatmentHistory(c *gin.Context) {
	history, err := h.patients.TreatmentHistory(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	payload := make([]gin.H, 0, len(history))
	for _, apt := range history {
		payload = append(payload, gin.H{
			"appointment_id":   apt.ID,
			"doctor_name":      apt.Doctor.Name,
			"specialization":   apt.Doctor.Specialization,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"treatment":        treatmentJSON(apt),
		})
	}
	c.JSON(http.StatusOK, payload)
}

func (h *PatientHandler) ExportTreatments(c *gin.Context) {
	csvData, err := h.exports.ExportTreatments(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=treatment_history.csv")
	c.Data(http.StatusOK, "text/csv", []byte(csvData))
}

func (h *PatientHandler) ExportTreatmentsAsync(c *gin.Context) {
	taskID, err := h.exports.EnqueueExport(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"task_id": taskID,
		"message": "Export started",
	})
}

func (h *PatientHandler) ExportStatus(c *gin.Context) {
	job, err := h.exports.ExportStatus(c.Param("task_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	payload := gin.H{"task_id": job.TaskID, "state": job.State}
	if job.State == service.JobStateSuccess {
		payload["csv_data"] = job.CSVData
	}
	c.JSON(http.StatusOK, payload)
}

func (h *PatientHandler) Departments(c *gin.Context) {
	departments, err := h.patients.Departments()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

func appointmentRows(appointments []domain.Appointment) []gin.H {
	rows := make([]gin.H, 0, len(appointments))
	for _, apt := range appointments {
		rows = append(rows, gin.H{
			"id":               apt.ID,
			"doctor_id":        apt.DoctorID,
			"doctor_name":      apt.Doctor.Name,
			"specialization":   apt.Doctor.Specialization,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"status":           apt.Status,
			"reason":           apt.Reason,
		})
	}
	return rows
}
