package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/service"
	"github.com/careline/hms-backend/internal/utils"
)

type CreateDoctorRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Specialization  string `json:"specialization" binding:"required"`
	DepartmentID    uint   `json:"department_id" binding:"required"`
	Phone           string `json:"phone"`
	ExperienceYears int    `json:"experience_years"`
	Qualification   string `json:"qualification"`
}

type UpdateDoctorRequest struct {
	Name            *string `json:"name"`
	Specialization  *string `json:"specialization"`
	DepartmentID    *uint   `json:"department_id"`
	Phone           *string `json:"phone"`
	ExperienceYears *int    `json:"experience_years"`
	Qualification   *string `json:"qualification"`
	Email           *string `json:"email"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender"`
	Address     *string `json:"address"`
	BloodGroup  *string `json:"blood_group"`
	Email       *string `json:"email"`
}

type AdminHandler struct {
	admin service.AdminService
}

func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.admin.DashboardStats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Departments(c *gin.Context) {
	departments, err := h.admin.Departments()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, departments)
}

func (h *AdminHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.admin.ListDoctors(c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	payload := make([]gin.H, 0, len(doctors))
	for _, doctor := range doctors {
		payload = append(payload, doctorJSON(doctor))
	}
	c.JSON(http.StatusOK, payload)
}

func (h *AdminHandler) CreateDoctor(c *gin.Context) {
	var req CreateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	doctor, err := h.admin.CreateDoctor(service.CreateDoctorInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		Name:            req.Name,
		Specialization:  req.Specialization,
		DepartmentID:    req.DepartmentID,
		Phone:           req.Phone,
		ExperienceYears: req.ExperienceYears,
		Qualification:   req.Qualification,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Doctor created successfully",
		"doctor": gin.H{
			"id":             doctor.ID,
			"name":           doctor.Name,
			"specialization": doctor.Specialization,
		},
	})
}

func (h *AdminHandler) UpdateDoctor(c *gin.Context) {
	doctorID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}
	var req UpdateDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	doctor, err := h.admin.UpdateDoctor(doctorID, service.UpdateDoctorInput{
		Name:            req.Name,
		Specialization:  req.Specialization,
		DepartmentID:    req.DepartmentID,
		Phone:           req.Phone,
		ExperienceYears: req.ExperienceYears,
		Qualification:   req.Qualification,
		Email:           req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Doctor updated successfully",
		"doctor": gin.H{
			"id":             doctor.ID,
			"name":           doctor.Name,
			"specialization": doctor.Specialization,
		},
	})
}

func (h *AdminHandler) DeactivateDoctor(c *gin.Context) {
	doctorID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid doctor ID"})
		return
	}
	if err := h.admin.DeactivateDoctor(doctorID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor deactivated successfully"})
}

func (h *AdminHandler) ListPatients(c *gin.Context) {
	patients, err := h.admin.ListPatients(c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	payload := make([]gin.H, 0, len(patients))
	for _, patient := range patients {
		payload = append(payload, patientJSON(patient))
	}
	c.JSON(http.StatusOK, payload)
}

func (h *AdminHandler) UpdatePatient(c *gin.Context) {
	patientID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	err = h.admin.UpdatePatient(patientID, service.UpdatePatientInput{
		Name:        req.Name,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Address:     req.Address,
		BloodGroup:  req.BloodGroup,
		Email:       req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient updated successfully"})
}

func (h *AdminHandler) DeactivatePatient(c *gin.Context) {
	patientID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID"})
		return
	}
	if err := h.admin.DeactivatePatient(patientID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Patient deactivated successfully"})
}

func (h *AdminHandler) ListAppointments(c *gin.Context) {
	appointments, err := h.admin.ListAppointments(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	payload := make([]gin.H, 0, len(appointments))
	for _, apt := range appointments {
		payload = append(payload, gin.H{
			"id":               apt.ID,
			"patient_id":       apt.PatientID,
			"patient_name":     apt.Patient.Name,
			"doctor_id":        apt.DoctorID,
			"doctor_name":      apt.Doctor.Name,
			"appointment_date": utils.FormatDate(apt.AppointmentDate),
			"appointment_time": apt.AppointmentTime,
			"status":           apt.Status,
			"reason":           apt.Reason,
		})
	}
	c.JSON(http.StatusOK, payload)
}

func (h *AdminHandler) Search(c *gin.Context) {
	searchType := c.DefaultQuery("type", "all")
	results, err := h.admin.Search(c.Query("q"), searchType)
	if err != nil {
		respondError(c, err)
		return
	}

	doctors := make([]gin.H, 0, len(results.Doctors))
	for _, doctor := range results.Doctors {
		doctors = append(doctors, gin.H{
			"id":              doctor.ID,
			"name":            doctor.Name,
			"specialization":  doctor.Specialization,
			"department_name": doctor.Department.Name,
		})
	}
	patients := make([]gin.H, 0, len(results.Patients))
	for _, patient := range results.Patients {
		patients = append(patients, gin.H{
			"id":    patient.ID,
			"name":  patient.Name,
			"phone": patient.Phone,
			"email": patient.User.Email,
		})
	}
	c.JSON(http.StatusOK, gin.H{"doctors": doctors, "patients": patients})
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
