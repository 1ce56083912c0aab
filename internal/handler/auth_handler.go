package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careline/hms-backend/internal/service"
)

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	BloodGroup  string `json:"blood_group"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	user, err := h.auth.Register(service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
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

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password required"})
		return
	}

	token, user, doctor, patient, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	userData := gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
	if doctor != nil {
		userData["doctor_id"] = doctor.ID
		userData["name"] = doctor.Name
		userData["specialization"] = doctor.Specialization
	}
	if patient != nil {
		userData["patient_id"] = patient.ID
		userData["name"] = patient.Name
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"user":         userData,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, doctor, patient, err := h.auth.CurrentUser(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	userData := gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	}
	if doctor != nil {
		userData["doctor"] = gin.H{
			"id":             doctor.ID,
			"name":           doctor.Name,
			"specialization": doctor.Specialization,
			"phone":          doctor.Phone,
			"department_id":  doctor.DepartmentID,
		}
	}
	if patient != nil {
		userData["patient"] = gin.H{
			"id":            patient.ID,
			"name":          patient.Name,
			"phone":         patient.Phone,
			"date_of_birth": formatDatePtr(patient.DateOfBirth),
			"gender":        patient.Gender,
			"address":       patient.Address,
			"blood_group":   patient.BloodGroup,
		}
	}

	c.JSON(http.StatusOK, userData)
}
