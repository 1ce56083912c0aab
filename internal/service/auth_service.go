package service

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

// RegisterInput is the patient self-registration payload.
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	Name        string
	Phone       string
	DateOfBirth string
	Gender      string
	Address     string
	BloodGroup  string
}

type AuthService interface {
	Register(input RegisterInput) (*domain.User, error)
	Login(username, password string) (string, *domain.User, *domain.Doctor, *domain.Patient, error)
	CurrentUser(userID uint) (*domain.User, *domain.Doctor, *domain.Patient, error)
}

type authService struct {
	users    repository.UserRepository
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	logger   *logrus.Logger
}

func NewAuthService(users repository.UserRepository, doctors repository.DoctorRepository, patients repository.PatientRepository, logger *logrus.Logger) AuthService {
	return &authService{
		users:    users,
		doctors:  doctors,
		patients: patients,
		logger:   logger,
	}
}

// Register creates a patient account plus profile.
func (s *authService) Register(input RegisterInput) (*domain.User, error) {
	s.logger.WithFields(logrus.Fields{
		"Function": "Register",
		"Username": input.Username,
	}).Info("Registering new patient")

	if input.Username == "" || input.Email == "" || input.Password == "" ||
		input.Name == "" || input.Phone == "" {
		return nil, ErrMissingFields
	}

	if taken, err := s.users.UsernameExists(input.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}
	if taken, err := s.users.EmailExists(input.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash password")
		return nil, err
	}

	user := &domain.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
		Role:     domain.RolePatient,
		IsActive: true,
	}
	patient := &domain.Patient{
		Name:       input.Name,
		Phone:      input.Phone,
		Gender:     input.Gender,
		Address:    input.Address,
		BloodGroup: input.BloodGroup,
	}
	if input.DateOfBirth != "" {
		dob, err := utils.ParseDate(input.DateOfBirth)
		if err != nil {
			return nil, err
		}
		patient.DateOfBirth = &dob
	}

	if err := s.users.CreatePatientAccount(user, patient); err != nil {
		s.logger.WithError(err).Error("Failed to create patient account")
		return nil, err
	}
	user.Patient = patient

	s.logger.WithField("UserId", user.ID).Info("Patient registered successfully")
	return user, nil
}

// Login checks credentials for any role and issues a 24h token.
func (s *authService) Login(username, password string) (string, *domain.User, *domain.Doctor, *domain.Patient, error) {
	s.logger.WithFields(logrus.Fields{
		"Function": "Login",
		"Username": username,
	}).Info("Login attempt")

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, nil, nil, ErrInvalidCredentials
		}
		return "", nil, nil, nil, err
	}
	if !utils.CheckPassword(password, user.Password) {
		return "", nil, nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, nil, nil, ErrAccountInactive
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign token")
		return "", nil, nil, nil, err
	}

	doctor, patient := s.loadProfiles(user)
	s.logger.WithField("UserId", user.ID).Info("Login successful")
	return token, user, doctor, patient, nil
}

func (s *authService) CurrentUser(userID uint) (*domain.User, *domain.Doctor, *domain.Patient, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, nil, ErrNotFound
		}
		return nil, nil, nil, err
	}
	doctor, patient := s.loadProfiles(user)
	return user, doctor, patient, nil
}

func (s *authService) loadProfiles(user *domain.User) (*domain.Doctor, *domain.Patient) {
	switch user.Role {
	case domain.RoleDoctor:
		if doctor, err := s.doctors.FindByUserID(user.ID); err == nil {
			return doctor, nil
		}
	case domain.RolePatient:
		if patient, err := s.patients.FindByUserID(user.ID); err == nil {
			return nil, patient
		}
	}
	return nil, nil
}
