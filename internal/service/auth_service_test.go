package service

import (
	"errors"
	"testing"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/repository"
	"github.com/careline/hms-backend/internal/utils"
)

func (f *fakeUserRepo) FindByUsername(username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) CreatePatientAccount(user *domain.User, patient *domain.Patient) error {
	f.nextID++
	user.ID = f.nextID
	patient.UserID = user.ID
	f.users[user.ID] = user
	f.usernames[user.Username] = true
	f.emails[user.Email] = true
	return nil
}

func newAuthFixture() (AuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, &fakeDoctorRepo{}, &fakePatientRepo{byUser: map[uint]*domain.Patient{}}, testLogger())
	return svc, users
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "s3cret!",
		Name:        "Alice Smith",
		Phone:       "555-0100",
		DateOfBirth: "1990-06-15",
	}
}

func TestRegister(t *testing.T) {
	svc, users := newAuthFixture()

	user, err := svc.Register(registerInput())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != domain.RolePatient {
		t.Errorf("role = %q, want %q", user.Role, domain.RolePatient)
	}
	if user.Password == "s3cret!" {
		t.Error("password stored in plain text")
	}
	if user.Patient == nil || user.Patient.DateOfBirth == nil {
		t.Fatal("patient profile incomplete")
	}
	if utils.FormatDate(*user.Patient.DateOfBirth) != "1990-06-15" {
		t.Errorf("date of birth = %v", user.Patient.DateOfBirth)
	}
	if !users.usernames["alice"] {
		t.Error("username not recorded")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()
	if _, err := svc.Register(registerInput()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	missing := registerInput()
	missing.Phone = ""
	badDOB := registerInput()
	badDOB.Username = "fresh"
	badDOB.Email = "fresh@example.com"
	badDOB.DateOfBirth = "June 15"
	dupUsername := registerInput()
	dupUsername.Email = "other@example.com"
	dupEmail := registerInput()
	dupEmail.Username = "bob"

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"missing phone", missing, ErrMissingFields},
		{"bad date of birth", badDOB, utils.ErrBadDate},
		{"duplicate username", dupUsername, ErrUsernameTaken},
		{"duplicate email", dupEmail, ErrEmailTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, users := newAuthFixture()
	if _, err := svc.Register(registerInput()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		token, user, _, _, err := svc.Login("alice", "s3cret!")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if token == "" {
			t.Error("empty token")
		}
		userID, role, err := utils.ParseToken(token)
		if err != nil {
			t.Fatalf("ParseToken() error = %v", err)
		}
		if userID != user.ID || role != domain.RolePatient {
			t.Errorf("token claims = (%d, %q)", userID, role)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, _, _, _, err := svc.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, _, _, _, err := svc.Login("nobody", "s3cret!"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("inactive account", func(t *testing.T) {
		for _, user := range users.users {
			user.IsActive = false
		}
		if _, _, _, _, err := svc.Login("alice", "s3cret!"); !errors.Is(err, ErrAccountInactive) {
			t.Errorf("Login() error = %v, want ErrAccountInactive", err)
		}
	})
}
