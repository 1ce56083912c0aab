package config

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/careline/hms-backend/internal/domain"
	"github.com/careline/hms-backend/internal/utils"
)

// InitDatabase opens the Postgres connection, migrates the schema and
// seeds the default admin account and departments.
func InitDatabase() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=hms port=5432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Department{},
		&domain.Doctor{},
		&domain.Patient{},
		&domain.Appointment{},
		&domain.Treatment{},
		&domain.DoctorAvailability{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Partial unique index: at most one Booked row per doctor slot. This is
	// what makes concurrent bookings of the same slot safe.
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_booked_slot
		ON appointments (doctor_id, appointment_date, appointment_time)
		WHERE status = 'Booked' AND deleted_at IS NULL`).Error
	if err != nil {
		log.Fatalf("Failed to create booked-slot index: %v", err)
	}

	seedDefaults(db)
	return db
}

func seedDefaults(db *gorm.DB) {
	var adminCount int64
	db.Model(&domain.User{}).Where("role = ?", domain.RoleAdmin).Count(&adminCount)
	if adminCount == 0 {
		hashed, err := utils.HashPassword("admin123")
		if err != nil {
			log.Fatalf("Failed to hash admin password: %v", err)
		}
		admin := domain.User{
			Username: "admin",
			Email:    "admin@hospital.com",
			Password: hashed,
			Role:     domain.RoleAdmin,
			IsActive: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("Failed to seed admin user: %v", err)
		}
		log.Println("Seeded default admin account")
	}

	departments := []domain.Department{
		{Name: "Cardiology", Description: "Heart and cardiovascular care"},
		{Name: "Neurology", Description: "Brain and nervous system"},
		{Name: "Orthopedics", Description: "Bones, joints and muscles"},
		{Name: "Pediatrics", Description: "Child healthcare"},
		{Name: "Dermatology", Description: "Skin conditions"},
		{Name: "General Medicine", Description: "General health and wellness"},
	}
	for _, dept := range departments {
		var count int64
		db.Model(&domain.Department{}).Where("name = ?", dept.Name).Count(&count)
		if count == 0 {
			if err := db.Create(&dept).Error; err != nil {
				log.Printf("Failed to seed department %s: %v", dept.Name, err)
			}
		}
	}
}
