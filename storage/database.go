package storage

import (
	"log"

	"github.com/peaceghost-hub/EasyAccomodation/config"
	"github.com/peaceghost-hub/EasyAccomodation/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	dsn := config.C.DBConnectionString
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func performMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.StudentProfile{},
		&models.HouseOwnerProfile{},
		&models.ResidentialArea{},
		&models.House{},
		&models.Room{},
		&models.Booking{},
		&models.BookingInquiry{},
		&models.PaymentProof{},
		&models.Payment{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	performMigrations(db)
	return db
}
