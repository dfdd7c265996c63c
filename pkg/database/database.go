package database

import (
	"fmt"
	"log"
	"time"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseDirectorship{},
		&model.Student{},
		&model.Enrollment{},
		&model.Assessment{},
		&model.Submission{},
		&model.Attendance{},
		&model.Survey{},
		&model.WellbeingSurvey{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedReferenceData(db)

	return db, nil
}

// seedReferenceData inserts the default course catalogue and the current
// survey period on an empty database so a fresh deployment is usable.
func seedReferenceData(db *gorm.DB) {
	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count == 0 {
		defaultCourses := []string{
			"Software Engineering",
			"Database Systems",
			"Data Analytics",
			"Human-Computer Interaction",
		}
		for _, name := range defaultCourses {
			db.Create(&model.Course{Name: name})
		}
	}

	var surveyCount int64
	db.Model(&model.Survey{}).Count(&surveyCount)
	if surveyCount == 0 {
		today := time.Now()
		db.Create(&model.Survey{
			PassedDate: time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local),
		})
	}
}
