package repository

import (
	"errors"

	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) FindByID(id int64) (*model.Student, error) {
	var student model.Student
	err := r.DB.First(&student, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) Exists(id int64) (bool, error) {
	var student model.Student
	err := r.DB.Select("id").First(&student, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindInScope lists students admitted by the scope, ordered by identifier.
func (r *StudentRepository) FindInScope(scope model.Scope) ([]model.Student, error) {
	var students []model.Student
	q := r.DB.Order("id ASC")
	if !scope.AllStudents {
		q = q.Where("id IN ?", scope.StudentIDs)
	}
	err := q.Find(&students).Error
	return students, err
}

// CreateWithEnrollment inserts the student and the initial course membership
// as one transaction; intake never leaves a student without a course.
func (r *StudentRepository) CreateWithEnrollment(student *model.Student, courseID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(student).Error; err != nil {
			return err
		}
		return tx.Create(&model.Enrollment{StudentID: student.ID, CourseID: courseID}).Error
	})
}

func (r *StudentRepository) Update(student *model.Student) error {
	return r.DB.Save(student).Error
}

func (r *StudentRepository) Enroll(studentID int64, courseID uint) error {
	return r.DB.Create(&model.Enrollment{StudentID: studentID, CourseID: courseID}).Error
}

func (r *StudentRepository) Unenroll(studentID int64, courseID uint) error {
	res := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&model.Enrollment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *StudentRepository) IsEnrolled(studentID int64, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *StudentRepository) CourseIDsByStudent(studentID int64) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("student_id = ?", studentID).
		Order("course_id ASC").
		Pluck("course_id", &ids).Error
	return ids, err
}
