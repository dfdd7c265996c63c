package repository

import (
	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindAll() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) Names() (map[uint]string, error) {
	courses, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(courses))
	for _, c := range courses {
		names[c.ID] = c.Name
	}
	return names, nil
}

// CourseIDsByDirector returns the courses a Course Director is linked to via
// the directorship relation.
func (r *CourseRepository) CourseIDsByDirector(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.CourseDirectorship{}).
		Where("user_id = ?", userID).
		Order("course_id ASC").
		Pluck("course_id", &ids).Error
	return ids, err
}

// StudentIDsByCourses resolves course membership through the Enrollment
// relation; this is the visibility set for a director's scope.
func (r *CourseRepository) StudentIDsByCourses(courseIDs []uint) ([]int64, error) {
	var ids []int64
	if len(courseIDs) == 0 {
		return ids, nil
	}
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id IN ?", courseIDs).
		Distinct().
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}

func (r *CourseRepository) AssignDirector(userID, courseID uint) error {
	return r.DB.Create(&model.CourseDirectorship{UserID: userID, CourseID: courseID}).Error
}
