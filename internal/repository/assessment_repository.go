package repository

import (
	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepository) FindByCourse(courseID uint) ([]model.Assessment, error) {
	var rows []model.Assessment
	err := r.DB.Where("course_id = ?", courseID).Order("deadline ASC").Find(&rows).Error
	return rows, err
}

// UpsertSubmission records or replaces the score and submission date for one
// (assessment, student) pair.
func (r *AssessmentRepository) UpsertSubmission(s *model.Submission) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "assessment_id"}, {Name: "student_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"submitted_at", "score", "updated_at"}),
	}).Create(s).Error
}

func (r *AssessmentRepository) SubmissionsByAssessment(assessmentID uint, scope model.Scope) ([]model.Submission, error) {
	var rows []model.Submission
	q := r.DB.Where("assessment_id = ?", assessmentID).Order("student_id ASC")
	if !scope.AllStudents {
		q = q.Where("student_id IN ?", scope.StudentIDs)
	}
	err := q.Find(&rows).Error
	return rows, err
}
