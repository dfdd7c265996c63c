package repository

import (
	"errors"
	"time"

	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
)

type SurveyRepository struct {
	DB *gorm.DB
}

func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{DB: db}
}

// GetOrCreateByDate returns the survey for the given pass date, creating it on
// first use. Surveys are keyed by date so every response for one collection
// round shares a survey row.
func (r *SurveyRepository) GetOrCreateByDate(date time.Time) (*model.Survey, error) {
	var survey model.Survey
	err := r.DB.Where("passed_date = ?", date).First(&survey).Error
	if err == nil {
		return &survey, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	survey = model.Survey{PassedDate: date}
	if err := r.DB.Create(&survey).Error; err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *SurveyRepository) FindAll() ([]model.Survey, error) {
	var surveys []model.Survey
	err := r.DB.Order("passed_date ASC").Find(&surveys).Error
	return surveys, err
}

func (r *SurveyRepository) HasResponse(studentID int64, surveyID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.WellbeingSurvey{}).
		Where("student_id = ? AND survey_id = ?", studentID, surveyID).
		Count(&count).Error
	return count > 0, err
}

func (r *SurveyRepository) CreateResponse(resp *model.WellbeingSurvey) error {
	return r.DB.Create(resp).Error
}

// ResponsesByStudent lists one student's responses newest first, joined with
// the survey pass date.
func (r *SurveyRepository) ResponsesByStudent(studentID int64) ([]model.SurveyRow, error) {
	var rows []model.SurveyRow
	err := r.DB.Model(&model.WellbeingSurvey{}).
		Select("wellbeing_surveys.student_id, wellbeing_surveys.survey_id, surveys.passed_date, wellbeing_surveys.stress_level, wellbeing_surveys.sleep_hours").
		Joins("JOIN surveys ON surveys.id = wellbeing_surveys.survey_id").
		Where("wellbeing_surveys.student_id = ?", studentID).
		Order("surveys.passed_date DESC, wellbeing_surveys.survey_id DESC").
		Scan(&rows).Error
	return rows, err
}
