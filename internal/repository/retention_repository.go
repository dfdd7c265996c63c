package repository

import (
	"time"

	"wellbeing_backend/internal/model"

	"gorm.io/gorm"
)

// RetentionRepository implements the purge path. Deletions are hard deletes;
// purgeable tables carry no soft-delete column, so a purge leaves no residue.
type RetentionRepository struct {
	DB *gorm.DB
}

func NewRetentionRepository(db *gorm.DB) *RetentionRepository {
	return &RetentionRepository{DB: db}
}

// PurgeCandidates returns the ids of students whose graduation date lies
// strictly before the cutoff.
func (r *RetentionRepository) PurgeCandidates(before time.Time) ([]int64, error) {
	var ids []int64
	err := r.DB.Model(&model.Student{}).
		Where("graduation_date < ?", before).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// PurgeStudent removes one student and every dependent row inside a single
// transaction. Child tables go first so a mid-purge failure rolls back to a
// fully consistent state; re-running on an already-purged id is a no-op.
func (r *RetentionRepository) PurgeStudent(studentID int64) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("student_id = ?", studentID).
			Delete(&model.WellbeingSurvey{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).
			Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).
			Delete(&model.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("student_id = ?", studentID).
			Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", studentID).Delete(&model.Student{}).Error
	})
}

// ResidueCount reports how many dependent rows still reference the student.
// Used by integrity checks after a purge run.
func (r *RetentionRepository) ResidueCount(studentID int64) (int64, error) {
	var total int64
	tables := []interface{}{
		&model.WellbeingSurvey{},
		&model.Submission{},
		&model.Attendance{},
		&model.Enrollment{},
	}
	for _, t := range tables {
		var count int64
		if err := r.DB.Model(t).Where("student_id = ?", studentID).Count(&count).Error; err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}
