package service

import (
	"context"
	"errors"
	"time"

	"wellbeing_backend/internal/model"
	"wellbeing_backend/internal/util"
	"wellbeing_backend/pkg/monitoring"

	"go.uber.org/zap"
)

type RetentionStore interface {
	PurgeCandidates(before time.Time) ([]int64, error)
	PurgeStudent(studentID int64) error
	ResidueCount(studentID int64) (int64, error)
}

// RetentionService purges graduated students' records. Each student is one
// atomic unit: either every dependent row and the student disappear together,
// or nothing does. Failed units are reported per student and never abort the
// batch, so one wedged row cannot hold every other graduate's data hostage.
type RetentionService struct {
	store      RetentionStore
	locks      *StudentLocks
	cache      *AnalyticsCache
	logger     *zap.Logger
	batchLimit int
}

func NewRetentionService(store RetentionStore, locks *StudentLocks, cache *AnalyticsCache, logger *zap.Logger, batchLimit int) *RetentionService {
	return &RetentionService{
		store:      store,
		locks:      locks,
		cache:      cache,
		logger:     logger,
		batchLimit: batchLimit,
	}
}

// PurgeGraduated removes every student whose graduation date lies strictly
// before currentDate. The date is authoritative; the stored status column is
// not consulted. Running twice is a no-op the second time: candidates that
// no longer exist simply produce an empty candidate set.
//
// The reference is truncated to its calendar day, so a caller passing a
// wall-clock instant cannot purge a student graduating that same day.
func (s *RetentionService) PurgeGraduated(ctx context.Context, currentDate time.Time) (*model.PurgeReport, error) {
	candidates, err := s.store.PurgeCandidates(util.StartOfDay(currentDate))
	if err != nil {
		return nil, err
	}
	if s.batchLimit > 0 && len(candidates) > s.batchLimit {
		candidates = candidates[:s.batchLimit]
	}

	report := &model.PurgeReport{RunAt: time.Now()}
	for _, studentID := range candidates {
		if err := s.purgeOne(ctx, studentID); err != nil {
			monitoring.PurgeFailures.Inc()
			s.logger.Error("purge unit failed",
				zap.Int64("studentId", studentID),
				zap.Error(err))
			report.Failures = append(report.Failures, model.PurgeFailure{
				StudentID: studentID,
				Reason:    err.Error(),
			})
			continue
		}
		monitoring.PurgedStudents.Inc()
		report.PurgedIDs = append(report.PurgedIDs, studentID)
	}

	if len(report.PurgedIDs) > 0 {
		s.cache.Invalidate(ctx)
	}
	s.logger.Info("retention run complete",
		zap.Int("purged", len(report.PurgedIDs)),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}

// purgeOne takes the student's lock so edits and purge cannot interleave,
// then runs the ordered deletion transaction.
func (s *RetentionService) purgeOne(ctx context.Context, studentID int64) error {
	release, err := s.locks.Acquire(ctx, studentID)
	if err != nil {
		return err
	}
	defer release()

	if err := s.store.PurgeStudent(studentID); err != nil {
		if errors.Is(err, util.ErrStoreBusy) || errors.Is(err, util.ErrStoreUnavailable) {
			return err
		}
		return util.NewRetentionIntegrityError("retention.purge_unit", err.Error())
	}
	return nil
}

// VerifyPurged confirms no dependent rows survived for a purged student.
func (s *RetentionService) VerifyPurged(studentID int64) error {
	residue, err := s.store.ResidueCount(studentID)
	if err != nil {
		return err
	}
	if residue > 0 {
		return util.NewRetentionIntegrityError("retention.residue",
			"dependent rows survived the purge")
	}
	return nil
}
