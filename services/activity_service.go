package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/utils"
)

// ActivityService owns the activity log and drives the ledger: every
// create or delete fans its point delta out to the lifetime total and
// to every league the user belongs to at mutation time.
type ActivityService struct {
	db       *gorm.DB
	ledger   *Ledger
	routines *RoutineService
}

func NewActivityService(db *gorm.DB, ledger *Ledger, routines *RoutineService) *ActivityService {
	return &ActivityService{db: db, ledger: ledger, routines: routines}
}

// LogActivityInput carries a submission after the transport layer has
// coerced the loosely typed numeric fields.
type LogActivityInput struct {
	SportID     string
	Duration    int
	Distance    float64
	Exercises   []models.Exercise
	RoutineName string
	PhotoURL    string
	OccurredAt  time.Time
}

// Log validates and persists an activity, then applies its point
// entries. The returned activity is non-nil whenever the activity row
// was committed, even if err is an *AggregateUpdateError: the
// submission succeeded and only the aggregates lag behind.
func (s *ActivityService) Log(ctx context.Context, userID uint, in LogActivityInput) (*models.Activity, error) {
	if in.SportID == "" || in.Duration <= 0 {
		return nil, ErrValidation
	}

	totalSets := TotalSets(in.Exercises)
	points := Points(in.SportID, in.Duration, in.Distance, totalSets)
	details := composeDetails(in, totalSets)

	if in.SportID == models.SportGym && in.RoutineName != "" {
		if _, err := s.routines.Upsert(userID, in.RoutineName, in.Exercises); err != nil {
			return nil, err
		}
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	leagueIDs, err := s.memberLeagueIDs(userID)
	if err != nil {
		return nil, err
	}

	activity := models.Activity{
		UserID:    userID,
		SportID:   in.SportID,
		Duration:  in.Duration,
		Points:    points,
		Details:   utils.SanitizePlain(details),
		PhotoURL:  in.PhotoURL,
		CreatedAt: occurredAt,
	}

	var entries []models.PointEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}
		entries, err = s.ledger.RecordEntries(tx, activity.ID, userID, points, leagueIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.ActivitiesLogged.WithLabelValues(in.SportID).Inc()

	if err := s.ledger.Apply(ctx, entries); err != nil {
		return &activity, err
	}
	return &activity, nil
}

// EditActivityInput lists the fields an owner may change after the
// fact. Points are immutable once awarded: editing the duration or the
// description never rescales the score of a past activity.
type EditActivityInput struct {
	Duration   int
	Details    string
	PhotoURL   string
	OccurredAt time.Time
}

// Edit updates the cosmetic fields of an activity the caller owns.
func (s *ActivityService) Edit(ctx context.Context, userID, activityID uint, in EditActivityInput) (*models.Activity, error) {
	var activity models.Activity
	err := s.db.WithContext(ctx).First(&activity, activityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if activity.UserID != userID {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if in.Duration > 0 {
		updates["duration"] = in.Duration
	}
	if in.Details != "" {
		updates["details"] = utils.SanitizePlain(in.Details)
	}
	if in.PhotoURL != "" {
		updates["photo_url"] = in.PhotoURL
	}
	if !in.OccurredAt.IsZero() {
		updates["created_at"] = in.OccurredAt
	}
	if len(updates) == 0 {
		return &activity, nil
	}

	if err := s.db.WithContext(ctx).Model(&activity).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

// Delete removes an activity the caller owns and retracts its points
// from the lifetime total and from the user's current leagues. Leagues
// joined after the activity was logged lose the points too; leagues
// left since are untouched.
func (s *ActivityService) Delete(ctx context.Context, userID, activityID uint) error {
	var activity models.Activity
	err := s.db.WithContext(ctx).First(&activity, activityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if activity.UserID != userID {
		return ErrForbidden
	}

	leagueIDs, err := s.memberLeagueIDs(userID)
	if err != nil {
		return err
	}

	var entries []models.PointEntry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Activity{}, activity.ID).Error; err != nil {
			return err
		}
		entries, err = s.ledger.RecordEntries(tx, activity.ID, userID, -activity.Points, leagueIDs)
		return err
	})
	if err != nil {
		return err
	}

	return s.ledger.Apply(ctx, entries)
}

// Recent returns the newest activities across all users with their
// authors preloaded, for the shared feed.
func (s *ActivityService) Recent(limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	var activities []models.Activity
	err := s.db.Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// ForUser returns one user's activities, newest first.
func (s *ActivityService) ForUser(userID uint, page, pageSize int) ([]models.Activity, int64, error) {
	var total int64
	if err := s.db.Model(&models.Activity{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.Activity
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&activities).Error
	return activities, total, err
}

func (s *ActivityService) memberLeagueIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.LeagueMember{}).
		Where("user_id = ?", userID).
		Pluck("league_id", &ids).Error
	return ids, err
}

// composeDetails builds the feed description when the client does not
// send one. Texts are in Spanish to match the app's UI.
func composeDetails(in LogActivityInput, totalSets int) string {
	switch in.SportID {
	case models.SportGym:
		if in.RoutineName != "" {
			return fmt.Sprintf("%s (%d ej, %d series)", in.RoutineName, len(in.Exercises), totalSets)
		}
		return fmt.Sprintf("%d ejercicios, %d series", len(in.Exercises), totalSets)
	case models.SportRunning, models.SportCycling:
		return strconv.FormatFloat(in.Distance, 'f', -1, 64) + " km"
	case models.SportSwimming:
		return strconv.FormatFloat(in.Distance, 'f', -1, 64) + " m"
	default:
		return fmt.Sprintf("%d minutos", in.Duration)
	}
}
