package services

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
)

// RoutineService manages the per-user library of named gym routines.
// Routine names are unique per user, case-insensitively: logging a gym
// session under an existing name snapshots the new exercise list over
// the old one.
type RoutineService struct {
	db *gorm.DB
}

func NewRoutineService(db *gorm.DB) *RoutineService {
	return &RoutineService{db: db}
}

// Upsert saves the exercise list under the given name for the user,
// overwriting an existing routine with the same name (compared
// case-insensitively). Returns the stored routine.
func (s *RoutineService) Upsert(userID uint, name string, exercises []models.Exercise) (*models.Routine, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}

	payload, err := json.Marshal(exercises)
	if err != nil {
		return nil, err
	}

	var routine models.Routine
	err = s.db.Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(name)).
		First(&routine).Error
	switch {
	case err == nil:
		routine.Name = name
		routine.Exercises = string(payload)
		if err := s.db.Save(&routine).Error; err != nil {
			return nil, err
		}
		return &routine, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		routine = models.Routine{
			UserID:    userID,
			Name:      name,
			Exercises: string(payload),
		}
		if err := s.db.Create(&routine).Error; err != nil {
			return nil, err
		}
		return &routine, nil
	default:
		return nil, err
	}
}

// Load returns the routine with its decoded exercise list. Each call
// decodes a fresh copy, so callers can mutate the result freely.
// Another user's routine reads as absent, not forbidden.
func (s *RoutineService) Load(routineID, userID uint) (*models.Routine, []models.Exercise, error) {
	var routine models.Routine
	err := s.db.Where("id = ? AND user_id = ?", routineID, userID).First(&routine).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	exercises, err := decodeExercises(routine.Exercises)
	if err != nil {
		return nil, nil, err
	}
	return &routine, exercises, nil
}

// List returns the user's routines with decoded exercise lists, most
// recently updated first.
func (s *RoutineService) List(userID uint) ([]models.Routine, [][]models.Exercise, error) {
	var routines []models.Routine
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&routines).Error; err != nil {
		return nil, nil, err
	}

	exercises := make([][]models.Exercise, len(routines))
	for i := range routines {
		list, err := decodeExercises(routines[i].Exercises)
		if err != nil {
			return nil, nil, err
		}
		exercises[i] = list
	}
	return routines, exercises, nil
}

func decodeExercises(raw string) ([]models.Exercise, error) {
	if raw == "" {
		return []models.Exercise{}, nil
	}
	var list []models.Exercise
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}
