package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/gymratapp/gymrat-server/models"
	"github.com/gymratapp/gymrat-server/utils"
)

const joinCodeAttempts = 5

// LeagueService manages competition leagues and their memberships.
type LeagueService struct {
	db *gorm.DB
}

func NewLeagueService(db *gorm.DB) *LeagueService {
	return &LeagueService{db: db}
}

// CreateLeagueInput carries a sanitized league submission.
type CreateLeagueInput struct {
	Name        string
	Description string
	Prize       string
	Punishment  string
	EndDate     time.Time
	IsPublic    bool
}

// Create persists a new league and enrolls the creator as its first
// member at zero points. The join code is derived from the name and
// regenerated on collision; the unique index on code is the final
// arbiter against concurrent creates.
func (s *LeagueService) Create(ctx context.Context, ownerID uint, in CreateLeagueInput) (*models.League, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.Prize == "" || in.EndDate.IsZero() {
		return nil, ErrValidation
	}

	league := models.League{
		OwnerID:     ownerID,
		Name:        utils.SanitizePlain(in.Name),
		Description: utils.Sanitize(in.Description),
		Prize:       utils.SanitizePlain(in.Prize),
		Punishment:  utils.SanitizePlain(in.Punishment),
		EndDate:     in.EndDate,
		IsPublic:    in.IsPublic,
	}

	var lastErr error
	for attempt := 0; attempt < joinCodeAttempts; attempt++ {
		league.Code = generateJoinCode(league.Name)

		var count int64
		if err := s.db.WithContext(ctx).Model(&models.League{}).
			Where("code = ?", league.Code).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			lastErr = fmt.Errorf("join code %q already taken", league.Code)
			continue
		}

		league.ID = 0
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&league).Error; err != nil {
				return err
			}
			member := models.LeagueMember{LeagueID: league.ID, UserID: ownerID}
			return tx.Create(&member).Error
		})
		if err != nil {
			// A concurrent create can still win the code between the
			// count and the insert; roll the dice again.
			lastErr = err
			continue
		}
		if league.IsPublic {
			utils.InvalidateByPrefix("cache:leagues:public")
		}
		return &league, nil
	}
	return nil, fmt.Errorf("could not allocate a unique join code: %w", lastErr)
}

// JoinByCode enrolls the user in the league matching the code. Codes
// are stored uppercase; lookup trims and uppercases the input so the
// code is effectively case-insensitive.
func (s *LeagueService) JoinByCode(ctx context.Context, userID uint, code string) (*models.League, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrValidation
	}

	var league models.League
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&league).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.join(ctx, &league, userID); err != nil {
		return nil, err
	}
	return &league, nil
}

// JoinPublic enrolls the user in a league that is open to everyone.
// Private leagues are only joinable through their code.
func (s *LeagueService) JoinPublic(ctx context.Context, userID, leagueID uint) (*models.League, error) {
	var league models.League
	err := s.db.WithContext(ctx).First(&league, leagueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !league.IsPublic {
		return nil, ErrForbidden
	}

	if err := s.join(ctx, &league, userID); err != nil {
		return nil, err
	}
	return &league, nil
}

// join creates the membership at zero points. Past activities never
// count toward a league joined later.
func (s *LeagueService) join(ctx context.Context, league *models.League, userID uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.LeagueMember{}).
		Where("league_id = ? AND user_id = ?", league.ID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyMember
	}

	member := models.LeagueMember{LeagueID: league.ID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return err
	}
	utils.InvalidateByPrefix(fmt.Sprintf("cache:leaderboard:league:%d", league.ID))
	return nil
}

// UpdateLeagueInput carries the editable league fields. Zero values
// leave the stored field unchanged.
type UpdateLeagueInput struct {
	Name        string
	Description string
	Prize       string
	Punishment  string
	EndDate     time.Time
	IsPublic    *bool
}

// Update edits league metadata. Only the owner may edit.
func (s *LeagueService) Update(ctx context.Context, userID, leagueID uint, in UpdateLeagueInput) (*models.League, error) {
	var league models.League
	err := s.db.WithContext(ctx).First(&league, leagueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if league.OwnerID != userID {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(in.Name); name != "" {
		updates["name"] = utils.SanitizePlain(name)
	}
	if in.Description != "" {
		updates["description"] = utils.Sanitize(in.Description)
	}
	if in.Prize != "" {
		updates["prize"] = utils.SanitizePlain(in.Prize)
	}
	if in.Punishment != "" {
		updates["punishment"] = utils.SanitizePlain(in.Punishment)
	}
	if !in.EndDate.IsZero() {
		updates["end_date"] = in.EndDate
	}
	if in.IsPublic != nil {
		updates["is_public"] = *in.IsPublic
	}
	if len(updates) == 0 {
		return &league, nil
	}

	if err := s.db.WithContext(ctx).Model(&league).Updates(updates).Error; err != nil {
		return nil, err
	}
	utils.InvalidateByPrefix("cache:leagues:public")
	return &league, nil
}

// Delete removes a league and all its memberships. Only the owner may
// delete. Activities and lifetime totals are untouched; later ledger
// entries for the vanished league become no-ops.
func (s *LeagueService) Delete(ctx context.Context, userID, leagueID uint) error {
	var league models.League
	err := s.db.WithContext(ctx).First(&league, leagueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if league.OwnerID != userID {
		return ErrForbidden
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("league_id = ?", leagueID).
			Delete(&models.LeagueMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.League{}, leagueID).Error
	})
	if err != nil {
		return err
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:leaderboard:league:%d", leagueID))
	utils.InvalidateByPrefix("cache:leagues:public")
	return nil
}

// Get loads one league.
func (s *LeagueService) Get(ctx context.Context, leagueID uint) (*models.League, error) {
	var league models.League
	err := s.db.WithContext(ctx).First(&league, leagueID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &league, nil
}

// Mine returns the leagues the user belongs to, newest first.
func (s *LeagueService) Mine(userID uint) ([]models.League, error) {
	var leagues []models.League
	err := s.db.
		Joins("JOIN league_members ON league_members.league_id = leagues.id").
		Where("league_members.user_id = ?", userID).
		Order("leagues.created_at DESC").
		Find(&leagues).Error
	return leagues, err
}

// Public returns joinable public leagues, newest first.
func (s *LeagueService) Public(page, pageSize int) ([]models.League, int64, error) {
	var total int64
	if err := s.db.Model(&models.League{}).
		Where("is_public = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var leagues []models.League
	err := s.db.Where("is_public = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&leagues).Error
	return leagues, total, err
}

// MembershipLeagueIDs returns the ids of the leagues the user belongs
// to.
func (s *LeagueService) MembershipLeagueIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.LeagueMember{}).
		Where("user_id = ?", userID).
		Pluck("league_id", &ids).Error
	return ids, err
}

// Members returns the memberships of a league ordered by points.
func (s *LeagueService) Members(leagueID uint) ([]models.LeagueMember, error) {
	var members []models.LeagueMember
	err := s.db.Where("league_id = ?", leagueID).
		Order("points DESC, user_id ASC").
		Find(&members).Error
	return members, err
}

// generateJoinCode builds a short shareable code: up to three leading
// alphanumerics of the league name uppercased, padded with "FIT" for
// names with none, plus three random digits.
func generateJoinCode(name string) string {
	var prefix strings.Builder
	for _, r := range name {
		if prefix.Len() >= 3 {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			prefix.WriteRune(unicode.ToUpper(r))
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("FIT")
	}
	return fmt.Sprintf("%s%03d", prefix.String(), rand.Intn(1000))
}
