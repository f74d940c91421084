package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/team-task-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCreateTeam is returned when creating a team fails inside the creation transaction.
	ErrCreateTeam = errors.New("team repository: create team failed")
	// ErrCreateTeamMember is returned when creating the admin membership fails inside the creation transaction.
	ErrCreateTeamMember = errors.New("team repository: create team member failed")
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// CreateWithAdmin creates a team and the admin's ADMIN membership atomically
func (r *GormTeamRepository) CreateWithAdmin(team *models.Team, admin *models.TeamMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(team).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeam, err)
		}

		admin.TeamID = team.ID
		admin.UserID = team.AdminID
		admin.Role = models.RoleAdmin

		if err := tx.Create(admin).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateTeamMember, err)
		}

		return nil
	})
}

// FindByID finds a team by ID with optional preloading
func (r *GormTeamRepository) FindByID(id uint64, preload ...string) (*models.Team, error) {
	var team models.Team
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(team *models.Team) error {
	return r.db.Model(team).Omit(clause.Associations).Select("Name", "Description").Updates(team).Error
}

// Delete deletes a team and all related data in a transaction
func (r *GormTeamRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteTeams(tx, []uint64{id})
	})
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(member *models.TeamMember) error {
	return r.db.Create(member).Error
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(teamID, userID uint64) error {
	return r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{}).Error
}

// FindMember finds a specific team member
func (r *GormTeamRepository) FindMember(teamID, userID uint64) (*models.TeamMember, error) {
	var member models.TeamMember
	if err := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// IsMember reports whether the user holds a membership row in the team
func (r *GormTeamRepository) IsMember(teamID, userID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(teamID uint64) ([]models.TeamMember, error) {
	var members []models.TeamMember
	err := r.db.Preload("User").
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&members).Error
	return members, err
}

// ListMembershipsByUserID lists all teams a user is a member of
func (r *GormTeamRepository) ListMembershipsByUserID(userID uint64) ([]models.TeamMember, error) {
	var memberships []models.TeamMember
	err := r.db.Preload("Team").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}

// TeamIDsForUser returns the IDs of the teams a user belongs to
func (r *GormTeamRepository) TeamIDsForUser(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.TeamMember{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &ids).Error
	return ids, err
}

// AdminTeamIDs returns the IDs of the teams a user administers
func (r *GormTeamRepository) AdminTeamIDs(userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.Model(&models.Team{}).
		Where("admin_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}

// ListWithTasks returns the given teams with their tasks preloaded
func (r *GormTeamRepository) ListWithTasks(teamIDs []uint64) ([]models.Team, error) {
	if len(teamIDs) == 0 {
		return []models.Team{}, nil
	}

	var teams []models.Team
	err := r.db.Preload("Tasks").
		Where("id IN ?", teamIDs).
		Order("name ASC").
		Find(&teams).Error
	return teams, err
}
