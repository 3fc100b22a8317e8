package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type MemberRepo interface {
	Create(dbc dbctx.Context, rows []*types.Member) ([]*types.Member, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Member, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Member, error)
	FindByEmailOrID(dbc dbctx.Context, identity string) (*types.Member, error)
	GetByIDWithTeam(dbc dbctx.Context, id uuid.UUID) (*types.Member, error)
	ListActive(dbc dbctx.Context) ([]*types.Member, error)
	ListActiveWithTeam(dbc dbctx.Context) ([]*types.Member, error)
	ExistingEmails(dbc dbctx.Context, emails []string) ([]string, error)
	CountByTeam(dbc dbctx.Context, teamID uuid.UUID) (int64, error)
	CASUpdateAssets(dbc dbctx.Context, id uuid.UUID, version int, assets []types.Asset, at time.Time) (bool, error)
	CASUpdateProfile(dbc dbctx.Context, m *types.Member, version int, at time.Time) (bool, error)
	SoftDeleteByVersion(dbc dbctx.Context, id uuid.UUID, version int, at time.Time) (bool, error)
}

type memberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
	return &memberRepo{db: db, log: baseLog.With("repo", "MemberRepo")}
}

func (r *memberRepo) Create(dbc dbctx.Context, rows []*types.Member) ([]*types.Member, error) {
	if len(rows) == 0 {
		return []*types.Member{}, nil
	}
	if err := dbc.DB(r.db).Omit("Team").Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *memberRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Member, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *memberRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Where("email = ?", email))
}

// FindByEmailOrID resolves a holder identity: a member id or a (case-insensitive) email.
func (r *memberRepo) FindByEmailOrID(dbc dbctx.Context, identity string) (*types.Member, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, nil
	}
	if id, err := uuid.Parse(identity); err == nil {
		return r.GetByID(dbc, id)
	}
	return r.GetByEmail(dbc, identity)
}

func (r *memberRepo) GetByIDWithTeam(dbc dbctx.Context, id uuid.UUID) (*types.Member, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.DB(r.db).Preload("Team").Where("id = ?", id))
}

// ListActive returns every non-deleted member with its embedded assets, in a stable order.
func (r *memberRepo) ListActive(dbc dbctx.Context) ([]*types.Member, error) {
	var rows []*types.Member
	if err := dbc.DB(r.db).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *memberRepo) ListActiveWithTeam(dbc dbctx.Context) ([]*types.Member, error) {
	var rows []*types.Member
	if err := dbc.DB(r.db).Preload("Team").Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *memberRepo) ExistingEmails(dbc dbctx.Context, emails []string) ([]string, error) {
	out := []string{}
	if len(emails) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Model(&types.Member{}).
		Where("email IN ?", emails).
		Order("email ASC").
		Pluck("email", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *memberRepo) CountByTeam(dbc dbctx.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&types.Member{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CASUpdateAssets rewrites the embedded list when the stored version still matches.
func (r *memberRepo) CASUpdateAssets(dbc dbctx.Context, id uuid.UUID, version int, assets []types.Asset, at time.Time) (bool, error) {
	if assets == nil {
		assets = []types.Asset{}
	}
	res := dbc.DB(r.db).
		Model(&types.Member{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"assets":     datatypes.JSONSlice[types.Asset](assets),
			"version":    version + 1,
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CASUpdateProfile writes profile columns, team and embedded list together when the stored version still matches.
func (r *memberRepo) CASUpdateProfile(dbc dbctx.Context, m *types.Member, version int, at time.Time) (bool, error) {
	assets := []types.Asset(m.Assets)
	if assets == nil {
		assets = []types.Asset{}
	}
	var teamID any
	if m.TeamID != nil {
		teamID = *m.TeamID
	}
	res := dbc.DB(r.db).
		Model(&types.Member{}).
		Where("id = ? AND version = ?", m.ID, version).
		Updates(map[string]any{
			"first_name":      m.FirstName,
			"last_name":       m.LastName,
			"email":           m.Email,
			"picture":         m.Picture,
			"position":        m.Position,
			"personal_email":  m.PersonalEmail,
			"phone":           m.Phone,
			"city":            m.City,
			"country":         m.Country,
			"zip_code":        m.ZipCode,
			"address":         m.Address,
			"apartment":       m.Apartment,
			"additional_info": m.AdditionalInfo,
			"start_date":      m.StartDate,
			"birth_date":      m.BirthDate,
			"dni":             m.DNI,
			"team_id":         teamID,
			"assets":          datatypes.JSONSlice[types.Asset](assets),
			"version":         version + 1,
			"updated_at":      at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SoftDeleteByVersion marks the member deleted and empties its list.
func (r *memberRepo) SoftDeleteByVersion(dbc dbctx.Context, id uuid.UUID, version int, at time.Time) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Member{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"assets":     datatypes.JSONSlice[types.Asset]{},
			"version":    version + 1,
			"updated_at": at.UTC(),
			"deleted_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *memberRepo) first(q *gorm.DB) (*types.Member, error) {
	var row types.Member
	if err := q.Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}
