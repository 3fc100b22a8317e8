package inventory

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

type TeamRepo interface {
	Create(dbc dbctx.Context, rows []*types.Team) ([]*types.Team, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Team, error)
	GetByName(dbc dbctx.Context, name string) (*types.Team, error)
	GetByNames(dbc dbctx.Context, names []string) ([]*types.Team, error)
	List(dbc dbctx.Context) ([]*types.Team, error)
	Update(dbc dbctx.Context, team *types.Team, at time.Time) (bool, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
}

type teamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return &teamRepo{db: db, log: baseLog.With("repo", "TeamRepo")}
}

func (r *teamRepo) Create(dbc dbctx.Context, rows []*types.Team) ([]*types.Team, error) {
	if len(rows) == 0 {
		return []*types.Team{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *teamRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Team, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Team
	if err := dbc.DB(r.db).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *teamRepo) GetByName(dbc dbctx.Context, name string) (*types.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var row types.Team
	if err := dbc.DB(r.db).Where("name = ?", name).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *teamRepo) GetByNames(dbc dbctx.Context, names []string) ([]*types.Team, error) {
	var rows []*types.Team
	if len(names) == 0 {
		return rows, nil
	}
	if err := dbc.DB(r.db).Where("name IN ?", names).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *teamRepo) List(dbc dbctx.Context) ([]*types.Team, error) {
	var rows []*types.Team
	if err := dbc.DB(r.db).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *teamRepo) Update(dbc dbctx.Context, team *types.Team, at time.Time) (bool, error) {
	res := dbc.DB(r.db).
		Model(&types.Team{}).
		Where("id = ?", team.ID).
		Updates(map[string]any{
			"name":       team.Name,
			"color":      team.Color,
			"updated_at": at.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *teamRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Team{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
