package inventory

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/nahuelRo/first-plug-api/internal/domain"
	"github.com/nahuelRo/first-plug-api/internal/platform/dbctx"
	"github.com/nahuelRo/first-plug-api/internal/platform/logger"
)

// AssetRepo reads and writes pool rows. Embedded assets live on MemberRepo rows.
type AssetRepo interface {
	Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error)
	GetActiveBySerial(dbc dbctx.Context, serial string, excludeID uuid.UUID) (*types.Asset, error)
	ListActive(dbc dbctx.Context) ([]*types.Asset, error)
	ListActiveByStatus(dbc dbctx.Context, status string) ([]*types.Asset, error)
	ListPendingForHolder(dbc dbctx.Context, email string) ([]*types.Asset, error)
	DeleteByVersion(dbc dbctx.Context, id uuid.UUID, version int) (bool, error)
}

type assetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetRepo(db *gorm.DB, baseLog *logger.Logger) AssetRepo {
	return &assetRepo{db: db, log: baseLog.With("repo", "AssetRepo")}
}

func (r *assetRepo) Create(dbc dbctx.Context, rows []*types.Asset) ([]*types.Asset, error) {
	if len(rows) == 0 {
		return []*types.Asset{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Asset, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Asset
	err := dbc.DB(r.db).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *assetRepo) GetActiveBySerial(dbc dbctx.Context, serial string, excludeID uuid.UUID) (*types.Asset, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, nil
	}
	q := dbc.DB(r.db).Where("serial_number = ? AND is_deleted = ?", serial, false)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	var rows []*types.Asset
	if err := q.Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *assetRepo) ListActive(dbc dbctx.Context) ([]*types.Asset, error) {
	var rows []*types.Asset
	if err := dbc.DB(r.db).
		Where("is_deleted = ?", false).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) ListActiveByStatus(dbc dbctx.Context, status string) ([]*types.Asset, error) {
	var rows []*types.Asset
	if err := dbc.DB(r.db).
		Where("is_deleted = ? AND status = ?", false, status).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPendingForHolder returns pool assets that name email as holder but were
// created before that member existed.
func (r *assetRepo) ListPendingForHolder(dbc dbctx.Context, email string) ([]*types.Asset, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return []*types.Asset{}, nil
	}
	var rows []*types.Asset
	if err := dbc.DB(r.db).
		Where("is_deleted = ? AND assigned_email = ?", false, email).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetRepo) DeleteByVersion(dbc dbctx.Context, id uuid.UUID, version int) (bool, error) {
	res := dbc.DB(r.db).
		Where("id = ? AND version = ?", id, version).
		Delete(&types.Asset{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
