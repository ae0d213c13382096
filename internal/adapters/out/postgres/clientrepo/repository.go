// Package clientrepo resolves client accounts to their groups. Ownership
// grants are held by groups, so ordering needs this lookup at confirmation.
package clientrepo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"geoshop/internal/core/domain/model/kernel"
)

// ClientGroupDTO represents one client's membership in one group.
type ClientGroupDTO struct {
	ClientID uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupID  uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName specifies the database table name for group memberships.
func (ClientGroupDTO) TableName() string {
	return "client_groups"
}

// GormClientRepository implements IdentityService using GORM.
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GORM client repository.
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// GetClientGroups retrieves the groups a client belongs to. A client in no
// group gets an empty slice, not an error.
func (r *GormClientRepository) GetClientGroups(ctx context.Context, clientID kernel.UUID) ([]kernel.UUID, error) {
	if err := clientID.Validate(); err != nil {
		return nil, err
	}

	var dtos []ClientGroupDTO
	err := r.db.WithContext(ctx).Find(&dtos, "client_id = ?", clientID.Bytes()).Error
	if err != nil {
		return nil, err
	}

	groups := make([]kernel.UUID, 0, len(dtos))
	for _, dto := range dtos {
		groupID, convErr := kernel.UUIDFromBytes(dto.GroupID[:])
		if convErr != nil {
			return nil, convErr
		}
		groups = append(groups, groupID)
	}
	return groups, nil
}

// AddMembership records a client's membership in a group. Serves back-office
// imports and test seeding.
func (r *GormClientRepository) AddMembership(ctx context.Context, clientID, groupID kernel.UUID) error {
	dto := ClientGroupDTO{
		ClientID: clientID.Bytes(),
		GroupID:  groupID.Bytes(),
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}
