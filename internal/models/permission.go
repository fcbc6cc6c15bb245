package models

// Permission codenames checked by the library endpoints.
const (
	PermView   = "can_view"
	PermCreate = "can_create"
	PermEdit   = "can_edit"
	PermDelete = "can_delete"
)

// Group bundles permission codenames; users gain every permission of every group they belong to.
type Group struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Name        string            `gorm:"uniqueIndex;size:80;not null" json:"name"`
	Permissions []GroupPermission `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"permissions"`
}

// GroupPermission grants Codename to a group.
type GroupPermission struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	GroupID  uint   `gorm:"not null;uniqueIndex:idx_group_codename" json:"-"`
	Codename string `gorm:"size:50;not null;uniqueIndex:idx_group_codename" json:"codename"`
}
