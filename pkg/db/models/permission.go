package models

// Permission holds the ten capability flags for one user. Exactly one row
// exists per user; a missing row is a fault, not an implicit all-deny.
type Permission struct {
	UserID        int32 `gorm:"column:user_id;primaryKey;autoIncrement:false" json:"user_id"`
	Admin         bool  `gorm:"column:admin;not null" json:"admin"`
	ViewPending   bool  `gorm:"column:view_pending;not null" json:"view_pending"`
	ViewReceived  bool  `gorm:"column:view_received;not null" json:"view_received"`
	EditPending   bool  `gorm:"column:edit_pending;not null" json:"edit_pending"`
	CreateOrders  bool  `gorm:"column:create_orders;not null" json:"create_orders"`
	EditReceived  bool  `gorm:"column:edit_received;not null" json:"edit_received"`
	RemoveOrders  bool  `gorm:"column:remove_orders;not null" json:"remove_orders"`
	EditProducts  bool  `gorm:"column:edit_products;not null" json:"edit_products"`
	ViewProducts  bool  `gorm:"column:view_products;not null" json:"view_products"`
	ViewSuppliers bool  `gorm:"column:view_suppliers;not null" json:"view_suppliers"`
}
