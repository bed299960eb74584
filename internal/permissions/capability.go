package permission

import (
	"fmt"

	"github.com/jmkoster/stockroom-backend/pkg/db/models"
)

// Capability names one of the ten permission flags. Capabilities are
// independent; admin grants nothing beyond the operations that demand it.
type Capability string

const (
	CapAdmin         Capability = "admin"
	CapViewPending   Capability = "view_pending"
	CapViewReceived  Capability = "view_received"
	CapEditPending   Capability = "edit_pending"
	CapCreateOrders  Capability = "create_orders"
	CapEditReceived  Capability = "edit_received"
	CapRemoveOrders  Capability = "remove_orders"
	CapEditProducts  Capability = "edit_products"
	CapViewProducts  Capability = "view_products"
	CapViewSuppliers Capability = "view_suppliers"
)

// All lists every capability in flag order.
func All() []Capability {
	return []Capability{
		CapAdmin,
		CapViewPending,
		CapViewReceived,
		CapEditPending,
		CapCreateOrders,
		CapEditReceived,
		CapRemoveOrders,
		CapEditProducts,
		CapViewProducts,
		CapViewSuppliers,
	}
}

// Flag reads the named capability off a permission row.
func Flag(p *models.Permission, cap Capability) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("permission row is required")
	}
	switch cap {
	case CapAdmin:
		return p.Admin, nil
	case CapViewPending:
		return p.ViewPending, nil
	case CapViewReceived:
		return p.ViewReceived, nil
	case CapEditPending:
		return p.EditPending, nil
	case CapCreateOrders:
		return p.CreateOrders, nil
	case CapEditReceived:
		return p.EditReceived, nil
	case CapRemoveOrders:
		return p.RemoveOrders, nil
	case CapEditProducts:
		return p.EditProducts, nil
	case CapViewProducts:
		return p.ViewProducts, nil
	case CapViewSuppliers:
		return p.ViewSuppliers, nil
	default:
		return false, fmt.Errorf("unknown capability %q", cap)
	}
}
