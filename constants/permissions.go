package constants

// Organization permissions
const (
	PermAdminFull    = "homely-khana.admin.full-permit"
	PermKitchenFull  = "homely-khana.kitchen.full-permit"
	PermDriverFull   = "homely-khana.driver.full-permit"
	PermCustomerFull = "homely-khana.customer.full-permit"

	// Special permissions
	PermAny = "any"
)

// Permission groups for convenience
var (
	StaffPermissions = []string{
		PermAdminFull,
		PermKitchenFull,
		PermDriverFull,
	}
)
