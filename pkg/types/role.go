package types

// Role is the closed set of account roles.
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
	RoleDonor     Role = "donor"
)

var allRoles = map[Role]struct{}{
	RoleUser:      {},
	RoleAdmin:     {},
	RoleVolunteer: {},
	RoleDonor:     {},
}

func (r Role) Valid() bool {
	_, ok := allRoles[r]
	return ok
}

// Capability names one thing a role is allowed to do. The set is closed so the
// policy layer can switch over it exhaustively.
type Capability string

const (
	CapabilityViewAllRequests     Capability = "view_all_requests"
	CapabilityMutateAnyRequest    Capability = "mutate_any_request"
	CapabilityMutateOwnAssignment Capability = "mutate_own_assignment"
	CapabilityAssignRequests      Capability = "assign_requests"
	CapabilityApproveAdmins       Capability = "approve_admins"
	CapabilityViewSupportOffers   Capability = "view_support_offers"
	CapabilityCreateSupportOffer  Capability = "create_support_offer"
	CapabilityCreateRequest       Capability = "create_request"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapabilityViewAllRequests,
		CapabilityMutateAnyRequest,
		CapabilityAssignRequests,
		CapabilityApproveAdmins,
		CapabilityViewSupportOffers,
	},
	RoleVolunteer: {
		CapabilityMutateOwnAssignment,
	},
	RoleDonor: {
		CapabilityCreateSupportOffer,
	},
	RoleUser: {
		CapabilityCreateRequest,
	},
}

// Can reports whether the role carries the capability. It knows nothing about
// activation; callers gate inactive admins before asking.
func (r Role) Can(c Capability) bool {
	for _, held := range roleCapabilities[r] {
		if held == c {
			return true
		}
	}
	return false
}
