package domain

type Role string

const (
	RoleSiteAdmin  Role = "siteAdmin"
	RoleVenueAdmin Role = "venueAdmin"
	RoleSubAdmin   Role = "subAdmin"
	RoleOrganiser  Role = "organiser"
	RoleScanner    Role = "scanner"
	RoleUser       Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSiteAdmin, RoleVenueAdmin, RoleSubAdmin, RoleOrganiser, RoleScanner, RoleUser:
		return true
	}

	return false
}

// Identity is the canonical caller shape. An empty VenueID means the caller
// is not bound to a single venue.
type Identity struct {
	UID     string
	Email   string
	Role    Role
	VenueID string
	Active  bool
}

func (i *Identity) CanScan() bool {
	if !i.Active {
		return false
	}

	switch i.Role {
	case RoleScanner, RoleVenueAdmin, RoleSubAdmin, RoleSiteAdmin:
		return true
	}

	return false
}

// CoversVenue reports whether the identity's venue scope includes venueID.
func (i *Identity) CoversVenue(venueID string) bool {
	return i.VenueID == "" || i.VenueID == venueID
}

type UserProfile struct {
	UID               string
	Email             string
	Role              Role
	VenueID           string
	Active            bool
	PaymentCustomerID string
}

func (p *UserProfile) Identity() *Identity {
	return &Identity{
		UID:     p.UID,
		Email:   p.Email,
		Role:    p.Role,
		VenueID: p.VenueID,
		Active:  p.Active,
	}
}
