package directory

import "errors"

// ErrNotFound indicates the principal does not exist.
var ErrNotFound = errors.New("directory: not found")

// Principal is an entity able to authenticate: NGO staff, a partner store,
// association staff or a beneficiary. The password is held only as a bcrypt
// hash. Role is immutable after creation.
type Principal struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	Name         string

	// Role-specific profile fields.
	Email           string
	StoreID         string
	QRCode          string
	IDNumber        string
	AssociationName string
	Address         string
	Phone           string
	Balance         int64
}

// Profile is the public view of a principal; the password hash never leaves
// the directory. Field names follow the browser client's wire format.
type Profile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Role            Role   `json:"role"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	StoreID         string `json:"storeId,omitempty"`
	QRCode          string `json:"qrCode,omitempty"`
	IDNumber        string `json:"idNumber,omitempty"`
	AssociationName string `json:"associationName,omitempty"`
	Address         string `json:"address,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Balance         int64  `json:"balance,omitempty"`
}

// Profile strips credentials from the principal.
func (p *Principal) Profile() Profile {
	return Profile{
		ID:              p.ID,
		Username:        p.Username,
		Role:            p.Role,
		Name:            p.Name,
		Email:           p.Email,
		StoreID:         p.StoreID,
		QRCode:          p.QRCode,
		IDNumber:        p.IDNumber,
		AssociationName: p.AssociationName,
		Address:         p.Address,
		Phone:           p.Phone,
		Balance:         p.Balance,
	}
}
