package directory

// Seed returns the reference fixture accounts. Passwords are hashed at seed
// time; plaintexts exist only in this file and are development-only.
func Seed() []*Principal {
	return []*Principal{
		{
			ID:           "1",
			Username:     "admin",
			PasswordHash: mustHash("admin123"),
			Role:         RoleNGOAdmin,
			Name:         "NGO Administrator",
			Email:        "admin@ngo.org",
		},
		{
			ID:           "2",
			Username:     "store1",
			PasswordHash: mustHash("store123"),
			Role:         RoleStore,
			Name:         "ABC Diner",
			StoreID:      "STORE_001",
			QRCode:       "STORE_QR_001",
			Address:      "123 Heping E. Rd, Daan District, Taipei",
			Phone:        "02-2345-6789",
		},
		{
			ID:           "3",
			Username:     "homeless1",
			PasswordHash: mustHash("homeless123"),
			Role:         RoleHomeless,
			Name:         "Chang Hsiao-ming",
			IDNumber:     "A123456789",
			QRCode:       "QR_001",
			Balance:      150,
		},
		{
			ID:           "4",
			Username:     "ngo_partner",
			PasswordHash: mustHash("partner123"),
			Role:         RoleNGOPartner,
			Name:         "NGO Partner",
			Email:        "partner@ngo.org",
		},
		{
			ID:              "5",
			Username:        "association",
			PasswordHash:    mustHash("assoc123"),
			Role:            RoleAssociationAdmin,
			Name:            "Association Administrator",
			AssociationName: "Taipei Street Friends Care Association",
		},
	}
}

func mustHash(password string) string {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}
