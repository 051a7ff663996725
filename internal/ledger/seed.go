package ledger

// SeedBeneficiaries returns the reference beneficiary fixture.
func SeedBeneficiaries() []Beneficiary {
	return []Beneficiary{
		{
			ID:       "A123456789",
			Name:     "Chang Hsiao-ming",
			IDNumber: "A123456789",
			QRCode:   "QR_001",
			Balance:  150,
			Phone:    "0912-345-678",
		},
		{
			ID:       "B234567890",
			Name:     "Lee Ta-hua",
			IDNumber: "B234567890",
			QRCode:   "QR_002",
			Balance:  200,
			Phone:    "0923-456-789",
		},
	}
}

// SeedStores returns the reference partner store fixture.
func SeedStores() []PartnerStore {
	return []PartnerStore{
		{
			ID:      "STORE_001",
			Name:    "ABC Diner",
			QRCode:  "STORE_QR_001",
			Address: "123 Heping E. Rd, Daan District, Taipei",
			Phone:   "02-2345-6789",
			Products: []Product{
				{ID: 1, Name: "Lunch Set", Points: 80, Description: "Main dish, soup and a drink"},
				{ID: 2, Name: "Breakfast Combo", Points: 50, Description: "Sandwich and coffee"},
				{ID: 3, Name: "Dinner Set", Points: 100, Description: "Two mains, soup, drink and dessert"},
				{ID: 4, Name: "Single Drink", Points: 20, Description: "Any drink"},
			},
		},
		{
			ID:      "STORE_002",
			Name:    "XYZ Laundry",
			QRCode:  "STORE_QR_002",
			Address: "456 Roosevelt Rd, Zhongzheng District, Taipei",
			Phone:   "02-3456-7890",
			Products: []Product{
				{ID: 1, Name: "Laundry Voucher", Points: 50, Description: "Standard wash"},
				{ID: 2, Name: "Ironing Service", Points: 30, Description: "Single garment"},
			},
		},
	}
}
