package storage

// DefaultState is the complete document every read is merged over. Keys added
// in later schema versions pick their values up from here.
func DefaultState() PersistedState {
	return PersistedState{
		SchemaVersion: SchemaVersion,
		CurrentOffer: Offer{
			UnitType:    "apartment",
			Category:    "offplan",
			PaymentPlan: []PaymentRow{},
		},
		Branding: Branding{
			PrimaryColor: "#1F4E79",
		},
		Labels: Labels{
			"projectName":   "Project",
			"unitNumber":    "Unit No.",
			"unitType":      "Unit Type",
			"totalArea":     "Total Area",
			"originalPrice": "Original Price",
			"sellingPrice":  "Selling Price",
			"refund":        "Refund to Seller",
			"balance":       "Balance Resale",
			"premium":       "Premium",
			"adgmFee":       "ADGM Registration Fee",
			"agencyFee":     "Agency Fee",
			"totalPayable":  "Total Payable",
		},
		Templates: []Template{},
		Settings: Settings{
			AutoCalculate:         true,
			CurrentTemplateLayout: "classic",
			LockedFields:          []string{},
		},
		CustomDropdowns: map[string][]string{},
		Version:         StateVersion,
	}
}
