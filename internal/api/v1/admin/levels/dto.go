package levels

// LevelRequest creates or replaces a tier definition.
type LevelRequest struct {
	LevelNumber     int     `json:"level_number" binding:"required,min=1"`
	Name            string  `json:"name" binding:"required"`
	XPRequired      int64   `json:"xp_required" binding:"min=0"`
	DiscountPercent float64 `json:"discount_percent" binding:"min=0,max=100"`
	FreeShipping    bool    `json:"free_shipping"`
	EarlyAccess     bool    `json:"early_access"`
	Installments    bool    `json:"installments"`
	SortOrder       int     `json:"sort_order"`
	Active          *bool   `json:"active"`
}

// LevelUpdateRequest patches an existing tier. Nil fields are left alone.
type LevelUpdateRequest struct {
	Name            *string  `json:"name"`
	XPRequired      *int64   `json:"xp_required"`
	DiscountPercent *float64 `json:"discount_percent"`
	FreeShipping    *bool    `json:"free_shipping"`
	EarlyAccess     *bool    `json:"early_access"`
	Installments    *bool    `json:"installments"`
	SortOrder       *int     `json:"sort_order"`
	Active          *bool    `json:"active"`
}
