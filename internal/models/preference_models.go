package models

// PreferenceMetadata describes one preference for building configuration UIs.
type PreferenceMetadata struct {
	Default     interface{}   `json:"default"`
	Current     interface{}   `json:"current"`
	Type        string        `json:"type"`
	Options     []interface{} `json:"options"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
}

// DayRange is the current calendar day in the user's timezone.
type DayRange struct {
	StartMs       int64  `json:"start_ms"`
	EndMs         int64  `json:"end_ms"`
	ISODate       string `json:"iso_date"`
	FormattedDate string `json:"formatted_date"`
	Timezone      string `json:"timezone"`
}
