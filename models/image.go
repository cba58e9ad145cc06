package models

import "time"

// ImageCheck is the outcome of probing one listing photo on the CDN.
type ImageCheck struct {
	PropertyID string    `json:"propertyId" db:"property_id"`
	URL        string    `json:"url" db:"url"`
	StatusCode int       `json:"statusCode" db:"status_code"`
	Error      string    `json:"error,omitempty" db:"error"`
	CheckedAt  time.Time `json:"checkedAt" db:"checked_at"`
}

// Broken reports whether the photo failed to load.
func (c ImageCheck) Broken() bool {
	return c.Error != "" || c.StatusCode < 200 || c.StatusCode >= 400
}
