package models

import "time"

// Campaign represents a scheduled advertising purchase: a date range, an
// impression budget, and a reference to the transaction that pays for it.
// Campaigns are owned and mutated by the external ad-management system;
// this module only reads them.
type Campaign struct {
	ID          int64     `json:"id"`
	SiteName    string    `json:"site_name"` // empty means the front page
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	NDays       int       `json:"ndays"`
	Impressions int64     `json:"impressions"`
	// TransactionID is nil for campaigns that have no associated payment
	// transaction (legacy, pre-CPM). Such campaigns never consume inventory.
	TransactionID *int64 `json:"transaction_id"`
}

// DisplaySiteName resolves the name a campaign is reported under. Campaigns
// with an empty site name belong to the front page.
func (c Campaign) DisplaySiteName() string {
	if c.SiteName == "" {
		return DefaultSiteName
	}
	return c.SiteName
}

// ActiveDates returns the calendar days the campaign runs on, half-open over
// [StartDate, EndDate).
func (c Campaign) ActiveDates() []time.Time {
	return DateRange(c.StartDate, c.EndDate)
}
