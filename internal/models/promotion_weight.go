package models

import "time"

// PromotionWeight is a calendar-join row linking a campaign to a specific
// date it is active on a specific site. The ad-management system writes one
// row per (campaign, site, day); inventory queries use them to find which
// campaigns touch a date range without scanning every campaign.
type PromotionWeight struct {
	SiteName   string    `json:"site_name"` // lookup key; empty for the front page
	Date       time.Time `json:"date"`
	CampaignID int64     `json:"campaign_id"`
}
