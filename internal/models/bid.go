package models

// Bid statuses as recorded by the billing system. A campaign only counts
// toward sold inventory while its bid is authorized or charged.
const (
	BidStatusAuthorized = "authorized"
	BidStatusCharged    = "charged"
	BidStatusRefunded   = "refunded"
	BidStatusVoid       = "void"
)

// Bid is the payment transaction backing a campaign.
type Bid struct {
	TransactionID int64  `json:"transaction_id"`
	CampaignID    int64  `json:"campaign_id"`
	Status        string `json:"status"`
}

// IsAuthorized reports whether the bid has a payment hold in place.
func (b Bid) IsAuthorized() bool {
	return b.Status == BidStatusAuthorized
}

// IsCharged reports whether the bid has been captured.
func (b Bid) IsCharged() bool {
	return b.Status == BidStatusCharged
}
