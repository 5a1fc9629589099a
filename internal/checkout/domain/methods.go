package domain

// ShippingMethod is a delivery option offered at checkout.
type ShippingMethod struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Fee           Money  `json:"fee_cents"`
	EstimatedDays int    `json:"estimated_days"`
}

// PaymentMethod is a payment option; card-requiring methods reveal the card fields.
type PaymentMethod struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	RequiresCard bool   `json:"requires_card"`
}

// FeesOf builds the fee mapping handed to the checkout page.
func FeesOf(methods []ShippingMethod) ShippingFees {
	fees := make(ShippingFees, len(methods))
	for _, m := range methods {
		fees[m.ID] = m.Fee
	}
	return fees
}

// CardRequirements maps payment method id to whether it needs card details.
func CardRequirements(methods []PaymentMethod) map[string]bool {
	out := make(map[string]bool, len(methods))
	for _, m := range methods {
		out[m.ID] = m.RequiresCard
	}
	return out
}
