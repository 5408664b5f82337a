package request

// CreateOptionRequest represents the request body for recording an option
// position. All fields are required.
type CreateOptionRequest struct {
	Ticker   string  `json:"ticker"`
	Type     string  `json:"type"`
	Strike   float64 `json:"strike"`
	Premium  float64 `json:"premium"`
	Quantity float64 `json:"quantity"`
	Expires  string  `json:"expires"`
	Status   string  `json:"status"`
}

// UpdateOptionRequest represents the request body for a partial option
// update. All fields are optional (pointers); nil keeps the stored value.
type UpdateOptionRequest struct {
	Type     *string  `json:"type,omitempty"`
	Strike   *float64 `json:"strike,omitempty"`
	Premium  *float64 `json:"premium,omitempty"`
	Quantity *float64 `json:"quantity,omitempty"`
	Expires  *string  `json:"expires,omitempty"`
	Status   *string  `json:"status,omitempty"`
}

// Empty reports whether the update carries no recognized fields.
func (r UpdateOptionRequest) Empty() bool {
	return r.Type == nil && r.Strike == nil && r.Premium == nil &&
		r.Quantity == nil && r.Expires == nil && r.Status == nil
}

// SettleOptionRequest represents the request body for closing, expiring or
// exercising an option, recording its final gain or loss.
type SettleOptionRequest struct {
	GainLoss float64 `json:"gainLoss"`
}
