package usage

// DefaultGenerationLimit is the lifetime number of successful generations per user.
const DefaultGenerationLimit = 20

// QuotaState is derived from the event log on every read; it is never stored.
type QuotaState struct {
	Count     int `json:"count"`
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

func NewQuotaState(count, limit int) QuotaState {
	if count < 0 {
		count = 0
	}
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return QuotaState{Count: count, Remaining: remaining, Limit: limit}
}

// FullQuota is what the ledger reports when it cannot read history.
func FullQuota(limit int) QuotaState {
	return QuotaState{Count: 0, Remaining: limit, Limit: limit}
}

func (q QuotaState) Exhausted() bool { return q.Remaining <= 0 }
