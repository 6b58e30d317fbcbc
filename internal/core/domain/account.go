package domain

// AccountStatus is the lifecycle state reported for an account.
type AccountStatus string

const (
	AccountStatusActive  AccountStatus = "active"
	AccountStatusLocked  AccountStatus = "locked"
	AccountStatusRemoved AccountStatus = "removed"
)

// Account is a tenant account on the cluster.
type Account struct {
	AccountID       int64          `json:"accountID"`
	Username        string         `json:"username"`
	Status          AccountStatus  `json:"status"`
	Volumes         []int64        `json:"volumes"`
	InitiatorSecret string         `json:"initiatorSecret,omitempty"`
	TargetSecret    string         `json:"targetSecret,omitempty"`
	Attributes      map[string]any `json:"attributes,omitempty"`
}
