package model

import "github.com/shopspring/decimal"

// Account is the per-client balance record.
type Account struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

// NewAccount returns an empty account for the given client.
func NewAccount(client ClientID) Account {
	return Account{
		Client:    client,
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total is the derived sum of available and held funds.
func (a Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}

// Rejection records a transaction the engine refused to apply.
type Rejection struct {
	Row    int      `json:"row"`
	Kind   TxKind   `json:"kind"`
	Client ClientID `json:"client"`
	TxID   TxID     `json:"tx"`
	Reason string   `json:"reason"`
}
