package models

import "github.com/shopspring/decimal"

// VotingAuthority is the sole/shared/none share split reported per holding.
type VotingAuthority struct {
	Sole   int64 `json:"sole"`
	Shared int64 `json:"shared"`
	None   int64 `json:"none"`
}

// Total returns the summed voting authority share count.
func (v VotingAuthority) Total() int64 { return v.Sole + v.Shared + v.None }

// Holding is one information-table entry.
type Holding struct {
	IssuerName           string          `json:"issuer_name"`
	ClassTitle           string          `json:"class_title"`
	CUSIP                string          `json:"cusip"`
	Value                decimal.Decimal `json:"value"` // reported in thousands of USD
	Shares               int64           `json:"ssh_prnamt"`
	SharesType           string          `json:"ssh_prnamt_type"`
	PutCall              string          `json:"put_call,omitempty"`
	InvestmentDiscretion string          `json:"investment_discretion"`
	OtherManagers        string          `json:"other_managers,omitempty"`
	Voting               VotingAuthority `json:"voting_authority"`
}
