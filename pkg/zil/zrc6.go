package zil

import (
	"encoding/json"
)

// ZRC6 mutable fields read by the marketplace.
const (
	TokenOwnersField = "token_owners"
	SpendersField    = "spenders"
)

const (
	TransferFromTransition = "TransferFrom"
)

// Transition is the data of a contract call transaction.
type Transition struct {
	Tag    string `json:"_tag"`
	Params Params `json:"params"`
}

// NewTransferFrom builds the ZRC6 TransferFrom call. The token moves from its current
// owner, so only the recipient and token id are passed.
func NewTransferFrom(to, tokenID string) Transition {
	return Transition{
		Tag: TransferFromTransition,
		Params: Params{
			NewParam("to", "ByStr20", to),
			NewParam("token_id", "Uint256", tokenID),
		},
	}
}

func (t Transition) Data() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
