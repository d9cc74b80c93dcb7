package zilliqa

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrNilResponse = errors.New("rpc response is nil, please check your network status")
)

type Provider struct {
	rpcClient *rpcClient
}

func NewProvider(rpcClient *rpcClient) *Provider {
	return &Provider{rpcClient: rpcClient}
}

// TransactionReceipt is the subset of a GetTransaction result the registry checks.
type TransactionReceipt struct {
	ID      string `json:"ID"`
	Receipt struct {
		Success    bool `json:"success"`
		Exceptions []struct {
			Line    int    `json:"line"`
			Message string `json:"message"`
		} `json:"exceptions"`
		Errors map[string][]int `json:"errors"`
	} `json:"receipt"`
}

func (p *Provider) GetNetworkId(ctx context.Context) (string, error) {
	response, err := p.call(ctx, "GetNetworkId")
	if err != nil {
		return "", err
	}

	return response.ResultAsString()
}

func (p *Provider) GetSmartContractCode(ctx context.Context, contractAddr string) (string, error) {
	response, err := p.call(ctx, "GetSmartContractCode", contractAddr)
	if err != nil {
		return "", err
	}

	var result struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(response.Result, &result); err != nil {
		return "", err
	}

	return result.Code, nil
}

// GetSmartContractSubState returns the raw value of one field of a contract's state,
// optionally narrowed by map keys. A missing entry is returned as a nil message.
func (p *Provider) GetSmartContractSubState(ctx context.Context, contractAddr, field string, indices ...string) (json.RawMessage, error) {
	if indices == nil {
		indices = []string{}
	}
	response, err := p.call(ctx, "GetSmartContractSubState", contractAddr, field, indices)
	if err != nil {
		return nil, err
	}
	if response.IsNull() {
		return nil, nil
	}

	var state map[string]json.RawMessage
	if err := json.Unmarshal(response.Result, &state); err != nil {
		return nil, err
	}

	return state[field], nil
}

func (p *Provider) GetTransaction(ctx context.Context, txId string) (*TransactionReceipt, error) {
	response, err := p.call(ctx, "GetTransaction", txId)
	if err != nil {
		return nil, err
	}

	var transaction TransactionReceipt
	if err := json.Unmarshal(response.Result, &transaction); err != nil {
		return nil, err
	}

	return &transaction, nil
}

func (p *Provider) call(ctx context.Context, method string, params ...interface{}) (*rpcResponse, error) {
	response, err := p.rpcClient.call(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	if response == nil {
		return nil, ErrNilResponse
	}

	if response.Error != nil {
		return nil, response.Error
	}

	return response, nil
}
