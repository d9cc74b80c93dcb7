package zil

import (
	"errors"
)

type Params []Param

var (
	ErrParamNotFound = errors.New("param not found")
)

// Param is a Scilla transition argument.
type Param struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
	VName string      `json:"vname"`
}

func NewParam(vName, paramType string, value interface{}) Param {
	return Param{Type: paramType, Value: value, VName: vName}
}

func (p Params) GetParam(vName string) (Param, error) {
	for _, param := range p {
		if param.VName == vName {
			return param, nil
		}
	}
	return Param{}, ErrParamNotFound
}

func (p Params) HasParam(vName string, paramType string) bool {
	param, err := p.GetParam(vName)
	if err != nil {
		return false
	}
	return param.Type == paramType
}
