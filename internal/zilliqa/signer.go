package zilliqa

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/pkg/zil"
	"github.com/Zilliqa/gozilliqa-sdk/account"
	"github.com/Zilliqa/gozilliqa-sdk/keytools"
	provider2 "github.com/Zilliqa/gozilliqa-sdk/provider"
	"github.com/Zilliqa/gozilliqa-sdk/transaction"
	"github.com/Zilliqa/gozilliqa-sdk/util"
	"go.uber.org/zap"
)

var (
	ErrMissingPrivateKey = errors.New("missing private key")
	ErrNoTransactionId   = errors.New("transaction id missing from response")
)

// Signer submits contract calls from the marketplace account.
type Signer interface {
	Address() entity.Address
	Call(ctx context.Context, contract entity.Address, transition zil.Transition) (string, error)
}

type SignerConfig struct {
	Url        string
	PrivateKey string
	ChainId    int
	MsgVersion int
	GasPrice   string
	GasLimit   string
}

type walletSigner struct {
	config    SignerConfig
	wallet    *account.Wallet
	provider  *provider2.Provider
	address   entity.Address
	publicKey string
}

func NewSigner(config SignerConfig) (Signer, error) {
	if config.PrivateKey == "" {
		return nil, ErrMissingPrivateKey
	}

	privateKey := util.DecodeHex(config.PrivateKey)
	address, err := entity.ParseAddress(keytools.GetAddressFromPrivateKey(privateKey))
	if err != nil {
		return nil, err
	}

	wallet := account.NewWallet()
	wallet.AddByPrivateKey(config.PrivateKey)

	return &walletSigner{
		config:    config,
		wallet:    wallet,
		provider:  provider2.NewProvider(config.Url),
		address:   address,
		publicKey: util.EncodeHex(keytools.GetPublicKeyFromPrivateKey(privateKey, true)),
	}, nil
}

func (s *walletSigner) Address() entity.Address {
	return s.address
}

func (s *walletSigner) Call(ctx context.Context, contract entity.Address, transition zil.Transition) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := transition.Data()
	if err != nil {
		return "", err
	}

	tx := &transaction.Transaction{
		Version:      strconv.FormatInt(int64(util.Pack(s.config.ChainId, s.config.MsgVersion)), 10),
		SenderPubKey: s.publicKey,
		ToAddr:       contract.Bech32(),
		Amount:       "0",
		GasPrice:     s.config.GasPrice,
		GasLimit:     s.config.GasLimit,
		Code:         "",
		Data:         data,
		Priority:     false,
	}

	if err := s.wallet.Sign(tx, *s.provider); err != nil {
		return "", fmt.Errorf("zilliqa: sign %s: %w", transition.Tag, err)
	}

	rsp, err := s.provider.CreateTransaction(tx.ToTransactionPayload())
	if err != nil {
		return "", err
	}
	if rsp.Error != nil {
		return "", fmt.Errorf("zilliqa: create transaction: %s", rsp.Error.Message)
	}

	result, ok := rsp.Result.(map[string]interface{})
	if !ok {
		return "", ErrNoTransactionId
	}
	txId, ok := result["TranID"].(string)
	if !ok || txId == "" {
		return "", ErrNoTransactionId
	}

	zap.L().With(
		zap.String("contract", contract.String()),
		zap.String("transition", transition.Tag),
		zap.String("txId", txId),
	).Info("Zilliqa: Transaction submitted")

	return txId, nil
}
