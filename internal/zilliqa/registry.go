package zilliqa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/registry"
	"github.com/ZilDuck/zilliqa-nft-marketplace/pkg/zil"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	txnHashNotPresent = "Txn Hash not Present"
)

var (
	ErrConfirmationTimeout = errors.New("transaction not confirmed")
)

// PendingTransferError is returned when a TransferFrom was sent but its outcome is
// unknown. The token may still move on chain, the transaction id is needed to
// reconcile it.
type PendingTransferError struct {
	TxId string
	Err  error
}

func (e *PendingTransferError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", registry.ErrTransferPending, e.TxId, ErrConfirmationTimeout)
	}
	return fmt.Sprintf("%s: %s: %v", registry.ErrTransferPending, e.TxId, e.Err)
}

func (e *PendingTransferError) Is(target error) bool {
	return target == registry.ErrTransferPending || (e.Err == nil && target == ErrConfirmationTimeout)
}

func (e *PendingTransferError) Unwrap() error {
	return e.Err
}

// Registry resolves ZRC6 contracts on a Zilliqa node. Ownership and approvals are read
// from contract state; transfers are TransferFrom calls sent by the signer.
type Registry struct {
	provider *Provider
	signer   Signer
	cache    *cache.Cache

	confirmAttempts int
	confirmInterval time.Duration
}

func NewRegistry(provider *Provider, signer Signer, cache *cache.Cache, confirmAttempts int, confirmInterval time.Duration) *Registry {
	return &Registry{
		provider:        provider,
		signer:          signer,
		cache:           cache,
		confirmAttempts: confirmAttempts,
		confirmInterval: confirmInterval,
	}
}

func (r *Registry) Collection(ctx context.Context, addr entity.Address) (registry.Registry, error) {
	isZrc6, err := r.isZrc6(ctx, addr)
	if err != nil {
		return nil, err
	}
	if !isZrc6 {
		return nil, fmt.Errorf("%w: %s is not a ZRC6 contract", registry.ErrUnknownCollection, addr)
	}

	return zrc6Collection{r, addr}, nil
}

func (r *Registry) isZrc6(ctx context.Context, addr entity.Address) (bool, error) {
	key := "zrc6." + addr.String()
	if cached, found := r.cache.Get(key); found {
		return cached.(bool), nil
	}

	code, err := r.provider.GetSmartContractCode(ctx, addr.Hex())
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			return false, fmt.Errorf("%w: %s: %v", registry.ErrUnknownCollection, addr, err)
		}
		return false, err
	}

	isZrc6 := strings.Contains(code, zil.TokenOwnersField) &&
		strings.Contains(code, zil.SpendersField) &&
		strings.Contains(code, "transition "+zil.TransferFromTransition)

	zap.L().With(zap.String("collection", addr.String()), zap.Bool("zrc6", isZrc6)).Debug("Zilliqa: Contract shape")
	r.cache.Set(key, isZrc6, cache.DefaultExpiration)

	return isZrc6, nil
}

// subStateEntry reads field[tokenID] as an address. A missing entry returns false.
func (r *Registry) subStateEntry(ctx context.Context, addr entity.Address, field string, tokenID *big.Int) (entity.Address, bool, error) {
	id := entity.Amount(tokenID).String()
	raw, err := r.provider.GetSmartContractSubState(ctx, addr.Hex(), field, id)
	if err != nil {
		return "", false, err
	}
	if raw == nil {
		return "", false, nil
	}

	var entries map[string]string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return "", false, err
	}
	value, ok := entries[id]
	if !ok {
		return "", false, nil
	}

	entry, err := entity.ParseAddress(value)
	if err != nil {
		return "", false, err
	}
	return entry, true, nil
}

// waitForReceipt polls until the node knows txId. It is bounded by the confirm attempts
// only, the caller's context no longer matters once the transaction is out.
func (r *Registry) waitForReceipt(txId string) (*TransactionReceipt, error) {
	ctx := context.Background()

	for attempt := 1; attempt <= r.confirmAttempts; attempt++ {
		tx, err := r.provider.GetTransaction(ctx, txId)
		if err == nil {
			return tx, nil
		}

		var rpcErr *RPCError
		if !errors.As(err, &rpcErr) || !strings.Contains(rpcErr.Message, txnHashNotPresent) {
			return nil, err
		}

		zap.L().With(zap.String("txId", txId), zap.Int("attempt", attempt)).Debug("Zilliqa: Waiting for confirmation")
		time.Sleep(r.confirmInterval)
	}

	return nil, &PendingTransferError{TxId: txId}
}

type zrc6Collection struct {
	registry *Registry
	address  entity.Address
}

func (c zrc6Collection) OwnerOf(ctx context.Context, tokenID *big.Int) (entity.Address, error) {
	owner, ok, err := c.registry.subStateEntry(ctx, c.address, zil.TokenOwnersField, tokenID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", registry.ErrTokenNotFound, c.address, entity.Amount(tokenID))
	}
	return owner, nil
}

func (c zrc6Collection) GetApproved(ctx context.Context, tokenID *big.Int) (entity.Address, error) {
	spender, ok, err := c.registry.subStateEntry(ctx, c.address, zil.SpendersField, tokenID)
	if err != nil {
		return "", err
	}
	if !ok {
		return entity.ZeroAddress, nil
	}
	return spender, nil
}

// SafeTransferFrom sends TransferFrom and blocks until the transaction is confirmed. The
// contract moves the token from its current owner, so from is checked against the state
// first.
func (c zrc6Collection) SafeTransferFrom(ctx context.Context, from, to entity.Address, tokenID *big.Int) error {
	owner, err := c.OwnerOf(ctx, tokenID)
	if err != nil {
		return err
	}
	if owner != from {
		return fmt.Errorf("%w: %s is not the owner", registry.ErrNotAuthorized, from)
	}

	txId, err := c.registry.signer.Call(ctx, c.address, zil.NewTransferFrom(to.String(), entity.Amount(tokenID).String()))
	if err != nil {
		return err
	}

	tx, err := c.registry.waitForReceipt(txId)
	if err != nil {
		var pending *PendingTransferError
		if !errors.As(err, &pending) {
			pending = &PendingTransferError{TxId: txId, Err: err}
		}
		zap.L().With(
			zap.Error(pending),
			zap.String("collection", c.address.String()),
			zap.String("tokenId", entity.Amount(tokenID).String()),
			zap.String("to", to.String()),
			zap.String("txId", txId),
		).Error("Zilliqa: TransferFrom sent but not confirmed, reconcile manually")
		return pending
	}
	if !tx.Receipt.Success {
		zap.L().With(zap.String("txId", txId), zap.Any("exceptions", tx.Receipt.Exceptions)).Warn("Zilliqa: TransferFrom failed")
		return fmt.Errorf("%w: transaction %s failed", registry.ErrTransferRejected, txId)
	}

	zap.L().With(
		zap.String("collection", c.address.String()),
		zap.String("tokenId", entity.Amount(tokenID).String()),
		zap.String("to", to.String()),
		zap.String("txId", txId),
	).Info("Zilliqa: Token transferred")

	return nil
}
