package registry

import (
	"context"
	"errors"
	"math/big"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrTokenNotFound     = errors.New("token not found")
	ErrNotAuthorized     = errors.New("not authorized for token")
	ErrTransferRejected  = errors.New("transfer rejected by recipient")
	ErrTransferPending   = errors.New("transfer submitted but not confirmed")
)

// Registry is the external authority over ownership of one collection's tokens. The
// marketplace is the caller of every method.
type Registry interface {
	OwnerOf(ctx context.Context, tokenID *big.Int) (entity.Address, error)
	// GetApproved returns the single token spender, or the zero address.
	GetApproved(ctx context.Context, tokenID *big.Int) (entity.Address, error)
	// SafeTransferFrom moves the token and may run recipient code before returning.
	SafeTransferFrom(ctx context.Context, from, to entity.Address, tokenID *big.Int) error
}

// Collections resolves a collection contract address to its Registry.
type Collections interface {
	Collection(ctx context.Context, collection entity.Address) (Registry, error)
}
