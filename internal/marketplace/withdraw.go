package marketplace

import (
	"context"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// WithdrawProceeds pays the caller everything the ledger owes them. The balance is
// zeroed before the value transfer; if the transfer fails the zeroing is reverted with
// the rest of the unit of work.
func (m *Marketplace) WithdrawProceeds(ctx context.Context, caller entity.Address) error {
	fields := []zap.Field{zap.String("caller", caller.String())}

	return m.execute(ctx, "withdraw", fields, func(ctx context.Context) error {
		amount, err := m.requireProceeds(caller)
		if err != nil {
			return err
		}

		m.proceeds.Zero(caller)

		e := entity.NewEvent(entity.ProceedsWithdrawnEvent, caller)
		e.Value = amount.String()
		m.emit(ctx, e)

		if err := m.bank.Transfer(ctx, m.address, caller, amount); err != nil {
			return &WithdrawalError{Seller: caller, Amount: amount, Err: err}
		}

		return nil
	})
}
