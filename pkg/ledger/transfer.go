package ledger

import (
	"time"

	"github.com/crnlicp/chronolock/pkg/principal"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// TransferArgs is the argument set for Transfer.
type TransferArgs struct {
	Caller         types.Principal
	FromSubaccount *types.Subaccount
	To             types.Account
	Amount         types.Amount
	Now            time.Time
}

// Transfer implements spec.md §4.D.3 transfer: debits amount from
// (caller, from_subaccount), applies the fee split, and credits the
// recipient with amount-fee.
func (l *Ledger) Transfer(args TransferArgs) (types.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	from := types.Account{Owner: args.Caller, Subaccount: args.FromSubaccount}

	var accepted types.Amount
	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAuthenticated(args.Caller, admin, "transfer"); err != nil {
			return err
		}
		meta, err := tx.GetMetadata()
		if err != nil {
			return err
		}
		if err := enforceVestingGate(tx, from, admin, meta, args.Now); err != nil {
			return err
		}
		if err := applyDebitCreditFeeSplit(tx, meta, from, args.To, args.Amount, admin); err != nil {
			return err
		}
		accepted = args.Amount
		return nil
	})
	if err != nil {
		return types.Amount{}, err
	}

	// Suspension point: mint the tx-id via the randomness oracle after all
	// state mutations have been applied and validated (spec.md §5). The
	// journal write after resume is best-effort; a crash here leaves the
	// balance change (already committed) authoritative.
	l.mu.Unlock()
	id, idErr := l.ids.TransactionID(args.Now.UnixNano())
	l.mu.Lock()
	if idErr == nil {
		ev := types.TransactionEvent{
			ID: id, Timestamp: args.Now, Kind: types.TxTransfer,
			From: from, To: &args.To, Amount: args.Amount,
		}
		_ = l.store.WithTx(func(tx storage.Tx) error { return tx.InsertTxEvent(ev) })
	}
	_ = l.journal.Record("transfer", "from="+from.Key()+" to="+args.To.Key()+" amount="+args.Amount.String())

	return accepted, nil
}

// applyDebitCreditFeeSplit validates and applies a debit-from/credit-to
// transfer with the fee split, shared by Transfer and TransferFrom.
//
// from/to can alias the community or dapp_funds pool accounts (a transfer
// can originate from or land on a pool), so every balance touched is
// tracked in pending as it is mutated rather than read once up front:
// debiting an account that later also receives a fee-share credit (or
// the reverse) must net against the value left by the earlier write, or
// the later SetBalance silently clobbers it and mints amount out of
// nothing (spec.md §8 scenario 2).
func applyDebitCreditFeeSplit(tx storage.Tx, meta types.TokenMetadata, from, to types.Account, amount types.Amount, admin types.AdminState) error {
	if amount.IsMaxSentinel() {
		return types.NewError(types.ErrInvalidInput, "amount is the reserved u128::MAX sentinel")
	}
	if amount.Cmp(meta.TransferFee) < 0 {
		return types.NewError(types.ErrInsufficientFee, "")
	}

	split, err := splitFee(meta.TransferFee)
	if err != nil {
		return err
	}
	netToRecipient, err := amount.CheckedSub(meta.TransferFee)
	if err != nil {
		return err
	}

	communityAcct, err := types.SubaccountForPool(types.PoolCommunity)
	if err != nil {
		return err
	}
	dappAcct, err := types.SubaccountForPool(types.PoolDappFunds)
	if err != nil {
		return err
	}
	community := types.Account{Owner: admin.Admin, Subaccount: &communityAcct}
	dapp := types.Account{Owner: admin.Admin, Subaccount: &dappAcct}

	pending := map[string]types.Amount{}
	balanceOf := func(acct types.Account) (types.Amount, error) {
		key := acct.Key()
		if b, ok := pending[key]; ok {
			return b, nil
		}
		b, _, err := tx.GetBalance(key)
		return b, err
	}

	fromBalance, err := balanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return types.NewError(types.ErrInsufficientBalance, "")
	}
	newFromBalance, err := fromBalance.CheckedSub(amount)
	if err != nil {
		return err
	}
	pending[from.Key()] = newFromBalance

	toBalance, err := balanceOf(to)
	if err != nil {
		return err
	}
	newToBalance, err := toBalance.CheckedAdd(netToRecipient)
	if err != nil {
		return err
	}
	pending[to.Key()] = newToBalance

	communityBalance, err := balanceOf(community)
	if err != nil {
		return err
	}
	newCommunityBalance, err := communityBalance.CheckedAdd(split.Community)
	if err != nil {
		return err
	}
	pending[community.Key()] = newCommunityBalance

	dappBalance, err := balanceOf(dapp)
	if err != nil {
		return err
	}
	newDappBalance, err := dappBalance.CheckedAdd(split.Dapp)
	if err != nil {
		return err
	}
	pending[dapp.Key()] = newDappBalance

	newTotalSupply, err := meta.TotalSupply.CheckedSub(split.Burn)
	if err != nil {
		return err
	}
	newTotalBurned, err := meta.TotalBurned.CheckedAdd(split.Burn)
	if err != nil {
		return err
	}

	// All preconditions satisfied and all arithmetic checked — commit.
	for key, balance := range pending {
		if err := tx.SetBalance(key, balance); err != nil {
			return err
		}
	}
	meta.TotalSupply = newTotalSupply
	meta.TotalBurned = newTotalBurned
	return tx.SetMetadata(meta)
}

// enforceVestingGate implements spec.md §4.D.1 L5: no transfer whose
// source is the team_vesting account succeeds before
// vesting_start_time + vesting_duration.
func enforceVestingGate(tx storage.Tx, from types.Account, admin types.AdminState, meta types.TokenMetadata, now time.Time) error {
	teamSub, err := types.SubaccountForPool(types.PoolTeamVesting)
	if err != nil {
		return err
	}
	teamAccount := types.Account{Owner: admin.Admin, Subaccount: &teamSub}
	if !from.Equal(teamAccount) {
		return nil
	}
	if now.Before(meta.VestingUnlockTime()) {
		return types.NewError(types.ErrVestingLocked, "")
	}
	return nil
}

// ApproveArgs is the argument set for Approve.
type ApproveArgs struct {
	Caller         types.Principal
	FromSubaccount *types.Subaccount
	Spender        types.Account
	Amount         types.Amount
	ExpiresAt      *int64 // unix nanoseconds
}

// Approve implements spec.md §4.D.3 approve.
func (l *Ledger) Approve(args ApproveArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	owner := types.Account{Owner: args.Caller, Subaccount: args.FromSubaccount}
	key := types.AllowanceKey{Owner: owner, Spender: args.Spender}

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAuthenticated(args.Caller, admin, "approve"); err != nil {
			return err
		}
		return tx.SetAllowance(key.Key(), types.Allowance{Amount: args.Amount, ExpiresAt: args.ExpiresAt})
	})
	if err != nil {
		return err
	}
	_ = l.journal.Record("approval", "owner="+owner.Key()+" spender="+args.Spender.Key())
	return nil
}

// TransferFromArgs is the argument set for TransferFrom.
type TransferFromArgs struct {
	Caller  types.Principal // must equal Spender.Owner
	Spender types.Account
	From    types.Account
	To      types.Account
	Amount  types.Amount
	Now     time.Time
}

// TransferFrom implements spec.md §4.D.3 transfer_from. The spender pays
// nothing beyond the allowance decrement; the `from` account absorbs the
// full amount and its fee exactly as in Transfer (spec.md §9 open
// question: fee is paid by `from`, never by the spender).
func (l *Ledger) TransferFrom(args TransferFromArgs) (types.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := types.AllowanceKey{Owner: args.From, Spender: args.Spender}

	var accepted types.Amount
	err := l.store.WithTx(func(tx storage.Tx) error {
		if err := principal.RequireOwner(args.Caller, args.Spender); err != nil {
			_ = l.journal.RecordDenial("transfer_from", args.Caller, string(types.KindOf(err)))
			return err
		}
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		meta, err := tx.GetMetadata()
		if err != nil {
			return err
		}
		if err := enforceVestingGate(tx, args.From, admin, meta, args.Now); err != nil {
			return err
		}

		allowance, ok, err := tx.GetAllowance(key.Key())
		if err != nil {
			return err
		}
		if !ok || allowance.Expired(args.Now) || allowance.Amount.Cmp(args.Amount) < 0 {
			return types.NewError(types.ErrInsufficientAllowance, "")
		}

		if err := applyDebitCreditFeeSplit(tx, meta, args.From, args.To, args.Amount, admin); err != nil {
			return err
		}

		newAllowance, err := allowance.Amount.CheckedSub(args.Amount)
		if err != nil {
			return err
		}
		allowance.Amount = newAllowance
		if err := tx.SetAllowance(key.Key(), allowance); err != nil {
			return err
		}

		accepted = args.Amount
		return nil
	})
	if err != nil {
		return types.Amount{}, err
	}

	l.mu.Unlock()
	id, idErr := l.ids.TransactionID(args.Now.UnixNano())
	l.mu.Lock()
	if idErr == nil {
		spender := args.Spender
		ev := types.TransactionEvent{
			ID: id, Timestamp: args.Now, Kind: types.TxTransferFrom,
			From: args.From, To: &args.To, Spender: &spender, Amount: args.Amount,
		}
		_ = l.store.WithTx(func(tx storage.Tx) error { return tx.InsertTxEvent(ev) })
	}
	_ = l.journal.Record("transfer_from", "from="+args.From.Key()+" to="+args.To.Key()+" amount="+args.Amount.String())

	return accepted, nil
}
