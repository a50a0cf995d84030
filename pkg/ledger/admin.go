package ledger

import (
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// AdminMint credits amount directly to account from thin air, bypassing
// the fee split, and increases total_supply by the same amount. Callable
// only by the admin principal (spec.md §4.D.4).
func (l *Ledger) AdminMint(caller types.Principal, account types.Account, amount types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAdmin(caller, admin, "admin_mint"); err != nil {
			return err
		}
		meta, err := tx.GetMetadata()
		if err != nil {
			return err
		}
		newSupply, err := meta.TotalSupply.CheckedAdd(amount)
		if err != nil {
			return err
		}
		balance, _, err := tx.GetBalance(account.Key())
		if err != nil {
			return err
		}
		newBalance, err := balance.CheckedAdd(amount)
		if err != nil {
			return err
		}
		if err := tx.SetBalance(account.Key(), newBalance); err != nil {
			return err
		}
		meta.TotalSupply = newSupply
		return tx.SetMetadata(meta)
	})
	if err != nil {
		return err
	}
	_ = l.journal.Record("admin_mint", "account="+account.Key()+" amount="+amount.String())
	return nil
}

// AdminTransfer moves funds between any two accounts without charging a
// fee or touching total_supply, bypassing the vesting gate. Callable only
// by the admin principal (spec.md §4.D.4).
func (l *Ledger) AdminTransfer(caller types.Principal, from, to types.Account, amount types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAdmin(caller, admin, "admin_transfer"); err != nil {
			return err
		}
		fromBalance, _, err := tx.GetBalance(from.Key())
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
		toBalance, _, err := tx.GetBalance(to.Key())
		if err != nil {
			return err
		}
		newToBalance, err := toBalance.CheckedAdd(amount)
		if err != nil {
			return err
		}
		if err := tx.SetBalance(from.Key(), newFromBalance); err != nil {
			return err
		}
		return tx.SetBalance(to.Key(), newToBalance)
	})
	if err != nil {
		return err
	}
	_ = l.journal.Record("admin_transfer", "from="+from.Key()+" to="+to.Key()+" amount="+amount.String())
	return nil
}

// SetTransferFee changes the flat per-transfer fee. Callable only by the
// admin principal.
func (l *Ledger) SetTransferFee(caller types.Principal, fee types.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAdmin(caller, admin, "set_transfer_fee"); err != nil {
			return err
		}
		meta, err := tx.GetMetadata()
		if err != nil {
			return err
		}
		meta.TransferFee = fee
		return tx.SetMetadata(meta)
	})
	if err != nil {
		return err
	}
	_ = l.journal.Record("set_transfer_fee", "fee="+fee.String())
	return nil
}

// SetAdminBypass toggles the process-wide flag that lets a bypass-flagged
// caller skip the normal authentication classification (spec.md §4.B).
func (l *Ledger) SetAdminBypass(caller types.Principal, active bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAdmin(caller, admin, "set_admin_bypass"); err != nil {
			return err
		}
		admin.BypassActive = active
		return tx.SetAdminState(admin)
	})
	if err != nil {
		return err
	}
	status := "false"
	if active {
		status = "true"
	}
	_ = l.journal.Record("set_admin_bypass", "active="+status)
	return nil
}

// AddTrustedPrincipal grants a principal the Trusted classification.
func (l *Ledger) AddTrustedPrincipal(caller types.Principal, target types.Principal) error {
	return l.editTrusted(caller, target, true)
}

// RemoveTrustedPrincipal revokes a principal's Trusted classification.
func (l *Ledger) RemoveTrustedPrincipal(caller types.Principal, target types.Principal) error {
	return l.editTrusted(caller, target, false)
}

func (l *Ledger) editTrusted(caller, target types.Principal, trusted bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	op := "remove_trusted_principal"
	if trusted {
		op = "add_trusted_principal"
	}

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAdmin(caller, admin, op); err != nil {
			return err
		}
		if admin.Trusted == nil {
			admin.Trusted = map[string]bool{}
		}
		if trusted {
			admin.Trusted[target.Text] = true
		} else {
			delete(admin.Trusted, target.Text)
		}
		return tx.SetAdminState(admin)
	})
	if err != nil {
		return err
	}
	_ = l.journal.Record(op, "principal="+target.Text)
	return nil
}

// AdminResetStableStorage wipes every bucket in the store. Callable only
// by the admin principal; used for test/upgrade recovery (spec.md §4.D.4).
func (l *Ledger) AdminResetStableStorage(caller types.Principal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var admin types.AdminState
	err := l.store.View(func(tx storage.Tx) error {
		var err error
		admin, err = tx.GetAdminState()
		return err
	})
	if err != nil {
		return err
	}
	if err := l.requireAdmin(caller, admin, "admin_reset_stable_storage"); err != nil {
		return err
	}
	return l.store.ResetAll()
}
