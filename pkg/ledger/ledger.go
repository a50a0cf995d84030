package ledger

import (
	"sync"
	"time"

	"github.com/crnlicp/chronolock/pkg/idgen"
	"github.com/crnlicp/chronolock/pkg/journal"
	"github.com/crnlicp/chronolock/pkg/principal"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// WelcomeAmount is credited to a newly registered account from the
// community pool (§4.D.3 register_user).
func WelcomeAmount(decimals uint8) types.Amount {
	return scaledAmount(200, decimals)
}

// ReferralReward is credited to the referrer from the community pool when
// their code is claimed (§4.D.3 claim_referral).
func ReferralReward(decimals uint8) types.Amount {
	return scaledAmount(20, decimals)
}

func scaledAmount(units uint64, decimals uint8) types.Amount {
	scale := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		scale *= 10
	}
	return types.NewAmount(units * scale)
}

// InitParams configures a new Ledger at construction time (spec.md §6).
type InitParams struct {
	Name             string
	Symbol           string
	TotalSupply      types.Amount
	VestingDuration  int64 // seconds
	TransferFee      types.Amount
	Admin            types.Principal
	Now              time.Time // clock at construction, for VestingStartTime
}

// Ledger is the fungible-token state machine. It holds no state of its
// own beyond handles to its collaborators — all durable state lives in
// storage.Store.
type Ledger struct {
	store   storage.Store
	journal *journal.Journal
	ids     *idgen.Generator

	// mu models the single-threaded-per-replica scheduling guarantee of
	// spec.md §5: handlers that suspend (call ids/randomness) release and
	// re-acquire it around the suspension point, re-validating state on
	// resume, exactly as a coroutine yield would require.
	mu sync.Mutex
}

// New constructs a Ledger and, if the store has no metadata yet, performs
// the one-shot pool bootstrap described in SPEC_FULL.md §4.D: the entire
// total_supply is placed under community except a 10% carve-out to
// team_vesting, so the vesting gate has a non-zero balance to exercise.
func New(store storage.Store, j *journal.Journal, ids *idgen.Generator, params InitParams) (*Ledger, error) {
	l := &Ledger{store: store, journal: j, ids: ids}

	err := store.WithTx(func(tx storage.Tx) error {
		existing, err := tx.GetMetadata()
		if err != nil {
			return err
		}
		if existing.Symbol != "" {
			return nil // already initialized
		}

		teamShare, err := params.TotalSupply.CheckedMulDiv(10, 100)
		if err != nil {
			return err
		}
		communityShare, err := params.TotalSupply.CheckedSub(teamShare)
		if err != nil {
			return err
		}

		meta := types.TokenMetadata{
			Name:             params.Name,
			Symbol:           params.Symbol,
			Decimals:         8,
			TotalSupply:      params.TotalSupply,
			TotalBurned:      types.ZeroAmount(),
			TransferFee:      params.TransferFee,
			VestingStartTime: params.Now.Unix(),
			VestingDuration:  params.VestingDuration,
		}
		if err := tx.SetMetadata(meta); err != nil {
			return err
		}

		admin := types.AdminState{Admin: params.Admin, Trusted: map[string]bool{}}
		if err := tx.SetAdminState(admin); err != nil {
			return err
		}

		community := poolAccount(types.SubaccountCommunity, params.Admin)
		teamVesting := poolAccount(types.SubaccountTeamVesting, params.Admin)
		if err := tx.SetBalance(community.Key(), communityShare); err != nil {
			return err
		}
		if err := tx.SetBalance(teamVesting.Key(), teamShare); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := j.Record("ledger_init", "ledger initialized: "+params.Symbol); err != nil {
		return nil, err
	}
	return l, nil
}

func poolAccount(sub types.Subaccount, admin types.Principal) types.Account {
	s := sub
	return types.Account{Owner: admin, Subaccount: &s}
}

// PoolAccount resolves a well-known pool name to its Account, owned by the
// current admin.
func (l *Ledger) PoolAccount(tx storage.Tx, name types.PoolName) (types.Account, error) {
	admin, err := tx.GetAdminState()
	if err != nil {
		return types.Account{}, err
	}
	sub, err := types.SubaccountForPool(name)
	if err != nil {
		return types.Account{}, err
	}
	return types.Account{Owner: admin.Admin, Subaccount: &sub}, nil
}

// Metadata returns the current singleton token metadata.
func (l *Ledger) Metadata() (types.TokenMetadata, error) {
	var m types.TokenMetadata
	err := l.store.View(func(tx storage.Tx) error {
		var err error
		m, err = tx.GetMetadata()
		return err
	})
	return m, err
}

// BalanceOf returns the balance of an account (zero if never credited).
func (l *Ledger) BalanceOf(account types.Account) (types.Amount, error) {
	var amt types.Amount
	err := l.store.View(func(tx storage.Tx) error {
		var ok bool
		var err error
		amt, ok, err = tx.GetBalance(account.Key())
		if err != nil {
			return err
		}
		if !ok {
			amt = types.ZeroAmount()
		}
		return nil
	})
	return amt, err
}

// requireAuthenticated is the shared guard used by every non-admin-only
// handler; on denial it journals the rejection (spec.md §4.B last
// paragraph: "the only journaled entries on failure are authorization
// denials").
func (l *Ledger) requireAuthenticated(caller types.Principal, admin types.AdminState, op string) error {
	if err := principal.RequireAuthenticated(caller, admin); err != nil {
		_ = l.journal.RecordDenial(op, caller, string(types.KindOf(err)))
		return err
	}
	return nil
}

func (l *Ledger) requireAdmin(caller types.Principal, admin types.AdminState, op string) error {
	if err := principal.RequireAdmin(caller, admin); err != nil {
		_ = l.journal.RecordDenial(op, caller, string(types.KindOf(err)))
		return err
	}
	return nil
}
