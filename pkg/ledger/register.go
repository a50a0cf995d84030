package ledger

import (
	"time"

	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// RegisterUserArgs is the argument set for RegisterUser.
type RegisterUserArgs struct {
	Caller       types.Principal
	ReferralCode *string // code of the referrer, if any
	Now          time.Time
}

// RegisterUserResult reports the minted referral code for the new account.
type RegisterUserResult struct {
	WelcomeAmount types.Amount
	ReferralCode  string
}

// RegisterUser implements spec.md §4.D.3 register_user: a principal may
// register exactly once, is credited WelcomeAmount from the community
// pool, and is minted its own referral code to hand out. If a referral
// code is supplied and resolves to a distinct, not-yet-claiming account,
// that referrer is credited ReferralReward (spec.md scenario 4).
func (l *Ledger) RegisterUser(args RegisterUserArgs) (RegisterUserResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	account := types.Account{Owner: args.Caller}

	var alreadyRegistered bool
	var admin types.AdminState
	var meta types.TokenMetadata
	err := l.store.View(func(tx storage.Tx) error {
		var err error
		admin, err = tx.GetAdminState()
		if err != nil {
			return err
		}
		meta, err = tx.GetMetadata()
		if err != nil {
			return err
		}
		_, alreadyRegistered, err = tx.ReferralCodeForAccount(account.Key())
		return err
	})
	if err != nil {
		return RegisterUserResult{}, err
	}
	if err := l.requireAuthenticated(args.Caller, admin, "register_user"); err != nil {
		return RegisterUserResult{}, err
	}
	if alreadyRegistered {
		return RegisterUserResult{}, types.NewError(types.ErrAlreadyRegistered, "")
	}

	// Suspension point: minting this account's own referral code requires
	// the randomness oracle, which spec.md §5 models as a suspend. State
	// is re-validated for the already-registered race on resume.
	l.mu.Unlock()
	code, err := l.ids.ReferralCode()
	l.mu.Lock()
	if err != nil {
		return RegisterUserResult{}, err
	}

	welcome := WelcomeAmount(meta.Decimals)

	err = l.store.WithTx(func(tx storage.Tx) error {
		_, stillRegistered, err := tx.ReferralCodeForAccount(account.Key())
		if err != nil {
			return err
		}
		if stillRegistered {
			return types.NewError(types.ErrAlreadyRegistered, "")
		}

		communitySub, err := types.SubaccountForPool(types.PoolCommunity)
		if err != nil {
			return err
		}
		community := types.Account{Owner: admin.Admin, Subaccount: &communitySub}
		communityBalance, _, err := tx.GetBalance(community.Key())
		if err != nil {
			return err
		}
		newCommunityBalance, err := communityBalance.CheckedSub(welcome)
		if err != nil {
			return types.NewError(types.ErrInsufficientPoolFunds, "community pool exhausted")
		}
		callerBalance, _, err := tx.GetBalance(account.Key())
		if err != nil {
			return err
		}
		newCallerBalance, err := callerBalance.CheckedAdd(welcome)
		if err != nil {
			return err
		}

		if err := tx.SetBalance(community.Key(), newCommunityBalance); err != nil {
			return err
		}
		if err := tx.SetBalance(account.Key(), newCallerBalance); err != nil {
			return err
		}
		if err := tx.SetReferral(account.Key(), code); err != nil {
			return err
		}

		if args.ReferralCode != nil {
			if err := l.rewardReferrer(tx, account, *args.ReferralCode, admin, meta); err != nil {
				return err
			}
		}
		return nil

	})
	if err != nil {
		return RegisterUserResult{}, err
	}

	_ = l.journal.Record("register_user", "account="+account.Key()+" code="+code)
	return RegisterUserResult{WelcomeAmount: welcome, ReferralCode: code}, nil
}

// rewardReferrer credits ReferralReward to the account owning code, unless
// code is unknown, belongs to the registering account itself, or has
// already been claimed by it (spec.md §4.D.1 invariant: a referral may be
// claimed at most once per claiming account).
func (l *Ledger) rewardReferrer(tx storage.Tx, claimer types.Account, code string, admin types.AdminState, meta types.TokenMetadata) error {
	referrerKey, ok, err := tx.ReferralAccountForCode(code)
	if err != nil {
		return err
	}
	if !ok || referrerKey == claimer.Key() {
		return types.NewError(types.ErrInvalidReferral, "")
	}
	claimed, err := tx.HasClaimedReferral(claimer.Key())
	if err != nil {
		return err
	}
	if claimed {
		return types.NewError(types.ErrInvalidReferral, "referral already claimed")
	}

	reward := ReferralReward(meta.Decimals)
	communitySub, err := types.SubaccountForPool(types.PoolCommunity)
	if err != nil {
		return err
	}
	community := types.Account{Owner: admin.Admin, Subaccount: &communitySub}
	communityBalance, _, err := tx.GetBalance(community.Key())
	if err != nil {
		return err
	}
	newCommunityBalance, err := communityBalance.CheckedSub(reward)
	if err != nil {
		return types.NewError(types.ErrInsufficientPoolFunds, "community pool exhausted")
	}
	referrerBalance, _, err := tx.GetBalance(referrerKey)
	if err != nil {
		return err
	}
	newReferrerBalance, err := referrerBalance.CheckedAdd(reward)
	if err != nil {
		return err
	}

	if err := tx.SetBalance(community.Key(), newCommunityBalance); err != nil {
		return err
	}
	if err := tx.SetBalance(referrerKey, newReferrerBalance); err != nil {
		return err
	}
	return tx.MarkClaimedReferral(claimer.Key())
}

// ClaimReferralArgs is the argument set for ClaimReferral.
type ClaimReferralArgs struct {
	Caller       types.Principal
	ReferralCode string
}

// ClaimReferral implements spec.md §4.D.3 claim_referral as its own
// callable operation, independent of RegisterUser (original_source's
// crnl_ledger_canister exposes claim_referral as a separate #[update],
// callable any time after registration, not only as a register_user
// side effect). The referee is resolved as (caller, none); rewardReferrer
// covers the unknown-code, self-referral, and already-claimed cases with
// InvalidReferral.
func (l *Ledger) ClaimReferral(args ClaimReferralArgs) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	referee := types.Account{Owner: args.Caller}

	err := l.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := l.requireAuthenticated(args.Caller, admin, "claim_referral"); err != nil {
			return err
		}
		meta, err := tx.GetMetadata()
		if err != nil {
			return err
		}
		return l.rewardReferrer(tx, referee, args.ReferralCode, admin, meta)
	})
	if err != nil {
		return err
	}
	_ = l.journal.Record("claim_referral", "referee="+referee.Key())
	return nil
}
