package ledger

import "github.com/crnlicp/chronolock/pkg/types"

// feeSplit is the result of partitioning a transfer_fee per spec.md
// §4.D.2: 20% burned, 10% to community, 70% to dapp_funds, with any
// integer-division remainder retained in the burn share.
type feeSplit struct {
	Burn      types.Amount
	Community types.Amount
	Dapp      types.Amount
}

// splitFee partitions fee using integer division with 10 (community) and
// 70 (dapp) numerators over 100; burn is the remainder (nominally 20%),
// absorbing whatever community+dapp didn't claim so the three shares
// always sum to exactly fee (P2).
func splitFee(fee types.Amount) (feeSplit, error) {
	community, err := fee.CheckedMulDiv(10, 100)
	if err != nil {
		return feeSplit{}, err
	}
	dapp, err := fee.CheckedMulDiv(70, 100)
	if err != nil {
		return feeSplit{}, err
	}
	claimed, err := community.CheckedAdd(dapp)
	if err != nil {
		return feeSplit{}, err
	}
	burn, err := fee.CheckedSub(claimed)
	if err != nil {
		return feeSplit{}, err
	}
	return feeSplit{Burn: burn, Community: community, Dapp: dapp}, nil
}
