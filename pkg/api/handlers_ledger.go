package api

import (
	"net/http"
	"time"

	"github.com/crnlicp/chronolock/pkg/ledger"
	"github.com/crnlicp/chronolock/pkg/metrics"
	"github.com/crnlicp/chronolock/pkg/types"
)

type registerUserRequest struct {
	ReferralCode *string `json:"referral_code,omitempty"`
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	result, err := s.ledger.RegisterUser(ledger.RegisterUserArgs{
		Caller:       CallerFromContext(r.Context()),
		ReferralCode: req.ReferralCode,
		Now:          time.Now(),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	writeOK(w, http.StatusOK, map[string]interface{}{
		"welcome_amount": result.WelcomeAmount.String(),
		"referral_code":  result.ReferralCode,
	})
}

type claimReferralRequest struct {
	ReferralCode string `json:"referral_code"`
}

func (s *Server) handleClaimReferral(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req claimReferralRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.ledger.ClaimReferral(ledger.ClaimReferralArgs{
		Caller:       CallerFromContext(r.Context()),
		ReferralCode: req.ReferralCode,
	}); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type transferRequest struct {
	FromSubaccount string `json:"from_subaccount,omitempty"`
	To             string `json:"to"`
	ToSubaccount   string `json:"to_subaccount,omitempty"`
	Amount         string `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	to, err := accountFromWire(req.To, req.ToSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	fromSub, err := subaccountFromHex(req.FromSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	amount, err := amountFromString(req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}

	timer := metrics.NewTimer()
	accepted, err := s.ledger.Transfer(ledger.TransferArgs{
		Caller:         CallerFromContext(r.Context()),
		FromSubaccount: fromSub,
		To:             to,
		Amount:         amount,
		Now:            time.Now(),
	})
	timer.ObserveDuration(metrics.TransferDuration)
	if err != nil {
		metrics.TransfersTotal.WithLabelValues(string(types.KindOf(err))).Inc()
		writeErr(w, err)
		return
	}
	metrics.TransfersTotal.WithLabelValues("ok").Inc()
	writeOK(w, http.StatusOK, map[string]interface{}{"accepted": accepted.String()})
}

type approveRequest struct {
	FromSubaccount  string `json:"from_subaccount,omitempty"`
	Spender         string `json:"spender"`
	SpenderSubacct  string `json:"spender_subaccount,omitempty"`
	Amount          string `json:"amount"`
	ExpiresAtUnixNs *int64 `json:"expires_at,omitempty"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	spender, err := accountFromWire(req.Spender, req.SpenderSubacct)
	if err != nil {
		writeErr(w, err)
		return
	}
	fromSub, err := subaccountFromHex(req.FromSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	amount, err := amountFromString(req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	err = s.ledger.Approve(ledger.ApproveArgs{
		Caller:         CallerFromContext(r.Context()),
		FromSubaccount: fromSub,
		Spender:        spender,
		Amount:         amount,
		ExpiresAt:      req.ExpiresAtUnixNs,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type transferFromRequest struct {
	SpenderSubaccount string `json:"spender_subaccount,omitempty"`
	From              string `json:"from"`
	FromSubaccount    string `json:"from_subaccount,omitempty"`
	To                string `json:"to"`
	ToSubaccount      string `json:"to_subaccount,omitempty"`
	Amount            string `json:"amount"`
}

func (s *Server) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req transferFromRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	caller := CallerFromContext(r.Context())
	spenderSub, err := subaccountFromHex(req.SpenderSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	from, err := accountFromWire(req.From, req.FromSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	to, err := accountFromWire(req.To, req.ToSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	amount, err := amountFromString(req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}

	accepted, err := s.ledger.TransferFrom(ledger.TransferFromArgs{
		Caller:  caller,
		Spender: types.Account{Owner: caller, Subaccount: spenderSub},
		From:    from,
		To:      to,
		Amount:  amount,
		Now:     time.Now(),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{"accepted": accepted.String()})
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	account, err := accountFromWire(r.URL.Query().Get("owner"), r.URL.Query().Get("subaccount"))
	if err != nil {
		writeErr(w, err)
		return
	}
	balance, err := s.ledger.BalanceOf(account)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, balance.String())
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	meta, err := s.ledger.Metadata()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{
		"name":               meta.Name,
		"symbol":             meta.Symbol,
		"decimals":           meta.Decimals,
		"total_supply":       meta.TotalSupply.String(),
		"total_burned":       meta.TotalBurned.String(),
		"transfer_fee":       meta.TransferFee.String(),
		"vesting_start_time": meta.VestingStartTime,
		"vesting_duration":   meta.VestingDuration,
	})
}

type adminMintRequest struct {
	Account    string `json:"account"`
	Subaccount string `json:"subaccount,omitempty"`
	Amount     string `json:"amount"`
}

func (s *Server) handleAdminMint(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req adminMintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	account, err := accountFromWire(req.Account, req.Subaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	amount, err := amountFromString(req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.ledger.AdminMint(CallerFromContext(r.Context()), account, amount); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type adminTransferRequest struct {
	From           string `json:"from"`
	FromSubaccount string `json:"from_subaccount,omitempty"`
	To             string `json:"to"`
	ToSubaccount   string `json:"to_subaccount,omitempty"`
	Amount         string `json:"amount"`
}

func (s *Server) handleAdminTransfer(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req adminTransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	from, err := accountFromWire(req.From, req.FromSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	to, err := accountFromWire(req.To, req.ToSubaccount)
	if err != nil {
		writeErr(w, err)
		return
	}
	amount, err := amountFromString(req.Amount)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.ledger.AdminTransfer(CallerFromContext(r.Context()), from, to, amount); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type setTransferFeeRequest struct {
	Fee string `json:"fee"`
}

func (s *Server) handleSetTransferFee(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req setTransferFeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	fee, err := amountFromString(req.Fee)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := s.ledger.SetTransferFee(CallerFromContext(r.Context()), fee); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type setAdminBypassRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetAdminBypass(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req setAdminBypassRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := s.ledger.SetAdminBypass(CallerFromContext(r.Context()), req.Active); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

type trustedPrincipalRequest struct {
	Principal string `json:"principal"`
}

func (s *Server) handleAddTrustedPrincipal(w http.ResponseWriter, r *http.Request) {
	s.editTrustedPrincipal(w, r, s.ledger.AddTrustedPrincipal)
}

func (s *Server) handleRemoveTrustedPrincipal(w http.ResponseWriter, r *http.Request) {
	s.editTrustedPrincipal(w, r, s.ledger.RemoveTrustedPrincipal)
}

func (s *Server) editTrustedPrincipal(w http.ResponseWriter, r *http.Request, apply func(types.Principal, types.Principal) error) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	var req trustedPrincipalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := apply(CallerFromContext(r.Context()), principalFromText(req.Principal)); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}

func (s *Server) handleAdminResetStableStorage(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		writeErr(w, types.NewError(types.ErrInternalError, "ledger not configured"))
		return
	}
	if err := s.ledger.AdminResetStableStorage(CallerFromContext(r.Context())); err != nil {
		writeErr(w, err)
		return
	}
	writeOK(w, http.StatusOK, nil)
}
