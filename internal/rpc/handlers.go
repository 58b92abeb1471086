package rpc

import (
	"errors"
	"fmt"

	"github.com/lockvault-io/lockvault/config"
	"github.com/lockvault-io/lockvault/internal/ledger"
	"github.com/lockvault-io/lockvault/pkg/types"
)

// ledgerError maps ledger sentinel errors to JSON-RPC error objects.
func ledgerError(err error) *Error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidDuration):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, ledger.ErrInvalidLockID):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, ledger.ErrAlreadyClaimed), errors.Is(err, ledger.ErrStillLocked):
		return &Error{Code: CodeLedgerError, Message: err.Error()}
	case errors.Is(err, ledger.ErrTransferFailed):
		return &Error{Code: CodeTransferFailed, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}

// ── Mutating endpoints ──────────────────────────────────────────────────

func (s *Server) handleLedgerLock(req *Request) (interface{}, *Error) {
	var params LockParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}

	caller, errResp := s.verifyAuth("ledger_lock", params.Auth, params.Amount, params.Duration)
	if errResp != nil {
		return nil, errResp
	}

	rec, err := s.ledger.Lock(caller, params.Amount, params.Duration)
	if err != nil {
		return nil, ledgerError(err)
	}

	s.logger.Info().
		Str("account", caller.String()).
		Uint64("lock_id", rec.ID).
		Uint64("amount", rec.Amount).
		Msg("lock created")
	return rec, nil
}

func (s *Server) handleLedgerExtend(req *Request) (interface{}, *Error) {
	var params ExtendParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}

	caller, errResp := s.verifyAuth("ledger_extend", params.Auth, params.LockID, params.Additional)
	if errResp != nil {
		return nil, errResp
	}

	rec, err := s.ledger.Extend(caller, params.LockID, params.Additional)
	if err != nil {
		return nil, ledgerError(err)
	}
	return rec, nil
}

func (s *Server) handleLedgerClaim(req *Request) (interface{}, *Error) {
	var params ClaimParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}

	caller, errResp := s.verifyAuth("ledger_claim", params.Auth, params.LockID)
	if errResp != nil {
		return nil, errResp
	}

	claim, err := s.ledger.Claim(caller, params.LockID)
	if err != nil {
		return nil, ledgerError(err)
	}

	s.logger.Info().
		Str("account", caller.String()).
		Uint64("lock_id", claim.LockID).
		Uint64("amount", claim.Amount).
		Msg("lock claimed")
	return claim, nil
}

// ── Read endpoints ──────────────────────────────────────────────────────

func (s *Server) handleLedgerGetClaimable(req *Request) (interface{}, *Error) {
	var params ClaimableParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	account, err := types.ParseAddress(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	return &ClaimableResult{
		Account:   account.String(),
		LockID:    params.LockID,
		Claimable: s.ledger.Claimable(account, params.LockID),
	}, nil
}

func (s *Server) handleLedgerGetLockHistory(req *Request) (interface{}, *Error) {
	var params AccountParam
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	account, err := types.ParseAddress(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	locks, err := s.ledger.LockHistory(account)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return locks, nil
}

func (s *Server) handleLedgerGetClaimHistory(req *Request) (interface{}, *Error) {
	var params AccountParam
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	account, err := types.ParseAddress(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	claims, err := s.ledger.ClaimHistory(account)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return claims, nil
}

func (s *Server) handleLedgerGetLockHistoryPaginated(req *Request) (interface{}, *Error) {
	var params HistoryRangeParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	account, err := types.ParseAddress(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	locks, err := s.ledger.LockHistoryRange(account, params.Offset, params.Limit)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return locks, nil
}

func (s *Server) handleLedgerGetClaimHistoryPaginated(req *Request) (interface{}, *Error) {
	var params HistoryRangeParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	account, err := types.ParseAddress(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	claims, err := s.ledger.ClaimHistoryRange(account, params.Offset, params.Limit)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return claims, nil
}

func (s *Server) handleLedgerGetEvents(req *Request) (interface{}, *Error) {
	var params EventsParams
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}

	events, err := s.journal.Events(params.Offset, params.Limit)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return events, nil
}

func (s *Server) handleLedgerGetInfo(req *Request) (interface{}, *Error) {
	supply, err := s.bank.TotalSupply()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	vault, err := s.bank.Vault()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	eventCount, err := s.journal.Count()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	peers := 0
	if s.relayNode != nil {
		peers = s.relayNode.PeerCount()
	}

	return &InfoResult{
		LedgerID:    s.genesis.LedgerID,
		LedgerName:  s.genesis.LedgerName,
		Symbol:      s.genesis.Symbol,
		Decimals:    config.Decimals,
		Network:     string(s.network),
		TotalSupply: supply,
		VaultLocked: vault,
		EventCount:  eventCount,
		PeerCount:   peers,
	}, nil
}

// ── Bank endpoints ──────────────────────────────────────────────────────

func (s *Server) handleBankGetBalance(req *Request) (interface{}, *Error) {
	var params AddressParam
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid address: %v", err)}
	}

	balance, err := s.bank.Balance(addr)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &BalanceResult{Address: addr.String(), Balance: balance}, nil
}

// handleBankFaucet mints the genesis-configured faucet amount to an
// address. Only available when the genesis enables the faucet (testnet).
func (s *Server) handleBankFaucet(req *Request) (interface{}, *Error) {
	if !s.genesis.Faucet.Enabled {
		return nil, &Error{Code: CodeInvalidRequest, Message: "faucet is not enabled on this network"}
	}

	var params AddressParam
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	addr, err := types.ParseAddress(params.Address)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid address: %v", err)}
	}

	if err := s.bank.Mint(addr, s.genesis.Faucet.Amount); err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	s.logger.Info().Str("address", addr.String()).Uint64("amount", s.genesis.Faucet.Amount).Msg("faucet mint")

	balance, err := s.bank.Balance(addr)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &BalanceResult{Address: addr.String(), Balance: balance}, nil
}

// ── Account endpoints ───────────────────────────────────────────────────

func (s *Server) handleAccountGetNonce(req *Request) (interface{}, *Error) {
	var params AccountParam
	if errResp := parseParams(req, &params); errResp != nil {
		return nil, errResp
	}
	account, err := types.ParseAddress(params.Account)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid account: %v", err)}
	}

	last, err := s.nonces.Last(account)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return &NonceResult{Account: account.String(), Nonce: last}, nil
}

// ── Net endpoints ───────────────────────────────────────────────────────

func (s *Server) handleNetGetPeerInfo(req *Request) (interface{}, *Error) {
	if s.relayNode == nil {
		return []PeerInfoResult{}, nil
	}
	peers := s.relayNode.PeerList()
	out := make([]PeerInfoResult, 0, len(peers))
	for _, p := range peers {
		out = append(out, PeerInfoResult{
			ID:          p.ID.String(),
			ConnectedAt: p.ConnectedAt.Unix(),
			Source:      p.Source,
		})
	}
	return out, nil
}

func (s *Server) handleNetGetNodeInfo(req *Request) (interface{}, *Error) {
	if s.relayNode == nil {
		return nil, &Error{Code: CodeNotFound, Message: "relay not enabled"}
	}
	return &NodeInfoResult{
		ID:        s.relayNode.ID().String(),
		Addrs:     s.relayNode.Addrs(),
		PeerCount: s.relayNode.PeerCount(),
	}, nil
}
