package ecash

import (
	"context"
	"strings"

	"github.com/elnosh/gonuts/cashu"
	"github.com/elnosh/gonuts/wallet"
	domainerrors "sat-search.backend/internal/domain/errors"
)

// Redeemer verifies a bearer token and redeems it for its value. A token is
// spendable at most once; redemption is irreversible.
type Redeemer interface {
	// VerifyAndRedeem redeems rawToken and returns the value received above
	// the required amount.
	VerifyAndRedeem(ctx context.Context, rawToken string, required uint64) (uint64, error)
	// IssueChange mints a fresh token worth amount, returned to a payer as
	// change.
	IssueChange(ctx context.Context, amount uint64) (string, error)
	// Decode reports the face value of a token without redeeming it
	Decode(rawToken string) (uint64, error)
}

// WalletRedeemer redeems tokens through a gonuts wallet trusting the
// configured mint.
type WalletRedeemer struct {
	wallet  *wallet.Wallet
	mintURL string
}

func NewWalletRedeemer(mintURL, walletDir string) (*WalletRedeemer, error) {
	w, err := wallet.LoadWallet(wallet.Config{
		WalletPath:     walletDir,
		CurrentMintURL: mintURL,
	})
	if err != nil {
		return nil, err
	}
	return &WalletRedeemer{wallet: w, mintURL: mintURL}, nil
}

func (r *WalletRedeemer) Decode(rawToken string) (uint64, error) {
	token, err := cashu.DecodeToken(rawToken)
	if err != nil {
		return 0, domainerrors.ErrInvalidToken
	}
	return tokenAmount(token), nil
}

func (r *WalletRedeemer) VerifyAndRedeem(ctx context.Context, rawToken string, required uint64) (uint64, error) {
	token, err := cashu.DecodeToken(rawToken)
	if err != nil {
		return 0, domainerrors.ErrInvalidToken
	}

	if tokenAmount(token) < required {
		return 0, domainerrors.ErrInsufficientAmount
	}

	received, err := r.wallet.Receive(*token, true)
	if err != nil {
		return 0, classifyReceiveError(err)
	}

	if received < required {
		// swap fees ate into the face value; the token is gone either way
		return 0, domainerrors.ErrInsufficientAmount
	}
	return received - required, nil
}

func (r *WalletRedeemer) IssueChange(ctx context.Context, amount uint64) (string, error) {
	token, err := r.wallet.Send(amount, r.mintURL, true)
	if err != nil {
		return "", err
	}
	return token.ToString(), nil
}

func tokenAmount(token *cashu.Token) uint64 {
	var total uint64
	for _, entry := range token.Token {
		for _, proof := range entry.Proofs {
			total += proof.Amount
		}
	}
	return total
}

func classifyReceiveError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "spent") || strings.Contains(msg, "already") {
		return domainerrors.ErrAlreadySpent
	}
	return domainerrors.ErrInvalidToken
}
