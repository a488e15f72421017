package handler

import (
	"context"
	"errors"
	"net/http"

	"token-guard/internal/server/model"
	"token-guard/internal/server/service"
	"token-guard/pkg/logger"

	"go.uber.org/zap"
)

type BalanceReader interface {
	GetTokenBalance(ctx context.Context, wallet, mint model.TokenIdentifier) (service.WalletBalance, error)
}

type BalanceHandler struct {
	logger  *zap.Logger
	balance BalanceReader
}

func NewBalanceHandler(logger *zap.Logger, balance BalanceReader) *BalanceHandler {
	return &BalanceHandler{logger: logger, balance: balance}
}

// ServeHTTP GET /balance?wallet=&mint=
func (h *BalanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	rawWallet, rawMint := q.Get("wallet"), q.Get("mint")
	if rawWallet == "" || rawMint == "" {
		writeError(w, http.StatusBadRequest, "Wallet and mint addresses are required.")
		return
	}
	wallet, errWallet := model.ParseTokenIdentifier(rawWallet)
	mint, errMint := model.ParseTokenIdentifier(rawMint)
	if err := errors.Join(errWallet, errMint); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid wallet or mint address")
		return
	}

	ctx := r.Context()
	balance, err := h.balance.GetTokenBalance(ctx, wallet, mint)
	if err != nil {
		logger.NewLoggerWithTrace(ctx, h.logger).Error("Error fetching balance",
			zap.String("wallet", wallet.String()), zap.String("mint", mint.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch balance")
		return
	}
	writeJSON(w, http.StatusOK, balance)
}
