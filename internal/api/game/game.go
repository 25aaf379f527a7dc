package game

import (
	"log/slog"
	"net/http"

	"tetrabet_backend/internal/api/apierr"
	dto "tetrabet_backend/internal/api/dto/game"
	"tetrabet_backend/internal/converter"
	"tetrabet_backend/internal/middleware"
	"tetrabet_backend/internal/service"
	"tetrabet_backend/pkg/req"
	"tetrabet_backend/pkg/resp"

	"github.com/shopspring/decimal"
)

type HandlerDeps struct {
	Serv   service.GameService
	Wallet service.WalletService
	Log    *slog.Logger
}

type Handler struct {
	serv   service.GameService
	wallet service.WalletService
	log    *slog.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		serv:   deps.Serv,
		wallet: deps.Wallet,
		log:    deps.Log,
	}
}

// Start - старт игры на деньги
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, false)
}

// DemoStart - демо-игра, без авторизации
func (h *Handler) DemoStart(w http.ResponseWriter, r *http.Request) {
	h.start(w, r, true)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request, demo bool) {
	payload, err := req.Decode[dto.StartRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.userID(w, r, demo)
	if !ok {
		return
	}

	handle, err := h.serv.StartGame(r.Context(), converter.ToStartGame(userID, payload, demo))
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToStartResponse(*handle))
}

// Complete - завершение игры на деньги, в ответе баланс после зачисления
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, false)
}

// DemoComplete - оценка выигрыша демо-игры
func (h *Handler) DemoComplete(w http.ResponseWriter, r *http.Request) {
	h.complete(w, r, true)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request, demo bool) {
	payload, err := req.Decode[dto.CompleteRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.userID(w, r, demo)
	if !ok {
		return
	}

	in, err := converter.ToCompleteGame(userID, payload, demo)
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	outcome, err := h.serv.CompleteGame(r.Context(), in)
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	var balance *decimal.Decimal
	if !demo {
		b, err := h.wallet.GetBalance(r.Context(), userID)
		if err != nil {
			// выигрыш уже зачислен, баланс клиент перечитает сам
			h.log.WarnContext(r.Context(), "balance after completion unavailable", "user_id", userID, "error", err)
		} else {
			balance = &b
		}
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToCompleteResponse(*outcome, balance))
}

func (h *Handler) Jackpot(w http.ResponseWriter, r *http.Request) {
	pool, err := h.serv.GetJackpot(r.Context())
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToPlayerJackpotResponse(*pool))
}

func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r, false)
	if !ok {
		return
	}

	balance, err := h.wallet.GetBalance(r.Context(), userID)
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBalanceResponse(balance))
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	payload, err := req.Decode[dto.DepositRequest](r.Body)
	if err != nil {
		resp.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, ok := h.userID(w, r, false)
	if !ok {
		return
	}

	balance, err := h.wallet.Deposit(r.Context(), userID, payload.Amount)
	if err != nil {
		apierr.Write(w, r, h.log, err)
		return
	}

	resp.WriteJSONResponse(w, http.StatusOK, converter.ToBalanceResponse(balance))
}

// userID - демо-игры анонимны, остальным нужен игрок из токена
func (h *Handler) userID(w http.ResponseWriter, r *http.Request, demo bool) (int, bool) {
	if demo {
		return 0, true
	}
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		resp.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return 0, false
	}
	return id, true
}
