package wallet

import (
	"context"
	"log/slog"

	"tetrabet_backend/internal/model"
	"tetrabet_backend/internal/repository"
	"tetrabet_backend/internal/service"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// Максимальное пополнение за один запрос
var maxDeposit = decimal.NewFromInt(1_000_000)

type serv struct {
	repo      repository.WalletRepository
	txManager trm.Manager
	clock     clockwork.Clock
	log       *slog.Logger
}

func NewWalletService(
	repo repository.WalletRepository,
	txManager trm.Manager,
	clock clockwork.Clock,
	log *slog.Logger,
) service.WalletService {
	return &serv{
		repo:      repo,
		txManager: txManager,
		clock:     clock,
		log:       log,
	}
}

// Deposit - пополнение баланса. Возвращает баланс после пополнения
func (s *serv) Deposit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() || amount.GreaterThan(maxDeposit) {
		return decimal.Zero, model.Invalid("deposit must be in (0, %s], got %s", maxDeposit, amount)
	}
	if !model.WholeCents(amount) {
		return decimal.Zero, model.Invalid("deposit must have at most two decimal places")
	}

	var balance decimal.Decimal
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		err := s.repo.Credit(txCtx, model.WalletTransaction{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      model.TxDeposit,
			Amount:    amount,
			CreatedAt: s.clock.Now(),
		})
		if err != nil {
			return err
		}

		balance, err = s.repo.GetBalance(txCtx, userID)
		return err
	})
	if err != nil {
		return decimal.Zero, model.Persistence("deposit", err)
	}

	s.log.Info("deposit", "user_id", userID, "amount", amount.String())
	return balance, nil
}

// GetBalance - баланс пользователя
func (s *serv) GetBalance(ctx context.Context, userID int) (decimal.Decimal, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, model.Persistence("get balance", err)
	}
	return balance, nil
}
