package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput - некорректные параметры, отклоняются до любых побочных эффектов
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoMatchingSlot - в активной пачке не осталось свободных слотов, стоит повторить позже
	ErrNoMatchingSlot = errors.New("no matching slot")
	// ErrAlreadyConsumed - попытка повторно завершить сыгранный слот
	ErrAlreadyConsumed = errors.New("slot already consumed")
	// ErrNoActiveBatch - игра на деньги невозможна, пока оператор не активирует пачку
	ErrNoActiveBatch = errors.New("no active batch")
	// ErrPersistence - хранилище недоступно или транзакция прервана, можно повторить
	ErrPersistence = errors.New("persistence failure")
	// ErrNotFound - запись не найдена
	ErrNotFound = errors.New("not found")
	// ErrInsufficientBalance - не хватает средств на ставку
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Invalid оборачивает ErrInvalidInput с пояснением
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Persistence оборачивает ошибку хранилища, если она не является известной доменной ошибкой
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{
		ErrInvalidInput, ErrNoMatchingSlot, ErrAlreadyConsumed, ErrNoActiveBatch,
		ErrPersistence, ErrNotFound, ErrInsufficientBalance,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
