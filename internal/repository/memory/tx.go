package memory

import (
	"context"

	"github.com/avito-tech/go-transaction-manager/trm/v2"
)

type journalKey struct{}

// journal - список откатов текущей транзакции
type journal struct {
	undo []func()
}

// record запоминает откат изменения, если ctx находится внутри транзакции.
// Вызывается под s.mu
func (s *Store) record(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

// TxManager - менеджер транзакций поверх Store.
// Транзакции выполняются строго по одной, при ошибке изменения откатываются
type TxManager struct {
	store *Store
}

var _ trm.Manager = (*TxManager)(nil)

func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	// вложенная транзакция выполняется в рамках внешней
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	j := &journal{}
	err := fn(context.WithValue(ctx, journalKey{}, j))
	if err != nil {
		m.store.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i]()
		}
		m.store.mu.Unlock()
	}
	return err
}

func (m *TxManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}
