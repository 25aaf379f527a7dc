// Package memory - хранилище в памяти для тестов и офлайн-симуляции.
// Реализует все интерфейсы репозиториев и trm.Manager с откатом изменений
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"tetrabet_backend/internal/model"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

type Store struct {
	clock clockwork.Clock

	// txMu сериализует транзакции, mu защищает данные
	txMu sync.Mutex
	mu   sync.Mutex

	configs []model.EconomicConfig

	batches    map[uuid.UUID]*model.GameBatch
	batchOrder []uuid.UUID

	slots   map[uuid.UUID]*model.Slot
	byBatch map[uuid.UUID]*batchSlots

	jackpot model.JackpotPool

	sessions map[uuid.UUID]*model.GameSession

	balances     map[int]decimal.Decimal
	transactions []model.WalletTransaction
}

// batchSlots - слоты пачки в порядке game_index
type batchSlots struct {
	slots []*model.Slot
	// все слоты левее free заняты или сыграны
	free int
}

func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		clock:    clock,
		batches:  make(map[uuid.UUID]*model.GameBatch),
		slots:    make(map[uuid.UUID]*model.Slot),
		byBatch:  make(map[uuid.UUID]*batchSlots),
		jackpot:  model.JackpotPool{ID: 1, UpdatedAt: clock.Now()},
		sessions: make(map[uuid.UUID]*model.GameSession),
		balances: make(map[int]decimal.Decimal),
	}
}

// SetBalance - выставляет баланс напрямую, без записи в журнал операций
func (s *Store) SetBalance(userID int, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] = amount
}

// Transactions - копия журнала операций по кошелькам
func (s *Store) Transactions() []model.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.WalletTransaction(nil), s.transactions...)
}

// Slots - копия всех слотов пачки в порядке game_index
func (s *Store) Slots(batchID uuid.UUID) []model.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, ok := s.byBatch[batchID]
	if !ok {
		return nil
	}
	out := make([]model.Slot, len(bs.slots))
	for i, sl := range bs.slots {
		out[i] = *sl
	}
	return out
}

// ---- economic config ----

func (s *Store) GetConfig(_ context.Context) (*model.EconomicConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.configs) == 0 {
		return nil, model.ErrNotFound
	}
	cfg := s.configs[len(s.configs)-1]
	return &cfg, nil
}

func (s *Store) CreateConfig(ctx context.Context, cfg *model.EconomicConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.configs)
	c := *cfg
	c.ID = int64(n + 1)
	c.Version = n + 1
	c.CreatedAt = s.clock.Now()
	s.configs = append(s.configs, c)
	s.record(ctx, func() { s.configs = s.configs[:n] })

	cfg.ID, cfg.Version, cfg.CreatedAt = c.ID, c.Version, c.CreatedAt
	return c.Version, nil
}

// ---- batches ----

func (s *Store) CreateBatch(ctx context.Context, b *model.GameBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.batches[b.ID]; ok {
		return model.Invalid("batch %s already exists", b.ID)
	}
	b.CreatedAt = s.clock.Now()
	cp := *b
	cp.IsActive = false
	s.batches[b.ID] = &cp
	s.batchOrder = append(s.batchOrder, b.ID)
	s.record(ctx, func() {
		delete(s.batches, cp.ID)
		s.batchOrder = s.batchOrder[:len(s.batchOrder)-1]
	})
	return nil
}

func (s *Store) GetBatch(_ context.Context, id uuid.UUID) (*model.GameBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *Store) GetActiveBatch(_ context.Context) (*model.GameBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.batches {
		if b.IsActive {
			cp := *b
			return &cp, nil
		}
	}
	return nil, model.ErrNoActiveBatch
}

func (s *Store) ListBatches(_ context.Context) ([]model.GameBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.GameBatch, 0, len(s.batchOrder))
	for i := len(s.batchOrder) - 1; i >= 0; i-- {
		out = append(out, *s.batches[s.batchOrder[i]])
	}
	return out, nil
}

func (s *Store) ActivateBatch(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.batches[id]
	if !ok {
		return model.ErrNotFound
	}
	for _, b := range s.batches {
		if b.IsActive && b.ID != id {
			s.setActive(ctx, b, false)
		}
	}
	if !target.IsActive {
		s.setActive(ctx, target, true)
	}
	return nil
}

func (s *Store) DeactivateBatch(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return model.ErrNotFound
	}
	if b.IsActive {
		s.setActive(ctx, b, false)
	}
	return nil
}

func (s *Store) setActive(ctx context.Context, b *model.GameBatch, active bool) {
	prev := b.IsActive
	b.IsActive = active
	s.record(ctx, func() { b.IsActive = prev })
}

func (s *Store) AddBatchProgress(ctx context.Context, id uuid.UUID, d model.BatchProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[id]
	if !ok {
		return model.ErrNotFound
	}
	prev := *b
	b.GamesPlayed += d.GamesPlayed
	b.ActualPlayerPayout = b.ActualPlayerPayout.Add(d.PlayerPayout)
	b.ActualPlatformRevenue = b.ActualPlatformRevenue.Add(d.PlatformRevenue)
	b.ActualJackpotContribution = b.ActualJackpotContribution.Add(d.JackpotContribution)
	s.record(ctx, func() { *b = prev })
	return nil
}

// ---- slots ----

func (s *Store) InsertSlots(ctx context.Context, slots []model.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sl := range slots {
		if _, ok := s.batches[sl.BatchID]; !ok {
			return model.Invalid("slot %s references unknown batch %s", sl.ID, sl.BatchID)
		}
		if _, ok := s.slots[sl.ID]; ok {
			return model.Invalid("slot %s already exists", sl.ID)
		}
	}

	touched := make(map[uuid.UUID]int)
	for i := range slots {
		cp := slots[i]
		cp.IsPlayed = false
		s.slots[cp.ID] = &cp

		bs, ok := s.byBatch[cp.BatchID]
		if !ok {
			bs = &batchSlots{}
			s.byBatch[cp.BatchID] = bs
		}
		if _, ok := touched[cp.BatchID]; !ok {
			touched[cp.BatchID] = len(bs.slots)
		}
		bs.slots = append(bs.slots, &cp)
	}
	for batchID := range touched {
		bs := s.byBatch[batchID]
		sort.SliceStable(bs.slots, func(i, j int) bool { return bs.slots[i].GameIndex < bs.slots[j].GameIndex })
		bs.free = 0
	}

	s.record(ctx, func() {
		for _, sl := range slots {
			delete(s.slots, sl.ID)
		}
		for batchID, n := range touched {
			bs := s.byBatch[batchID]
			kept := bs.slots[:0]
			for _, sl := range bs.slots {
				if _, ok := s.slots[sl.ID]; ok {
					kept = append(kept, sl)
				}
			}
			bs.slots = kept
			bs.free = 0
			if n == 0 {
				delete(s.byBatch, batchID)
			}
		}
	})
	return nil
}

func (s *Store) GetSlot(_ context.Context, id uuid.UUID) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *sl
	return &cp, nil
}

func available(sl *model.Slot) bool {
	return !sl.IsPlayed && sl.SessionID == nil
}

func (s *Store) FindAvailableSlot(_ context.Context, f model.SlotFilter) (*model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bs, ok := s.byBatch[f.BatchID]
	if !ok {
		return nil, model.ErrNotFound
	}
	for bs.free < len(bs.slots) && !available(bs.slots[bs.free]) {
		bs.free++
	}

	for _, sl := range bs.slots[bs.free:] {
		if !available(sl) {
			continue
		}
		if f.MinBet.Valid && sl.BetAmount.LessThan(f.MinBet.Decimal) {
			continue
		}
		if f.MaxBet.Valid && sl.BetAmount.GreaterThan(f.MaxBet.Decimal) {
			continue
		}
		if f.MinSkill > 0 && sl.SkillRequirement < f.MinSkill {
			continue
		}
		if f.MaxSkill > 0 && sl.SkillRequirement > f.MaxSkill {
			continue
		}
		cp := *sl
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (s *Store) ClaimSlot(ctx context.Context, slotID, sessionID uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[slotID]
	if !ok || !available(sl) {
		return false, nil
	}
	prev := *sl
	sid, claimedAt := sessionID, at
	sl.SessionID = &sid
	sl.ClaimedAt = &claimedAt
	s.record(ctx, func() {
		*sl = prev
		s.byBatch[sl.BatchID].free = 0
	})
	return true, nil
}

func (s *Store) MarkSlotPlayed(ctx context.Context, p model.PlayedSlot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[p.SlotID]
	if !ok || sl.IsPlayed {
		return false, nil
	}
	prev := *sl
	playedAt, score := p.PlayedAt, p.ActualScore
	sl.IsPlayed = true
	sl.PlayedAt = &playedAt
	sl.ActualScore = &score
	sl.ActualPayout = decimal.NewNullDecimal(p.ActualPayout)
	s.record(ctx, func() {
		*sl = prev
		s.byBatch[sl.BatchID].free = 0
	})
	return true, nil
}

func (s *Store) ListSlots(_ context.Context, q model.SlotQuery) ([]model.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Slot, 0)
	bs, ok := s.byBatch[q.BatchID]
	if !ok {
		return out, nil
	}
	for _, sl := range bs.slots {
		switch q.Status {
		case model.SlotStatusPlayed:
			if !sl.IsPlayed {
				continue
			}
		case model.SlotStatusUnplayed:
			if sl.IsPlayed {
				continue
			}
		}
		out = append(out, *sl)
	}

	sort.SliceStable(out, func(i, j int) bool { return slotLess(q.Sort, &out[i], &out[j]) })

	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return out[:0], nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out, nil
}

// slotLess повторяет сортировку Postgres-репозитория, game_index - второй ключ
func slotLess(by model.SlotSort, a, b *model.Slot) bool {
	switch by {
	case model.SortTargetScore:
		if a.MaxAchievableScore != b.MaxAchievableScore {
			return a.MaxAchievableScore > b.MaxAchievableScore
		}
	case model.SortMaxPayout:
		if c := a.ExpectedPayout.Cmp(b.ExpectedPayout); c != 0 {
			return c > 0
		}
	case model.SortPlayedAt:
		switch {
		case a.PlayedAt != nil && b.PlayedAt == nil:
			return true
		case a.PlayedAt == nil && b.PlayedAt != nil:
			return false
		case a.PlayedAt != nil && !a.PlayedAt.Equal(*b.PlayedAt):
			return a.PlayedAt.After(*b.PlayedAt)
		}
	}
	return a.GameIndex < b.GameIndex
}

func (s *Store) CountSlots(_ context.Context, batchID uuid.UUID) ([]model.ResultCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[model.ResultType]*model.ResultCount)
	if bs, ok := s.byBatch[batchID]; ok {
		for _, sl := range bs.slots {
			c, ok := counts[sl.ResultType]
			if !ok {
				c = &model.ResultCount{ResultType: sl.ResultType}
				counts[sl.ResultType] = c
			}
			c.Total++
			c.Expected = c.Expected.Add(sl.ExpectedPayout)
			if sl.IsPlayed {
				c.Played++
				c.Paid = c.Paid.Add(sl.ActualPayout.Decimal)
			}
		}
	}

	out := make([]model.ResultCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultType < out[j].ResultType })
	return out, nil
}

// ---- jackpot ----

func (s *Store) GetJackpot(_ context.Context) (*model.JackpotPool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.jackpot
	return &p, nil
}

func (s *Store) AddJackpotContribution(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.jackpot
	s.jackpot.CurrentAmount = s.jackpot.CurrentAmount.Add(amount)
	s.jackpot.TotalContributions = s.jackpot.TotalContributions.Add(amount)
	s.jackpot.UpdatedAt = s.clock.Now()
	s.record(ctx, func() { s.jackpot = prev })
	return nil
}

func (s *Store) PayJackpot(ctx context.Context, win model.JackpotWin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.jackpot
	winner, wonAt := win.WinnerID, win.WonAt
	s.jackpot.CurrentAmount = decimal.Zero
	s.jackpot.TotalPayouts = s.jackpot.TotalPayouts.Add(win.Amount)
	s.jackpot.LastWinnerID = &winner
	s.jackpot.LastWinAmount = decimal.NewNullDecimal(win.Amount)
	s.jackpot.LastWinDate = &wonAt
	s.jackpot.UpdatedAt = wonAt
	s.record(ctx, func() { s.jackpot = prev })
	return nil
}

// ---- sessions ----

func (s *Store) CreateSession(ctx context.Context, gs *model.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[gs.ID]; ok {
		return model.Invalid("session %s already exists", gs.ID)
	}
	cp := *gs
	s.sessions[gs.ID] = &cp
	s.record(ctx, func() { delete(s.sessions, cp.ID) })
	return nil
}

func (s *Store) GetSession(_ context.Context, id uuid.UUID) (*model.GameSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs, ok := s.sessions[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *gs
	return &cp, nil
}

func (s *Store) CompleteSession(ctx context.Context, id uuid.UUID, score int64, payout decimal.Decimal, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gs, ok := s.sessions[id]
	if !ok || gs.Status != model.SessionActive {
		return false, nil
	}
	prev := *gs
	completedAt := at
	gs.Status = model.SessionCompleted
	gs.Score = &score
	gs.Payout = decimal.NewNullDecimal(payout)
	gs.CompletedAt = &completedAt
	s.record(ctx, func() { *gs = prev })
	return true, nil
}

// ---- wallet ----

func (s *Store) GetBalance(_ context.Context, userID int) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balances[userID], nil
}

func (s *Store) Debit(ctx context.Context, tx model.WalletTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[tx.UserID]
	if !ok || balance.LessThan(tx.Amount) {
		return model.ErrInsufficientBalance
	}
	s.applyBalance(ctx, tx, balance.Sub(tx.Amount))
	return nil
}

func (s *Store) Credit(ctx context.Context, tx model.WalletTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyBalance(ctx, tx, s.balances[tx.UserID].Add(tx.Amount))
	return nil
}

func (s *Store) applyBalance(ctx context.Context, tx model.WalletTransaction, balance decimal.Decimal) {
	prev, existed := s.balances[tx.UserID]
	n := len(s.transactions)
	s.balances[tx.UserID] = balance
	s.transactions = append(s.transactions, tx)
	s.record(ctx, func() {
		if existed {
			s.balances[tx.UserID] = prev
		} else {
			delete(s.balances, tx.UserID)
		}
		s.transactions = s.transactions[:n]
	})
}
