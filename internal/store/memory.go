package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"gift-core/internal/model"
)

// MemoryStore 进程内存储 (默认 driver)。
// 写操作由单个写锁串行化，工作单元内的修改先暂存，fn 成功后一次性提交
type MemoryStore struct {
	mu sync.RWMutex

	endUsers     map[string]model.EndUser
	creators     map[string]model.Creator
	admins       map[string]model.Admin
	gifts        map[string]model.Gift
	withdrawals  map[string]model.Withdrawal
	transactions []model.Transaction
	audit        []model.AuditLogEntry
	outbox       []model.OutboxMessage
	platform     model.PlatformWallet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		endUsers:    make(map[string]model.EndUser),
		creators:    make(map[string]model.Creator),
		admins:      make(map[string]model.Admin),
		gifts:       make(map[string]model.Gift),
		withdrawals: make(map[string]model.Withdrawal),
		platform:    model.PlatformWallet{ID: model.PlatformWalletID},
	}
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newMemTx(s)
	if err := fn(tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *MemoryStore) Seeded(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.gifts) > 0 || len(s.endUsers) > 0 || len(s.creators) > 0, nil
}

func (s *MemoryStore) Seed(ctx context.Context, seed model.Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range seed.EndUsers {
		s.endUsers[u.ID] = u
	}
	for _, c := range seed.Creators {
		s.creators[c.ID] = c
	}
	for _, a := range seed.Admins {
		s.admins[a.ID] = a
	}
	for _, g := range seed.Gifts {
		s.gifts[g.ID] = g
	}
	for _, w := range seed.Withdrawals {
		s.withdrawals[w.ID] = w
	}
	s.transactions = append(s.transactions, seed.Transactions...)
	s.audit = append(s.audit, seed.AuditLog...)
	s.platform.Balance += seed.PlatformBalance
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// ---------------------------------------------------------------------------
// Reader

func (s *MemoryStore) GetAccount(ctx context.Context, id string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupAccount(id)
}

func (s *MemoryStore) lookupAccount(id string) (model.Account, error) {
	if u, ok := s.endUsers[id]; ok {
		return &u, nil
	}
	if c, ok := s.creators[id]; ok {
		return &c, nil
	}
	if a, ok := s.admins[id]; ok {
		return &a, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListEndUsers(ctx context.Context) ([]model.EndUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.EndUser, 0, len(s.endUsers))
	for _, u := range s.endUsers {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListCreators(ctx context.Context) ([]model.Creator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Creator, 0, len(s.creators))
	for _, c := range s.creators {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListGifts(ctx context.Context) ([]model.Gift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Gift, 0, len(s.gifts))
	for _, g := range s.gifts {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		if f.AccountID != "" && t.SenderID != f.AccountID && t.ReceiverID != f.AccountID {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) ListWithdrawals(ctx context.Context, f WithdrawalFilter) ([]model.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Withdrawal, 0, len(s.withdrawals))
	for _, w := range s.withdrawals {
		if f.CreatorID != "" && w.CreatorID != f.CreatorID {
			continue
		}
		if f.Status != "" && w.Status != f.Status {
			continue
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].RequestedAt.After(out[j].RequestedAt)
	})
	return out, nil
}

func (s *MemoryStore) ListAuditLog(ctx context.Context) ([]model.AuditLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.AuditLogEntry, len(s.audit))
	copy(out, s.audit)
	return out, nil
}

func (s *MemoryStore) PlatformBalance(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.platform.Balance, nil
}

// ---------------------------------------------------------------------------
// Outbox

func (s *MemoryStore) PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.OutboxMessage
	for _, m := range s.outbox {
		if m.Status != model.OutboxPending {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkOutboxSent(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 内存实现只保留待投递的消息，投递成功即删除
	for i := range s.outbox {
		if s.outbox[i].ID == id {
			s.outbox = append(s.outbox[:i], s.outbox[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ---------------------------------------------------------------------------
// memTx 暂存区。读优先命中暂存区，返回的都是副本

type memTx struct {
	s *MemoryStore

	endUsers     map[string]model.EndUser
	creators     map[string]model.Creator
	admins       map[string]model.Admin
	withdrawals  map[string]model.Withdrawal
	platform     *model.PlatformWallet
	transactions []model.Transaction
	audit        []model.AuditLogEntry
	outbox       []model.OutboxMessage
}

func newMemTx(s *MemoryStore) *memTx {
	return &memTx{
		s:           s,
		endUsers:    make(map[string]model.EndUser),
		creators:    make(map[string]model.Creator),
		admins:      make(map[string]model.Admin),
		withdrawals: make(map[string]model.Withdrawal),
	}
}

func (t *memTx) commit() {
	for id, u := range t.endUsers {
		t.s.endUsers[id] = u
	}
	for id, c := range t.creators {
		t.s.creators[id] = c
	}
	for id, a := range t.admins {
		t.s.admins[id] = a
	}
	for id, w := range t.withdrawals {
		t.s.withdrawals[id] = w
	}
	if t.platform != nil {
		t.s.platform = *t.platform
	}
	t.s.transactions = append(t.s.transactions, t.transactions...)
	t.s.audit = append(t.s.audit, t.audit...)
	t.s.outbox = append(t.s.outbox, t.outbox...)
}

func (t *memTx) Account(id string) (model.Account, error) {
	if u, err := t.EndUser(id); err == nil {
		return u, nil
	}
	if c, err := t.Creator(id); err == nil {
		return c, nil
	}
	if a, err := t.Admin(id); err == nil {
		return a, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) EndUser(id string) (*model.EndUser, error) {
	if u, ok := t.endUsers[id]; ok {
		return &u, nil
	}
	if u, ok := t.s.endUsers[id]; ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) Creator(id string) (*model.Creator, error) {
	if c, ok := t.creators[id]; ok {
		return &c, nil
	}
	if c, ok := t.s.creators[id]; ok {
		return &c, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) Admin(id string) (*model.Admin, error) {
	if a, ok := t.admins[id]; ok {
		return &a, nil
	}
	if a, ok := t.s.admins[id]; ok {
		return &a, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) Gift(id string) (*model.Gift, error) {
	if g, ok := t.s.gifts[id]; ok {
		return &g, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) Withdrawal(id string) (*model.Withdrawal, error) {
	if w, ok := t.withdrawals[id]; ok {
		return &w, nil
	}
	if w, ok := t.s.withdrawals[id]; ok {
		return &w, nil
	}
	return nil, ErrNotFound
}

func (t *memTx) PendingWithdrawalTotal(creatorID string) (int64, error) {
	var total int64
	for id, w := range t.s.withdrawals {
		if staged, ok := t.withdrawals[id]; ok {
			w = staged
		}
		if w.CreatorID == creatorID && w.Status == model.WithdrawalPending {
			total += w.Amount
		}
	}
	for id, w := range t.withdrawals {
		if _, existed := t.s.withdrawals[id]; existed {
			continue
		}
		if w.CreatorID == creatorID && w.Status == model.WithdrawalPending {
			total += w.Amount
		}
	}
	return total, nil
}

func (t *memTx) PlatformWallet() (*model.PlatformWallet, error) {
	if t.platform != nil {
		p := *t.platform
		return &p, nil
	}
	p := t.s.platform
	return &p, nil
}

func (t *memTx) LastAuditEntry() (*model.AuditLogEntry, error) {
	if n := len(t.audit); n > 0 {
		e := t.audit[n-1]
		return &e, nil
	}
	if n := len(t.s.audit); n > 0 {
		e := t.s.audit[n-1]
		return &e, nil
	}
	return nil, nil
}

func (t *memTx) SaveAccount(a model.Account) error {
	switch acc := a.(type) {
	case *model.EndUser:
		t.endUsers[acc.ID] = *acc
	case *model.Creator:
		t.creators[acc.ID] = *acc
	case *model.Admin:
		t.admins[acc.ID] = *acc
	default:
		return ErrNotFound
	}
	return nil
}

func (t *memTx) SavePlatformWallet(w *model.PlatformWallet) error {
	p := *w
	t.platform = &p
	return nil
}

func (t *memTx) CreateTransaction(tr *model.Transaction) error {
	t.transactions = append(t.transactions, *tr)
	return nil
}

func (t *memTx) CreateWithdrawal(w *model.Withdrawal) error {
	t.withdrawals[w.ID] = *w
	return nil
}

func (t *memTx) SaveWithdrawal(w *model.Withdrawal) error {
	if _, err := t.Withdrawal(w.ID); err != nil {
		return err
	}
	t.withdrawals[w.ID] = *w
	return nil
}

func (t *memTx) AppendAudit(e *model.AuditLogEntry) error {
	t.audit = append(t.audit, *e)
	return nil
}

func (t *memTx) AppendOutbox(m *model.OutboxMessage) error {
	t.outbox = append(t.outbox, *m)
	return nil
}
