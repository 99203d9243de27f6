package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"soundcatalog/model"
)

// ErrInjected is returned by MemoryStore operations armed with FailOn.
var ErrInjected = errors.New("injected store failure")

// MemoryStore 是进程内的 Store 实现，用于测试和 STORE_DRIVER=memory。
// 记录以 JSON 形式保存，保证与真实存储相同的拷贝语义
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]map[string][]byte
	calls  map[string]int
	fail   map[string]error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[string][]byte),
		calls:  make(map[string]int),
		fail:   make(map[string]error),
	}
}

// FailOn makes every subsequent call of op fail with err (ErrInjected when nil).
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	m.fail[op] = err
}

// Reset clears injected failures and call counters; data is kept.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
	m.fail = make(map[string]error)
}

// Calls returns how many times op was invoked.
func (m *MemoryStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MemoryStore) enter(op, table string) error {
	m.calls[op]++
	if err, ok := m.fail[op]; ok {
		return model.NewStoreError(op, table, err)
	}
	return nil
}

func (m *MemoryStore) GetItem(ctx context.Context, table, uid string) (model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetItem", table); err != nil {
		return nil, err
	}
	data, ok := m.tables[table][uid]
	if !ok {
		return nil, nil
	}
	return decodeRecord("GetItem", table, data)
}

func (m *MemoryStore) PutItem(ctx context.Context, table string, record model.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutItem", table); err != nil {
		return err
	}
	uid, err := recordKey(table, record)
	if err != nil {
		return err
	}
	data, err := json.Marshal(record)
	if err != nil {
		return model.NewStoreError("PutItem", table, err)
	}
	if m.tables[table] == nil {
		m.tables[table] = make(map[string][]byte)
	}
	m.tables[table][uid] = data
	return nil
}

func (m *MemoryStore) DeleteItem(ctx context.Context, table, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteItem", table); err != nil {
		return err
	}
	delete(m.tables[table], uid)
	return nil
}

// Scan returns records ordered by uid so tests get a stable order.
func (m *MemoryStore) Scan(ctx context.Context, table string, filter *Filter) ([]model.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("Scan", table); err != nil {
		return nil, err
	}

	uids := make([]string, 0, len(m.tables[table]))
	for uid := range m.tables[table] {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	records := make([]model.Record, 0, len(uids))
	for _, uid := range uids {
		r, err := decodeRecord("Scan", table, m.tables[table][uid])
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter.Match(r) {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enter("Ping", "")
}

func (m *MemoryStore) Close() error {
	return nil
}

func decodeRecord(op, table string, data []byte) (model.Record, error) {
	var r model.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", model.ErrMalformedRecord, op, table, err)
	}
	return r, nil
}
