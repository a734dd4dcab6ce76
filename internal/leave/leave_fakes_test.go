package leave_test

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-leave/internal/employee"
	"go-leave/internal/leave"
	"go-leave/internal/leavebalance"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore backs the in-memory repositories shared by the workflow tests.
type memStore struct {
	mu       sync.Mutex
	leaves   map[uuid.UUID]leave.Leave
	balances map[string]leavebalance.LeaveBalance
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		leaves:   map[uuid.UUID]leave.Leave{},
		balances: map[string]leavebalance.LeaveBalance{},
	}
}

func balanceKey(employeeID uuid.UUID, year int) string {
	return fmt.Sprintf("%s:%d", employeeID, year)
}

func (s *memStore) balance(employeeID uuid.UUID, year int) leavebalance.LeaveBalance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[balanceKey(employeeID, year)]
}

type fakeLeaveRepository struct {
	store    *memStore
	createFn func(ctx context.Context, l *leave.Leave) error
}

func (f *fakeLeaveRepository) WithTx(*sql.Tx) leave.Repository {
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.seq++
	l.CreatedAt = time.Unix(int64(f.store.seq), 0).UTC()
	stored := *l
	stored.Employee = nil
	f.store.leaves[l.ID] = stored
	return nil
}

func (f *fakeLeaveRepository) FindByID(ctx context.Context, id uuid.UUID) (*leave.Leave, error) {
	return f.FindByIDForUpdate(ctx, id)
}

func (f *fakeLeaveRepository) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*leave.Leave, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	l, ok := f.store.leaves[id]
	if !ok {
		return &leave.Leave{}, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (f *fakeLeaveRepository) FindAllByEmployee(_ context.Context, employeeID uuid.UUID) ([]leave.Leave, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []leave.Leave
	for _, l := range f.store.leaves {
		if l.EmployeeID == employeeID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeLeaveRepository) Update(_ context.Context, l *leave.Leave) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	stored := *l
	stored.Employee = nil
	f.store.leaves[l.ID] = stored
	return nil
}

func (f *fakeLeaveRepository) HasOverlappingPeriod(_ context.Context, employeeID uuid.UUID, startDate, endDate time.Time) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, l := range f.store.leaves {
		if l.EmployeeID != employeeID {
			continue
		}
		if l.Status != leave.StatusPending && l.Status != leave.StatusApproved {
			continue
		}
		if !(l.EndDate.Before(startDate) || l.StartDate.After(endDate)) {
			return true, nil
		}
	}
	return false, nil
}

type fakeBalanceRepository struct {
	store *memStore
}

func (f *fakeBalanceRepository) WithTx(*sql.Tx) leavebalance.Repository {
	return f
}

func (f *fakeBalanceRepository) Create(_ context.Context, b *leavebalance.LeaveBalance) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	f.store.balances[balanceKey(b.EmployeeID, b.Year)] = *b
	return nil
}

func (f *fakeBalanceRepository) FindByEmployeeAndYear(_ context.Context, employeeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	b, ok := f.store.balances[balanceKey(employeeID, year)]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBalanceRepository) FindByEmployeeAndYearForUpdate(ctx context.Context, employeeID uuid.UUID, year int) (*leavebalance.LeaveBalance, error) {
	return f.FindByEmployeeAndYear(ctx, employeeID, year)
}

func (f *fakeBalanceRepository) Update(ctx context.Context, b *leavebalance.LeaveBalance) error {
	return f.Create(ctx, b)
}

type fakeEmployeeFinder map[string]*employee.Employee

func (f fakeEmployeeFinder) Find(_ context.Context, id string) (*employee.Employee, error) {
	return f[id], nil
}
