package datastore_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore/datastoretest"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/network"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProvider(t *testing.T, store kvstore.Store, seed bool) *datastore.Provider {
	t.Helper()
	p := datastore.NewProvider(store, nil, datastore.Options{Clock: datastoretest.NewClock(), Seed: seed})
	require.NoError(t, p.Load(context.Background()))
	return p
}

func TestProvider_Load_SeedsSampleData(t *testing.T) {
	// Setup
	store := kvstore.NewMemoryStore()
	defer store.Close()

	// Act
	p := newProvider(t, store, true)

	// Assert
	employees := p.Employees().List()
	require.Len(t, employees, 3)
	assert.Equal(t, "John Doe", employees[0].Name)
	assert.Len(t, p.Attendance().List(), 21)
	assert.Len(t, p.Leaves().List(), 2)
	assert.Len(t, p.Payroll().List(), 2)
	assert.Len(t, p.ReceiptPayments().List(), 2)
	assert.Len(t, p.Users().List(), 3)
	assert.Empty(t, p.PerformanceReviews().List())
	assert.Empty(t, p.IPWhitelist().List())

	absent, ok := p.Attendance().Get("3-2024-03-07")
	require.True(t, ok)
	assert.Equal(t, "absent", string(absent.Status))
}

func TestProvider_Load_WithoutSeedStartsEmpty(t *testing.T) {
	store := kvstore.NewMemoryStore()
	defer store.Close()

	p := newProvider(t, store, false)

	assert.Empty(t, p.Employees().List())
	assert.NotNil(t, p.Employees().List())
	snapshot := p.Snapshot()
	assert.Empty(t, snapshot.Leaves)
}

func TestProvider_Load_IsIdempotent(t *testing.T) {
	// Setup
	store := kvstore.NewMemoryStore()
	defer store.Close()
	p := newProvider(t, store, true)

	// Act
	require.NoError(t, p.Load(context.Background()))
	second := newProvider(t, store, true)

	// Assert
	assert.Len(t, p.Employees().List(), 3)
	assert.Len(t, second.Employees().List(), 3)
	assert.Len(t, second.Attendance().List(), 21)
}

func TestProvider_RoundTrip_FileStore(t *testing.T) {
	// Setup
	dir := filepath.Join(t.TempDir(), "data")
	store, err := kvstore.NewFileStore(dir)
	require.NoError(t, err)
	p := newProvider(t, store, true)
	ctx := context.Background()

	// Act
	err = p.IPWhitelist().Add(ctx, network.WhitelistEntry{ID: "w1", IPAddress: "10.0.0.0/8", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := kvstore.NewFileStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	loaded := newProvider(t, reopened, true)

	// Assert
	entries := loaded.IPWhitelist().List()
	require.Len(t, entries, 1)
	assert.Equal(t, "10.0.0.0/8", entries[0].IPAddress)
	require.Len(t, loaded.Employees().List(), len(p.Employees().List()))
	emp, ok := loaded.Employees().Get("2")
	require.True(t, ok)
	assert.Equal(t, "Sarah Wilson", emp.Name)
}

func TestTable_List_ReturnsCopy(t *testing.T) {
	p := datastoretest.NewProvider(t, datastoretest.NewClock())

	leaves := p.Leaves().List()
	leaves[0].Reason = "changed"

	stored, _ := p.Leaves().Get(leaves[0].ID)
	assert.NotEqual(t, "changed", stored.Reason)
}

func TestTable_UpdateDelete_UnknownID(t *testing.T) {
	p := datastoretest.NewProvider(t, datastoretest.NewClock())
	ctx := context.Background()

	err := p.Leaves().Update(ctx, leave.LeaveRequest{ID: "missing"})
	assert.ErrorIs(t, err, collection.ErrNotFound)

	err = p.Leaves().Delete(ctx, "missing")
	assert.ErrorIs(t, err, collection.ErrNotFound)
	assert.Len(t, p.Leaves().List(), 2)
}

func TestTable_Apply_ErrorLeavesTableUntouched(t *testing.T) {
	p := datastoretest.NewProvider(t, datastoretest.NewClock())

	err := p.Payroll().Apply(context.Background(), func(items []payroll.PayrollRecord) ([]payroll.PayrollRecord, error) {
		return nil, payroll.ErrPayrollAlreadyGenerated
	})

	assert.ErrorIs(t, err, payroll.ErrPayrollAlreadyGenerated)
	assert.Len(t, p.Payroll().List(), 2)
}

func TestTable_Add_ConcurrentWritersKeepEveryRecord(t *testing.T) {
	// Setup
	p := datastoretest.NewEmptyProvider(t, datastoretest.NewClock())
	ctx := context.Background()
	var wg sync.WaitGroup

	// Act
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.IPWhitelist().Add(ctx, network.WhitelistEntry{ID: id, IPAddress: "10.0.0." + id}))
		}()
	}
	wg.Wait()

	// Assert
	assert.Len(t, p.IPWhitelist().List(), 5)
}

func TestTable_Add_RebasesOnVersionConflict(t *testing.T) {
	// Setup
	store := kvstore.NewMemoryStore()
	defer store.Close()
	first := newProvider(t, store, true)
	second := newProvider(t, store, true)
	ctx := context.Background()

	// Act
	require.NoError(t, first.Leaves().Add(ctx, leave.LeaveRequest{ID: "3", EmployeeID: "3", Status: leave.StatusPending}))
	require.NoError(t, second.Leaves().Add(ctx, leave.LeaveRequest{ID: "4", EmployeeID: "2", Status: leave.StatusPending}))

	// Assert
	leaves := second.Leaves().List()
	require.Len(t, leaves, 4)
	_, ok := second.Leaves().Get("3")
	assert.True(t, ok)
}

func TestProvider_Resync_PicksUpExternalWrites(t *testing.T) {
	// Setup
	store := kvstore.NewMemoryStore()
	defer store.Close()
	first := newProvider(t, store, true)
	second := newProvider(t, store, true)
	require.NoError(t, first.Employees().Delete(context.Background(), "3"))

	// Act
	changed, err := second.Resync(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
	assert.Len(t, second.Employees().List(), 2)

	changed, err = second.Resync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed)
}

func TestProvider_Watch_ReloadsAndBroadcasts(t *testing.T) {
	// Setup
	store := kvstore.NewMemoryStore()
	defer store.Close()
	writer := newProvider(t, store, true)
	reader := newProvider(t, store, true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, reader.Watch(ctx))
	events, unsubscribe := reader.Subscribe(datastore.TableEmployees)
	defer unsubscribe()

	// Act
	require.NoError(t, writer.Employees().Delete(ctx, "2"))

	// Assert
	select {
	case ev := <-events:
		assert.Equal(t, string(datastore.ChangeReload), ev.Event)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload event")
	}
	assert.Len(t, reader.Employees().List(), 2)
}

func TestProvider_Subscribe_ReceivesCommittedChanges(t *testing.T) {
	// Setup
	p := datastoretest.NewProvider(t, datastoretest.NewClock())
	events, unsubscribe := p.Subscribe(datastore.TableLeaves)
	defer unsubscribe()
	others, unsubscribeOthers := p.Subscribe(datastore.TablePayroll)
	defer unsubscribeOthers()

	// Act
	err := p.Leaves().Add(context.Background(), leave.LeaveRequest{ID: "9", EmployeeID: "1", Status: leave.StatusPending})
	require.NoError(t, err)

	// Assert
	select {
	case ev := <-events:
		assert.Equal(t, string(datastore.ChangeInsert), ev.Event)
		change, ok := ev.Data.(datastore.ChangeEvent)
		require.True(t, ok)
		assert.Equal(t, "9", change.RecordID)
		assert.Equal(t, datastore.TableLeaves, change.Table)
	case <-time.After(time.Second):
		t.Fatal("no insert event")
	}
	assert.Empty(t, others)
}

func TestProvider_Tables(t *testing.T) {
	p := datastoretest.NewEmptyProvider(t, datastoretest.NewClock())

	assert.Contains(t, p.Tables(), datastore.TableEmployees)
	assert.Contains(t, p.Tables(), datastore.TableIPWhitelist)
	assert.Len(t, p.Tables(), 10)
}
