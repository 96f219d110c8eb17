// Package datastoretest builds seeded providers and actors for service tests.
package datastoretest

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/kvstore"
	"github.com/juju/clock"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"
)

// Now is the fixed instant test clocks start at: a Wednesday mid-morning.
var Now = time.Date(2024, time.March, 13, 9, 30, 0, 0, time.Local)

// NewClock returns a test clock set to Now.
func NewClock() *testclock.Clock {
	return testclock.NewClock(Now)
}

// NewProvider returns a loaded provider over a fresh memory store with the
// sample dataset.
func NewProvider(t testing.TB, clk clock.Clock) *datastore.Provider {
	t.Helper()
	return newProvider(t, clk, true)
}

// NewEmptyProvider is NewProvider without sample data.
func NewEmptyProvider(t testing.TB, clk clock.Clock) *datastore.Provider {
	t.Helper()
	return newProvider(t, clk, false)
}

func newProvider(t testing.TB, clk clock.Clock, seed bool) *datastore.Provider {
	store := kvstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	p := datastore.NewProvider(store, nil, datastore.Options{Clock: clk, Seed: seed})
	require.NoError(t, p.Load(context.Background()))
	return p
}

// Sample actors matching the seeded accounts.
var (
	Admin = user.Actor{
		UserID: "1", SessionID: "s-admin", Email: "admin@hrms.com", Name: "Admin User",
		Role: user.RoleAdmin, Status: user.StatusActive,
	}
	HR = user.Actor{
		UserID: "2", SessionID: "s-hr", Email: "hr@hrms.com", Name: "HR Manager",
		Role: user.RoleHR, Status: user.StatusActive,
	}
	Employee = user.Actor{
		UserID: "3", SessionID: "s-emp", Email: "employee@hrms.com", Name: "John Doe",
		Role: user.RoleEmployee, Status: user.StatusActive, EmployeeID: "1",
	}
)

// Ctx returns a background context carrying a.
func Ctx(a user.Actor) context.Context {
	return user.WithActor(context.Background(), a)
}
