// Package datastore owns every HRMS collection. All reads and writes of
// employees, attendance, leave, payroll, finance records, reviews, users and
// sessions go through one Provider so there is a single writer per process.
package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/finance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/network"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/performance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/kvstore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/sse"
	"github.com/juju/clock"
)

// Table names double as broadcast topics.
const (
	TableEmployees          = "employees"
	TableAttendance         = "attendance"
	TableLeaves             = "leaves"
	TablePayroll            = "payroll"
	TableReceiptPayments    = "receipt_payments"
	TablePerformanceReviews = "performance_reviews"
	TableUsers              = "users"
	TableSessions           = "sessions"
	TableIPWhitelist        = "ip_whitelist"
	TableEmployeeDocuments  = "employee_documents"
)

// Persisted keys.
const (
	KeyEmployees          = "hrms_employees"
	KeyAttendance         = "hrms_attendance"
	KeyLeaves             = "hrms_leaves"
	KeyPayroll            = "hrms_payroll"
	KeyReceiptPayments    = "hrms_receipt_payments"
	KeyPerformanceReviews = "hrms_performance_reviews"
	KeyUsers              = "hrms_users"
	KeySessions           = "hrms_sessions"
	KeyIPWhitelist        = "hrms_ip_whitelist"
	KeyEmployeeDocuments  = "hrms_employee_documents"
)

type Options struct {
	Clock clock.Clock
	// Seed writes the sample dataset into keys that do not exist yet.
	Seed bool
}

type Provider struct {
	store kvstore.Store
	hub   *sse.Hub
	clock clock.Clock
	seed  bool

	// writeMu serialises every mutation and reload.
	writeMu sync.Mutex
	tables  []syncer

	employees   *Table[employee.Employee]
	documents   *Table[employee.Document]
	attendance  *Table[attendance.Attendance]
	leaves      *Table[leave.LeaveRequest]
	payroll     *Table[payroll.PayrollRecord]
	finance     *Table[finance.ReceiptPayment]
	reviews     *Table[performance.Review]
	users       *Table[user.User]
	sessions    *Table[user.Session]
	ipWhitelist *Table[network.WhitelistEntry]
}

func NewProvider(store kvstore.Store, hub *sse.Hub, opts Options) *Provider {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if hub == nil {
		hub = sse.NewHub()
	}
	p := &Provider{
		store: store,
		hub:   hub,
		clock: opts.Clock,
		seed:  opts.Seed,
	}
	p.employees = newTable(p, TableEmployees, KeyEmployees, seedEmployees)
	p.documents = newTable[employee.Document](p, TableEmployeeDocuments, KeyEmployeeDocuments, nil)
	p.attendance = newTable(p, TableAttendance, KeyAttendance, seedAttendance)
	p.leaves = newTable(p, TableLeaves, KeyLeaves, seedLeaves)
	p.payroll = newTable(p, TablePayroll, KeyPayroll, seedPayroll)
	p.finance = newTable(p, TableReceiptPayments, KeyReceiptPayments, seedReceiptPayments)
	p.reviews = newTable[performance.Review](p, TablePerformanceReviews, KeyPerformanceReviews, nil)
	p.users = newTable(p, TableUsers, KeyUsers, seedUsers)
	p.sessions = newTable[user.Session](p, TableSessions, KeySessions, nil)
	p.ipWhitelist = newTable[network.WhitelistEntry](p, TableIPWhitelist, KeyIPWhitelist, nil)
	return p
}

func (p *Provider) Employees() *Table[employee.Employee]            { return p.employees }
func (p *Provider) Documents() *Table[employee.Document]            { return p.documents }
func (p *Provider) Attendance() *Table[attendance.Attendance]       { return p.attendance }
func (p *Provider) Leaves() *Table[leave.LeaveRequest]              { return p.leaves }
func (p *Provider) Payroll() *Table[payroll.PayrollRecord]          { return p.payroll }
func (p *Provider) ReceiptPayments() *Table[finance.ReceiptPayment] { return p.finance }
func (p *Provider) PerformanceReviews() *Table[performance.Review]  { return p.reviews }
func (p *Provider) Users() *Table[user.User]                        { return p.users }
func (p *Provider) Sessions() *Table[user.Session]                  { return p.sessions }
func (p *Provider) IPWhitelist() *Table[network.WhitelistEntry]     { return p.ipWhitelist }

// Hub exposes the broadcast used for change events.
func (p *Provider) Hub() *sse.Hub { return p.hub }

// Tables lists every table name, usable as subscription topics.
func (p *Provider) Tables() []string {
	names := make([]string, 0, len(p.tables))
	for _, t := range p.tables {
		names = append(names, t.name())
	}
	return names
}

// Load reads every table from the store. Keys that have never been written
// are initialised, with sample data when seeding is enabled. Calling Load
// again never reseeds or duplicates records.
func (p *Provider) Load(ctx context.Context) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	for _, t := range p.tables {
		if err := t.load(ctx, p.seed); err != nil {
			return fmt.Errorf("load %s: %w", t.name(), err)
		}
	}
	slog.Info("Data store loaded", "tables", len(p.tables), "seed", p.seed)
	return nil
}

// Resync reloads every table whose stored version moved past memory.
func (p *Provider) Resync(ctx context.Context) (int, error) {
	changed := 0
	for _, t := range p.tables {
		ok, err := t.reload(ctx)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
			p.publish(ChangeEvent{Table: t.name(), Type: ChangeReload})
		}
	}
	return changed, nil
}

// Watch applies changes written by other processes until ctx is cancelled.
// It returns once the store's change stream is established.
func (p *Provider) Watch(ctx context.Context) error {
	changes, err := p.store.Watch(ctx)
	if err != nil {
		return err
	}
	byKey := make(map[string]syncer, len(p.tables))
	for _, t := range p.tables {
		byKey[t.storeKey()] = t
	}

	go func() {
		for c := range changes {
			t, ok := byKey[c.Key]
			if !ok {
				continue
			}
			changed, err := t.reload(ctx)
			if err != nil {
				slog.Error("Failed to reload table after external change", "table", t.name(), "error", err)
				continue
			}
			if changed {
				slog.Debug("Table reloaded", "table", t.name())
				p.publish(ChangeEvent{Table: t.name(), Type: ChangeReload})
			}
		}
	}()
	return nil
}

// Subscribe delivers change events of the given tables, or of every table
// when none are given.
func (p *Provider) Subscribe(tables ...string) (chan sse.Event, func()) {
	if len(tables) == 0 {
		tables = p.Tables()
	}
	return p.hub.Subscribe(tables...)
}

func (p *Provider) publish(ev ChangeEvent) {
	p.hub.Publish(ev.Table, sse.Event{Event: string(ev.Type), Data: ev})
}

// Snapshot is a consistent-per-table copy of every collection.
type Snapshot struct {
	Employees          []employee.Employee      `json:"employees"`
	Attendance         []attendance.Attendance  `json:"attendance"`
	Leaves             []leave.LeaveRequest     `json:"leaves"`
	Payroll            []payroll.PayrollRecord  `json:"payroll"`
	ReceiptPayments    []finance.ReceiptPayment `json:"receiptPayments"`
	PerformanceReviews []performance.Review     `json:"performanceReviews"`
	IPWhitelist        []network.WhitelistEntry `json:"ipWhitelist"`
	Documents          []employee.Document      `json:"documents"`
}

func (p *Provider) Snapshot() Snapshot {
	return Snapshot{
		Employees:          p.employees.List(),
		Attendance:         p.attendance.List(),
		Leaves:             p.leaves.List(),
		Payroll:            p.payroll.List(),
		ReceiptPayments:    p.finance.List(),
		PerformanceReviews: p.reviews.List(),
		IPWhitelist:        p.ipWhitelist.List(),
		Documents:          p.documents.List(),
	}
}
