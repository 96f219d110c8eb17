package finance

import (
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore/datastoretest"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/finance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type financeFixture struct {
	provider *datastore.Provider
	service  finance.FinanceService
}

func newFinanceFixture(t *testing.T) financeFixture {
	t.Helper()
	clk := datastoretest.NewClock()
	p := datastoretest.NewProvider(t, clk)
	return financeFixture{provider: p, service: NewFinanceService(p.ReceiptPayments(), clk)}
}

func TestFinanceService_Create_DerivesPeriod(t *testing.T) {
	// Setup
	f := newFinanceFixture(t)
	ctx := datastoretest.Ctx(datastoretest.Admin)

	// Act
	record, err := f.service.Create(ctx, finance.CreateRecordRequest{
		Type:        finance.TypePayment,
		AccountName: "Utilities",
		BankName:    "City Bank",
		Amount:      1250.5,
		Date:        "2024-02-29",
		Description: "Electricity",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "February 2024", record.Period)
	assert.Equal(t, "Admin User", record.CreatedBy)
	assert.Equal(t, "Utilities (City Bank)", record.DisplayAccount())
	assert.Len(t, f.service.PaymentsByPeriod("February 2024"), 1)
}

func TestFinanceService_Create_HRForbidden(t *testing.T) {
	f := newFinanceFixture(t)

	_, err := f.service.Create(datastoretest.Ctx(datastoretest.HR), finance.CreateRecordRequest{
		Type: finance.TypeReceipt, AccountName: "Cash", Amount: 10, Date: "2024-03-01", Description: "x",
	})

	assert.ErrorIs(t, err, finance.ErrEditForbidden)
}

func TestFinanceService_Update_MovesPeriod(t *testing.T) {
	f := newFinanceFixture(t)
	date := "2024-01-31"
	amount := 50000.0

	record, err := f.service.Update(datastoretest.Ctx(datastoretest.Admin), finance.UpdateRecordRequest{
		ID: "2", Date: &date, Amount: &amount,
	})

	require.NoError(t, err)
	assert.Equal(t, "January 2024", record.Period)
	assert.Equal(t, 50000.0, record.Amount)
	require.NotNil(t, record.UpdatedAt)
	assert.Empty(t, f.service.PaymentsByPeriod("March 2024"))
}

func TestFinanceService_Delete(t *testing.T) {
	f := newFinanceFixture(t)
	ctx := datastoretest.Ctx(datastoretest.Admin)

	require.NoError(t, f.service.Delete(ctx, "1"))

	assert.ErrorIs(t, f.service.Delete(ctx, "1"), finance.ErrRecordNotFound)
	assert.Zero(t, f.service.TotalReceipts())
}

func TestFinanceService_ReadAccess(t *testing.T) {
	f := newFinanceFixture(t)

	records, err := f.service.List(datastoretest.Ctx(datastoretest.HR), finance.RecordFilter{Type: finance.TypeReceipt})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = f.service.List(datastoretest.Ctx(datastoretest.Employee), finance.RecordFilter{})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = f.service.Get(datastoretest.Ctx(datastoretest.HR), "missing")
	assert.ErrorIs(t, err, finance.ErrRecordNotFound)
}

func TestFinanceService_Totals(t *testing.T) {
	f := newFinanceFixture(t)

	totals := f.service.Totals("March 2024")

	assert.Equal(t, 991626.61, totals.Receipts)
	assert.Equal(t, 45000.0, totals.Payments)
	assert.Equal(t, 946626.61, totals.Balance)
	assert.Equal(t, 991626.61, f.service.TotalReceipts())
	assert.Equal(t, finance.Totals{Period: "April 2024"}, f.service.Totals("April 2024"))
}
