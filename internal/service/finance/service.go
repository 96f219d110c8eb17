package finance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/finance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type FinanceServiceImpl struct {
	records finance.ReceiptPaymentRepository
	clock   clock.Clock
}

func NewFinanceService(records finance.ReceiptPaymentRepository, clk clock.Clock) finance.FinanceService {
	return &FinanceServiceImpl{records: records, clock: clk}
}

func (s *FinanceServiceImpl) requireManage(ctx context.Context) (user.Actor, error) {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.Can(user.PermissionFinanceManage) {
		return user.Actor{}, finance.ErrEditForbidden
	}
	return actor, nil
}

func (s *FinanceServiceImpl) requireView(ctx context.Context) error {
	actor, err := user.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	if !actor.Can(user.PermissionFinanceView) {
		return user.ErrInsufficientPermissions
	}
	return nil
}

func periodOf(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return finance.PeriodOf(t), nil
}

func (s *FinanceServiceImpl) Create(ctx context.Context, req finance.CreateRecordRequest) (finance.ReceiptPayment, error) {
	actor, err := s.requireManage(ctx)
	if err != nil {
		return finance.ReceiptPayment{}, err
	}
	period, err := periodOf(req.Date)
	if err != nil {
		return finance.ReceiptPayment{}, err
	}

	record := finance.ReceiptPayment{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Type:        req.Type,
		AccountName: req.AccountName,
		BankName:    req.BankName,
		Amount:      req.Amount,
		Date:        req.Date,
		Period:      period,
		Description: req.Description,
		CreatedBy:   actor.Name,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.records.Add(ctx, record); err != nil {
		return finance.ReceiptPayment{}, fmt.Errorf("failed to create record: %w", err)
	}

	slog.Info("Finance record created", "record_id", record.ID, "type", record.Type, "period", period)
	return record, nil
}

// Update applies the set fields and re-derives the period when the date moves.
func (s *FinanceServiceImpl) Update(ctx context.Context, req finance.UpdateRecordRequest) (finance.ReceiptPayment, error) {
	if _, err := s.requireManage(ctx); err != nil {
		return finance.ReceiptPayment{}, err
	}
	record, ok := s.records.Get(req.ID)
	if !ok {
		return finance.ReceiptPayment{}, finance.ErrRecordNotFound
	}

	if req.Type != nil {
		record.Type = *req.Type
	}
	if req.AccountName != nil {
		record.AccountName = *req.AccountName
	}
	if req.BankName != nil {
		record.BankName = *req.BankName
	}
	if req.Amount != nil {
		record.Amount = *req.Amount
	}
	if req.Description != nil {
		record.Description = *req.Description
	}
	if req.Date != nil {
		period, err := periodOf(*req.Date)
		if err != nil {
			return finance.ReceiptPayment{}, err
		}
		record.Date, record.Period = *req.Date, period
	}
	now := s.clock.Now()
	record.UpdatedAt = &now

	if err := s.records.Update(ctx, record); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return finance.ReceiptPayment{}, finance.ErrRecordNotFound
		}
		return finance.ReceiptPayment{}, fmt.Errorf("failed to update record: %w", err)
	}
	return record, nil
}

func (s *FinanceServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := s.requireManage(ctx); err != nil {
		return err
	}
	if err := s.records.Delete(ctx, id); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return finance.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	slog.Info("Finance record deleted", "record_id", id)
	return nil
}

func (s *FinanceServiceImpl) Get(ctx context.Context, id string) (finance.ReceiptPayment, error) {
	if err := s.requireView(ctx); err != nil {
		return finance.ReceiptPayment{}, err
	}
	record, ok := s.records.Get(id)
	if !ok {
		return finance.ReceiptPayment{}, finance.ErrRecordNotFound
	}
	return record, nil
}

func (s *FinanceServiceImpl) List(ctx context.Context, filter finance.RecordFilter) ([]finance.ReceiptPayment, error) {
	if err := s.requireView(ctx); err != nil {
		return nil, err
	}
	return collection.Filter(s.records.List(), func(r finance.ReceiptPayment) bool {
		if filter.Type != "" && r.Type != filter.Type {
			return false
		}
		return filter.Period == "" || r.Period == filter.Period
	}), nil
}

func (s *FinanceServiceImpl) byTypeAndPeriod(t finance.Type, period string) []finance.ReceiptPayment {
	return collection.Filter(s.records.List(), func(r finance.ReceiptPayment) bool {
		return r.Type == t && (period == "" || r.Period == period)
	})
}

func (s *FinanceServiceImpl) ReceiptsByPeriod(period string) []finance.ReceiptPayment {
	return s.byTypeAndPeriod(finance.TypeReceipt, period)
}

func (s *FinanceServiceImpl) PaymentsByPeriod(period string) []finance.ReceiptPayment {
	return s.byTypeAndPeriod(finance.TypePayment, period)
}

func (s *FinanceServiceImpl) TotalReceipts() float64 {
	return sum(s.ReceiptsByPeriod("")).InexactFloat64()
}

func (s *FinanceServiceImpl) TotalPayments() float64 {
	return sum(s.PaymentsByPeriod("")).InexactFloat64()
}

// Totals sums receipts and payments for period, or across all periods when
// period is empty.
func (s *FinanceServiceImpl) Totals(period string) finance.Totals {
	receipts := sum(s.ReceiptsByPeriod(period))
	payments := sum(s.PaymentsByPeriod(period))
	return finance.Totals{
		Period:   period,
		Receipts: receipts.InexactFloat64(),
		Payments: payments.InexactFloat64(),
		Balance:  receipts.Sub(payments).InexactFloat64(),
	}
}

func sum(records []finance.ReceiptPayment) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(decimal.NewFromFloat(r.Amount))
	}
	return total
}
