package finance

import "context"

type FinanceService interface {
	Create(ctx context.Context, req CreateRecordRequest) (ReceiptPayment, error)
	Update(ctx context.Context, req UpdateRecordRequest) (ReceiptPayment, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (ReceiptPayment, error)
	List(ctx context.Context, filter RecordFilter) ([]ReceiptPayment, error)

	// Read models
	ReceiptsByPeriod(period string) []ReceiptPayment
	PaymentsByPeriod(period string) []ReceiptPayment
	TotalReceipts() float64
	TotalPayments() float64
	Totals(period string) Totals
}
