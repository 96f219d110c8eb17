package finance

import "github.com/cmlabs-hris/hrms-backend-go/internal/pkg/collection"

type ReceiptPaymentRepository interface {
	collection.Repository[ReceiptPayment]
}
