package finance

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeReceipt Type = "receipt"
	TypePayment Type = "payment"
)

func (t Type) IsValid() bool {
	return t == TypeReceipt || t == TypePayment
}

// ReceiptPayment is one cash movement. Period is derived from Date as
// "Month Year" and is what read models group by.
type ReceiptPayment struct {
	ID          string     `json:"id"`
	Type        Type       `json:"type"`
	AccountName string     `json:"accountName"`
	BankName    string     `json:"bankName,omitempty"`
	Amount      float64    `json:"amount"`
	Date        string     `json:"date"`
	Period      string     `json:"period"`
	Description string     `json:"description"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (r ReceiptPayment) RecordID() string { return r.ID }

// DisplayAccount renders "Account (Bank)" when a bank is set.
func (r ReceiptPayment) DisplayAccount() string {
	if r.BankName == "" {
		return r.AccountName
	}
	return fmt.Sprintf("%s (%s)", r.AccountName, r.BankName)
}

// PeriodOf formats a date as "Month Year".
func PeriodOf(date time.Time) string {
	return fmt.Sprintf("%s %d", date.Month().String(), date.Year())
}
