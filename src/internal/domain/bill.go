package domain

import "github.com/shopspring/decimal"

type ServiceType string

const (
	ServiceTypeWater       ServiceType = "WATER"
	ServiceTypeElectricity ServiceType = "ELECTRICITY"
)

func (t ServiceType) Valid() bool {
	return t == ServiceTypeWater || t == ServiceTypeElectricity
}

// MaxBillNumberLength bounds the bill reference stored in the description.
const MaxBillNumberLength = 50

type BillPayment struct {
	ServiceType ServiceType
	BillNumber  string
	Amount      decimal.Decimal
}
