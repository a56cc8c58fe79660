package countytax

import (
	"time"

	"github.com/shopspring/decimal"
)

// InputKind names the identifying fields a county search can accept.
type InputKind string

const (
	InputParcelID  InputKind = "parcel_id"
	InputOwnerName InputKind = "owner_name"
	InputAddress   InputKind = "address"
)

// ParcelInput identifies one parcel to look up. At least one of
// ParcelID, OwnerName or Address must be set, and every set field must
// be in the target county's supported set.
type ParcelInput struct {
	County    string
	Platform  string
	ParcelID  string
	OwnerName string
	Address   string
}

// Kinds returns the identifying kinds present on the input, in the
// fixed parcel_id, owner_name, address order.
func (p ParcelInput) Kinds() []InputKind {
	var kinds []InputKind
	if p.ParcelID != "" {
		kinds = append(kinds, InputParcelID)
	}
	if p.OwnerName != "" {
		kinds = append(kinds, InputOwnerName)
	}
	if p.Address != "" {
		kinds = append(kinds, InputAddress)
	}
	return kinds
}

func (p ParcelInput) Value(kind InputKind) string {
	switch kind {
	case InputParcelID:
		return p.ParcelID
	case InputOwnerName:
		return p.OwnerName
	case InputAddress:
		return p.Address
	}
	return ""
}

type DelinquentStatus string

const (
	StatusDelinquent DelinquentStatus = "delinquent"
	StatusPaid       DelinquentStatus = "paid"
	StatusUnknown    DelinquentStatus = "unknown"
)

// Installment is one of the up-to-two payment slots on a tax bill. A
// present amount with a missing due date is a legal state.
type Installment struct {
	Amount  *decimal.Decimal
	DueDate *time.Time
}

// YearAmount is one (tax year, amount) pair read from a history table.
type YearAmount struct {
	Year   int
	Amount decimal.Decimal
}

// ParcelTaxRecord is the denormalized result of one successful
// extraction attempt. nil monetary fields mean "not found on the
// page", never zero. Records are built once by Assemble and are not
// mutated afterwards.
type ParcelTaxRecord struct {
	County    string
	Platform  string
	ParcelID  string
	OwnerName string
	Address   string

	TaxYear int

	DelinquentStatus           DelinquentStatus
	DelinquentAmount           *decimal.Decimal
	DelinquentYears            []YearAmount
	DelinquentInstallmentCount *int

	PenaltiesAndInterest *decimal.Decimal
	CurrentYearTotalTax  *decimal.Decimal

	Installments [2]Installment
}

// delinquent iff a positive amount was found, paid iff the page
// explicitly said zero, unknown otherwise.
func deriveDelinquentStatus(amount *decimal.Decimal) DelinquentStatus {
	if amount == nil {
		return StatusUnknown
	}
	if amount.IsPositive() {
		return StatusDelinquent
	}
	return StatusPaid
}
