package domain

import "time"

// AccountType classifies a ledger bucket.
type AccountType string

const (
	AccountCash   AccountType = "CASH"
	AccountBank   AccountType = "BANK"
	AccountIncome AccountType = "INCOME"
	AccountClient AccountType = "CLIENT"
)

// System accounts provisioned for every user.
const (
	CashAccountName   = "CAJA"
	IncomeAccountName = "INGRESOS HONORARIOS"
)

// SystemAccounts lists the accounts every user must own, with their
// canonical type.
var SystemAccounts = []struct {
	Name string
	Type AccountType
}{
	{CashAccountName, AccountCash},
	{IncomeAccountName, AccountIncome},
}

// Valid reports whether t is one of the four account kinds.
func (t AccountType) Valid() bool {
	switch t {
	case AccountCash, AccountBank, AccountIncome, AccountClient:
		return true
	}
	return false
}

// Renamable reports whether accounts of this kind may be renamed by users.
func (t AccountType) Renamable() bool {
	return t == AccountCash || t == AccountBank
}

// Account is a named ledger bucket owned by one user.
type Account struct {
	ID        string
	UserID    string
	Name      string
	Type      AccountType
	IsActive  bool
	ClientID  *string // set iff Type == AccountClient
	CreatedAt time.Time
}

// IsSystem reports whether a is one of the provisioned system accounts.
func (a *Account) IsSystem() bool {
	return a.Name == CashAccountName || a.Name == IncomeAccountName
}

// CheckDeactivate returns a validation error when a cannot be soft-deleted.
func (a *Account) CheckDeactivate() error {
	switch {
	case a.Type == AccountClient || a.Type == AccountIncome:
		return Validation("CLIENT and INCOME accounts cannot be deactivated")
	case a.Name == CashAccountName:
		return Validation("CAJA is a system account and cannot be deactivated")
	}
	return nil
}

// CheckRename returns a validation error when a cannot be renamed.
func (a *Account) CheckRename() error {
	switch {
	case !a.Type.Renamable():
		return Validation("CLIENT and INCOME accounts cannot be renamed")
	case a.Name == CashAccountName:
		return Validation("CAJA is a system account and cannot be renamed")
	}
	return nil
}
