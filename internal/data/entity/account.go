package entity

// AccountType discriminates the two identity populations. They live in
// separate tables but share the same change-verification rules.
type AccountType string

const (
	AccountTypeOwner    AccountType = "owner"
	AccountTypeCustomer AccountType = "customer"
)
