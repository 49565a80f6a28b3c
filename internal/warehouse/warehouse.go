// Package warehouse defines the record shape exported by the external
// analytical warehouse. The warehouse is a collaborator reached over an
// unreliable network path; every read of it must go through the warehouse
// circuit breaker.
package warehouse

// Record is one raw client row as exported by the warehouse. Columns keep
// their upstream names and loose typing; normalization into the internal
// client schema happens in the sync transformer.
type Record struct {
	ClientCode    string
	FullName      string
	PensionNumber string
	// BirthDate is either a native time.Time or an ISO-formatted string,
	// depending on which warehouse export produced the row. Nil when absent.
	BirthDate    any
	PhoneNumber  string
	MobileNumber string

	PensionTypeCode   string
	PensionerTypeCode string
	ProductCode       string
	BranchCode        string
	PARStatusCode     string
	AccountTypeCode   string

	OverdueAmount float64
	LoanStatus    string
}
