package errors

// PostgreSQL Error Codes (SQLSTATE) used by the converter.
// Based on PostgreSQL error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html

// Class 01 - Warning
const (
	Warning = "01000"
)

// Class 08 - Connection Exception
const (
	ConnectionException                  = "08000"
	ConnectionFailure                    = "08006"
	SQLClientUnableToEstablishConnection = "08001"
)

// Class 0A - Feature Not Supported
const (
	FeatureNotSupported = "0A000"
)

// Class 22 - Data Exception
const (
	CharacterNotInRepertoire = "22021"
	InvalidParameterValue    = "22023"
)

// Class 42 - Syntax Error or Access Rule Violation
const (
	SyntaxError    = "42601"
	InvalidName    = "42602"
	UndefinedTable = "42P01"
)

// Class 53 - Insufficient Resources
const (
	OutOfMemory = "53200"
)

// Class 54 - Program Limit Exceeded
const (
	ProgramLimitExceeded = "54000"
	StatementTooComplex  = "54001"
)

// Class 57 - Operator Intervention
const (
	QueryCanceled = "57014"
)

// Class 58 - System Error
const (
	SystemError   = "58000"
	IOError       = "58030"
	UndefinedFile = "58P01"
)

// Class F0 - Configuration File Error
const (
	ConfigFileError = "F0000"
)

// Class XX - Internal Error
const (
	InternalError = "XX000"
	DataCorrupted = "XX001"
)
