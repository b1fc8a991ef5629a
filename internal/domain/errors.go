package domain

import "errors"

// Validation
var (
	ErrMessageTooLong = errors.New("the message is too long")
	ErrAmountOverflow = errors.New("amount overflows the smallest-unit range")
	ErrInvalidAddress = errors.New("invalid address")
)

// Policy
var (
	ErrMaxDailyBottleExceeded  = errors.New("the maximum number of bottles that can be thrown or retrieved each day has been exceeded")
	ErrBottleAlreadyRetrieved  = errors.New("this bottle has already been retrieved")
	ErrCannotRetrieveOwnBottle = errors.New("the same person cannot retrieve their own bottle")
	ErrAssetAccountMismatch    = errors.New("asset account does not match the bottle")
)

// Records and ledger
var (
	ErrBottleExists         = errors.New("bottle already exists")
	ErrBottleNotFound       = errors.New("bottle not found")
	ErrRecordExists         = errors.New("record already exists")
	ErrRecordNotFound       = errors.New("record not found")
	ErrDiscriminator        = errors.New("record discriminator mismatch")
	ErrCorruptRecord        = errors.New("corrupt record")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrUnauthorized         = errors.New("missing required signature")
	ErrDuplicateTransaction = errors.New("transaction already processed")
)

// Wallets
var (
	ErrWalletNotFound = errors.New("wallet not found")
	ErrWalletExists   = errors.New("wallet already exists")
	ErrKeyNotFound    = errors.New("key not found")
)
