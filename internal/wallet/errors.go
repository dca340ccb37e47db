package wallet

import "errors"

// Wallet errors.
var (
	ErrInvalidMnemonic          = errors.New("invalid mnemonic")
	ErrUnsupportedWordCount     = errors.New("unsupported mnemonic word count")
	ErrInvalidKey               = errors.New("invalid key")
	ErrNoFundsFound             = errors.New("no funds found in block0")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrInvalidVoteOption        = errors.New("invalid vote option")
	ErrInvalidVoteEncryptionKey = errors.New("invalid vote encryption key")
	ErrIndexOutOfRange          = errors.New("index out of range")
	ErrCounterExhausted         = errors.New("spending counter exhausted")
	ErrUnknownKeyIndex          = errors.New("unknown key index")
	ErrNoExtendedKey            = errors.New("wallet has no extended key")
)
