package walletcore

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-walletcore/internal/cipher"
	"github.com/Klingon-tech/klingnet-walletcore/internal/handle"
	"github.com/Klingon-tech/klingnet-walletcore/internal/wallet"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/block0"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/settings"
)

// Result is the status code of a boundary operation. Zero is success.
type Result uint8

// Result codes.
const (
	Success                        Result = 0
	InvalidInput                   Result = 1
	InvalidMnemonic                Result = 2
	UnsupportedWordCount           Result = 3
	MalformedBlock0                Result = 4
	UnsupportedBlock0Version       Result = 5
	NoFundsFound                   Result = 6
	InsufficientFunds              Result = 7
	InvalidVoteOption              Result = 8
	IndexOutOfRange                Result = 9
	InvalidHandle                  Result = 10
	InvalidVoteEncryptionKey       Result = 11
	InvalidValidityDate            Result = 12
	SymmetricCipherError           Result = 13
	SymmetricCipherInvalidPassword Result = 14
	SpendingCounterExhausted       Result = 15
	Internal                       Result = 255
)

var resultNames = map[Result]string{
	Success:                        "success",
	InvalidInput:                   "invalid input",
	InvalidMnemonic:                "invalid mnemonic",
	UnsupportedWordCount:           "unsupported mnemonic word count",
	MalformedBlock0:                "malformed block0",
	UnsupportedBlock0Version:       "unsupported block0 version",
	NoFundsFound:                   "no funds found",
	InsufficientFunds:              "insufficient funds",
	InvalidVoteOption:              "invalid vote option",
	IndexOutOfRange:                "index out of range",
	InvalidHandle:                  "invalid handle",
	InvalidVoteEncryptionKey:       "invalid vote encryption key",
	InvalidValidityDate:            "invalid transaction validity date",
	SymmetricCipherError:           "symmetric cipher error",
	SymmetricCipherInvalidPassword: "symmetric cipher invalid password",
	SpendingCounterExhausted:       "spending counter exhausted",
	Internal:                       "internal error",
}

// String returns a short description of the code.
func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("result(%d)", uint8(r))
}

// Error makes a non-success Result usable as an error.
func (r Result) Error() string {
	return r.String()
}

// Err returns nil for Success and r otherwise.
func (r Result) Err() error {
	if r == Success {
		return nil
	}
	return r
}

// ErrInvalidInput marks caller mistakes that have no more specific code.
var ErrInvalidInput = errors.New("invalid input")

// codes is checked in order; the first match wins.
var codes = []struct {
	err  error
	code Result
}{
	{wallet.ErrUnsupportedWordCount, UnsupportedWordCount},
	{wallet.ErrInvalidMnemonic, InvalidMnemonic},
	{block0.ErrUnsupportedBlock0Version, UnsupportedBlock0Version},
	{block0.ErrMalformedBlock0, MalformedBlock0},
	{wallet.ErrNoFundsFound, NoFundsFound},
	{wallet.ErrInsufficientFunds, InsufficientFunds},
	{wallet.ErrCounterExhausted, SpendingCounterExhausted},
	{wallet.ErrInvalidVoteOption, InvalidVoteOption},
	{wallet.ErrIndexOutOfRange, IndexOutOfRange},
	{handle.ErrInvalidHandle, InvalidHandle},
	{wallet.ErrInvalidVoteEncryptionKey, InvalidVoteEncryptionKey},
	{settings.ErrInvalidValidityDate, InvalidValidityDate},
	{settings.ErrBeforeBlock0, InvalidValidityDate},
	{cipher.ErrInvalidPassword, SymmetricCipherInvalidPassword},
	{cipher.ErrMalformed, SymmetricCipherError},
	{cipher.ErrEmpty, SymmetricCipherError},
	{wallet.ErrInvalidKey, InvalidInput},
	{settings.ErrInvalidSettings, InvalidInput},
	{ErrInvalidInput, InvalidInput},
}

// CodeOf maps an error to its result code. Unrecognised errors are Internal.
func CodeOf(err error) Result {
	if err == nil {
		return Success
	}
	var r Result
	if errors.As(err, &r) {
		return r
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return Internal
}
