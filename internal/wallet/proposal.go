package wallet

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-walletcore/pkg/crypto"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/fragment"
	"github.com/Klingon-tech/klingnet-walletcore/pkg/types"
)

// MaxVoteOptions is the largest number of choices a proposal may offer.
const MaxVoteOptions = 128

// VoteEncryptionKeyHRP prefixes bech32-encoded vote encryption keys.
const VoteEncryptionKeyHRP = "votepk"

// Proposal identifies one proposal of a vote plan. It is immutable.
type Proposal struct {
	votePlan      types.Hash
	index         uint8
	options       uint8
	payload       fragment.PayloadType
	encryptionKey [crypto.SealKeySize]byte
}

// NewPublicProposal describes a proposal whose choices are cast in the clear.
func NewPublicProposal(votePlan types.Hash, index, options uint8) (*Proposal, error) {
	if err := checkOptions(options); err != nil {
		return nil, err
	}
	return &Proposal{
		votePlan: votePlan,
		index:    index,
		options:  options,
		payload:  fragment.PayloadPublic,
	}, nil
}

// NewPrivateProposal describes a proposal whose choices are sealed to
// encryptionKey, a 32-byte X25519 public key.
func NewPrivateProposal(votePlan types.Hash, index, options uint8, encryptionKey []byte) (*Proposal, error) {
	if err := checkOptions(options); err != nil {
		return nil, err
	}
	if len(encryptionKey) != crypto.SealKeySize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidVoteEncryptionKey, len(encryptionKey))
	}
	if bytes.Equal(encryptionKey, make([]byte, crypto.SealKeySize)) {
		return nil, fmt.Errorf("%w: all zero", ErrInvalidVoteEncryptionKey)
	}
	p := &Proposal{
		votePlan: votePlan,
		index:    index,
		options:  options,
		payload:  fragment.PayloadPrivate,
	}
	copy(p.encryptionKey[:], encryptionKey)
	return p, nil
}

// ParseVoteEncryptionKey accepts a bech32 "votepk1..." string or 64 hex
// characters.
func ParseVoteEncryptionKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(strings.ToLower(s), VoteEncryptionKeyHRP+"1") {
		hrp, data, err := types.Bech32Decode(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidVoteEncryptionKey, err)
		}
		if hrp != VoteEncryptionKeyHRP {
			return nil, fmt.Errorf("%w: prefix %q", ErrInvalidVoteEncryptionKey, hrp)
		}
		return data, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVoteEncryptionKey, err)
	}
	return b, nil
}

func checkOptions(options uint8) error {
	if options == 0 || options > MaxVoteOptions {
		return fmt.Errorf("%w: %d options, want 1..%d", ErrInvalidVoteOption, options, MaxVoteOptions)
	}
	return nil
}

// VotePlan returns the vote plan id.
func (p *Proposal) VotePlan() types.Hash { return p.votePlan }

// Index returns the proposal index within the plan.
func (p *Proposal) Index() uint8 { return p.index }

// Options returns the number of choices.
func (p *Proposal) Options() uint8 { return p.options }

// PayloadType returns whether votes are public or private.
func (p *Proposal) PayloadType() fragment.PayloadType { return p.payload }

// EncryptionKey returns a copy of the vote encryption key, nil for public
// proposals.
func (p *Proposal) EncryptionKey() []byte {
	if p.payload != fragment.PayloadPrivate {
		return nil
	}
	return append([]byte(nil), p.encryptionKey[:]...)
}

// voteCast builds the certificate for choice.
func (p *Proposal) voteCast(choice uint8) (*fragment.VoteCast, error) {
	v := &fragment.VoteCast{
		VotePlan:      p.votePlan,
		ProposalIndex: p.index,
		PayloadType:   p.payload,
	}
	if p.payload == fragment.PayloadPublic {
		v.Choice = choice
		return v, nil
	}
	// Private choices are a one-hot vector over the options.
	vec := make([]byte, p.options)
	vec[choice] = 1
	sealed, err := crypto.Seal(p.encryptionKey[:], vec)
	if err != nil {
		return nil, fmt.Errorf("seal vote: %w", err)
	}
	v.Sealed = sealed
	return v, nil
}
