package tx

import "github.com/Klingon-tech/klingnet-walletcore/pkg/types"

// CertificateKind selects which per-certificate fee applies.
type CertificateKind uint8

const (
	NoCertificate CertificateKind = iota
	CertPoolRegistration
	CertStakeDelegation
	CertOwnerStakeDelegation
	CertVotePlan
	CertVoteCast
)

// PerCertificateFees overrides the flat certificate fee for staking certificates.
// A zero entry falls back to LinearFee.Certificate.
type PerCertificateFees struct {
	PoolRegistration     types.Value `json:"pool_registration" yaml:"pool_registration"`
	StakeDelegation      types.Value `json:"stake_delegation" yaml:"stake_delegation"`
	OwnerStakeDelegation types.Value `json:"owner_stake_delegation" yaml:"owner_stake_delegation"`
}

// PerVoteCertificateFees overrides the flat certificate fee for vote certificates.
// A zero entry falls back to LinearFee.Certificate.
type PerVoteCertificateFees struct {
	VotePlan types.Value `json:"vote_plan" yaml:"vote_plan"`
	VoteCast types.Value `json:"vote_cast" yaml:"vote_cast"`
}

// LinearFee is the chain fee policy:
//
//	fee = constant + coefficient * (inputs + outputs) + certificate fee
type LinearFee struct {
	Constant       types.Value            `json:"constant" yaml:"constant"`
	Coefficient    types.Value            `json:"coefficient" yaml:"coefficient"`
	Certificate    types.Value            `json:"certificate" yaml:"certificate"`
	PerCertificate PerCertificateFees     `json:"per_certificate_fees" yaml:"per_certificate_fees"`
	PerVote        PerVoteCertificateFees `json:"per_vote_certificate_fees" yaml:"per_vote_certificate_fees"`
}

// CertificateFee returns the fee for one certificate of the given kind.
func (f LinearFee) CertificateFee(kind CertificateKind) types.Value {
	var specific types.Value
	switch kind {
	case NoCertificate:
		return 0
	case CertPoolRegistration:
		specific = f.PerCertificate.PoolRegistration
	case CertStakeDelegation:
		specific = f.PerCertificate.StakeDelegation
	case CertOwnerStakeDelegation:
		specific = f.PerCertificate.OwnerStakeDelegation
	case CertVotePlan:
		specific = f.PerVote.VotePlan
	case CertVoteCast:
		specific = f.PerVote.VoteCast
	}
	if specific != 0 {
		return specific
	}
	return f.Certificate
}

// Calculate returns the fee for a transaction shape. Arithmetic saturates
// at the maximum value.
func (f LinearFee) Calculate(inputs, outputs int, cert CertificateKind) types.Value {
	ios := types.Value(inputs + outputs)
	var perIO types.Value
	if ios != 0 && f.Coefficient > types.Value(^uint64(0))/ios {
		perIO = types.Value(^uint64(0))
	} else {
		perIO = f.Coefficient * ios
	}
	return f.Constant.SaturatingAdd(perIO).SaturatingAdd(f.CertificateFee(cert))
}
