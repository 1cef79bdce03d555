package model

import "slices"

const (
	RoleVictim      = "victim"
	RolePerpetrator = "perpetrator"
	RoleWitness     = "witness"
	RoleComplainant = "complainant"
	RoleDefendant   = "defendant"
	RoleSuspect     = "suspect"

	RoleDebtor           = "debtor"
	RoleCreditor         = "creditor"
	RoleContractualParty = "contractual_party"
	RoleFiduciary        = "fiduciary"
	RoleFraudster        = "fraudster"
	RoleBeneficiary      = "beneficiary"
	RoleTrustee          = "trustee"
)

type RoleDomain string

const (
	DomainCriminal   RoleDomain = "criminal"
	DomainCommercial RoleDomain = "commercial"
)

var (
	criminalRoles   = []string{RoleVictim, RolePerpetrator, RoleWitness, RoleComplainant, RoleDefendant, RoleSuspect}
	commercialRoles = []string{RoleDebtor, RoleCreditor, RoleContractualParty, RoleFiduciary, RoleFraudster, RoleBeneficiary, RoleTrustee}
)

// Roles returns the closed role set of a domain in declared order.
func (d RoleDomain) Roles() []string {
	switch d {
	case DomainCriminal:
		return slices.Clone(criminalRoles)
	case DomainCommercial:
		return slices.Clone(commercialRoles)
	default:
		return nil
	}
}

func (d RoleDomain) Prefix() string {
	return string(d) + "_"
}

func (d RoleDomain) Has(role string) bool {
	return slices.Contains(d.Roles(), role)
}
