package domain

import (
	"strings"

	dErrors "roster/pkg/domain-errors"
	"roster/pkg/document"
)

// ContractType is the hiring arrangement of a vendor.
// Invariant: the value must be one of the supported contract types.
//
// Construct via ParseContractType at trust boundaries; direct casting bypasses
// validation.
type ContractType string

const (
	ContractTypeCLT         ContractType = "CLT"
	ContractTypePJ          ContractType = "PJ"
	ContractTypeOutsourcing ContractType = "OUTSOURCING"
)

type contractRules struct {
	kind   document.Kind
	suffix string
}

// contractTypes is the single source of truth for supported contract types.
var contractTypes = map[ContractType]contractRules{
	ContractTypeCLT:         {kind: document.KindCPF, suffix: "CLT"},
	ContractTypePJ:          {kind: document.KindCNPJ, suffix: "PJ"},
	ContractTypeOutsourcing: {kind: document.KindCPF, suffix: "OUT"},
}

// ParseContractType constructs a ContractType from external input.
// Matching is case-insensitive.
func ParseContractType(s string) (ContractType, error) {
	ct := ContractType(strings.ToUpper(strings.TrimSpace(s)))
	if ct == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "contract type is required")
	}
	if _, ok := contractTypes[ct]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid contract type: "+s)
	}
	return ct, nil
}

// IsValid reports whether ct is a supported contract type.
func (ct ContractType) IsValid() bool {
	_, ok := contractTypes[ct]
	return ok
}

// DocumentKind is the tax-id kind a vendor with this contract must present.
// Unknown contract types require a CPF.
func (ct ContractType) DocumentKind() document.Kind {
	if r, ok := contractTypes[ct]; ok {
		return r.kind
	}
	return document.KindCPF
}

// Suffix is the registration code suffix for this contract type.
func (ct ContractType) Suffix() string {
	return contractTypes[ct].suffix
}

func (ct ContractType) String() string {
	return string(ct)
}
