package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/pkg/document"
	"roster/pkg/domain"
	dErrors "roster/pkg/domain-errors"
)

func validRequest() CreateVendorRequest {
	return CreateVendorRequest{
		Name:         "Maria Souza",
		Document:     "111.444.777-35",
		Email:        "  Maria@Example.com ",
		ContractType: "clt",
		BranchID:     "1",
		BirthDate:    "1990-05-17",
	}
}

func TestRegistrationCode(t *testing.T) {
	tests := []struct {
		seq      int64
		contract domain.ContractType
		want     string
	}{
		{1, domain.ContractTypeCLT, "00000001-CLT"},
		{42, domain.ContractTypePJ, "00000042-PJ"},
		{1234, domain.ContractTypeOutsourcing, "00001234-OUT"},
		{123456789, domain.ContractTypeCLT, "123456789-CLT"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, RegistrationCode(tt.seq, tt.contract))
		})
	}
}

func TestNewVendor(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id := domain.NewVendorID()

	v, err := NewVendor(id, 1, validRequest(), now)
	require.NoError(t, err)

	assert.Equal(t, id, v.ID)
	assert.Equal(t, "00000001-CLT", v.Registration)
	assert.Equal(t, "11144477735", v.Document)
	assert.Equal(t, document.KindCPF, v.DocumentKind)
	assert.Equal(t, domain.ContractTypeCLT, v.ContractType)
	assert.Equal(t, "maria@example.com", v.Email)
	assert.Equal(t, domain.BranchID("1"), v.BranchID)
	require.NotNil(t, v.BirthDate)
	assert.Equal(t, 1990, v.BirthDate.Year())
	assert.Equal(t, now, v.CreatedAt)
	assert.Equal(t, now, v.UpdatedAt)
}

func TestNewVendor_PJUsesCNPJ(t *testing.T) {
	req := validRequest()
	req.ContractType = "PJ"
	req.Document = "11.222.333/0001-81"

	v, err := NewVendor(domain.NewVendorID(), 7, req, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "00000007-PJ", v.Registration)
	assert.Equal(t, document.KindCNPJ, v.DocumentKind)
}

func TestNewVendor_Invariants(t *testing.T) {
	now := time.Now()

	t.Run("invalid checksum", func(t *testing.T) {
		req := validRequest()
		req.Document = "11111111111"
		_, err := NewVendor(domain.NewVendorID(), 1, req, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, dErrors.PublicMessage(err), "CPF")
	})

	t.Run("document kind must match contract", func(t *testing.T) {
		req := validRequest()
		req.ContractType = "PJ"
		_, err := NewVendor(domain.NewVendorID(), 1, req, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("nil id", func(t *testing.T) {
		_, err := NewVendor(domain.VendorID{}, 1, validRequest(), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("non-positive sequence", func(t *testing.T) {
		_, err := NewVendor(domain.NewVendorID(), 0, validRequest(), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
