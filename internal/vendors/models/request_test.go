package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "roster/pkg/domain-errors"
)

func TestCreateVendorRequest_Normalize(t *testing.T) {
	req := CreateVendorRequest{
		Name:         "  Ana  ",
		Document:     " 111.444.777-35 ",
		Email:        " ANA@Example.COM",
		ContractType: " outsourcing ",
		BranchID:     " 2 ",
	}
	req.Normalize()

	assert.Equal(t, "Ana", req.Name)
	assert.Equal(t, "111.444.777-35", req.Document)
	assert.Equal(t, "ana@example.com", req.Email)
	assert.Equal(t, "OUTSOURCING", req.ContractType)
	assert.Equal(t, "2", req.BranchID)
}

func TestCreateVendorRequest_Validate(t *testing.T) {
	require.NoError(t, validRequest().Validate())

	tests := []struct {
		name    string
		mutate  func(*CreateVendorRequest)
		message string
	}{
		{"missing name", func(r *CreateVendorRequest) { r.Name = " " }, "name is required"},
		{"long name", func(r *CreateVendorRequest) { r.Name = strings.Repeat("a", 201) }, "200 characters"},
		{"missing email", func(r *CreateVendorRequest) { r.Email = "" }, "email is required"},
		{"bad email", func(r *CreateVendorRequest) { r.Email = "not-an-email" }, "email is invalid"},
		{"display-name email", func(r *CreateVendorRequest) { r.Email = "Ana <ana@example.com>" }, "email is invalid"},
		{"missing contract", func(r *CreateVendorRequest) { r.ContractType = "" }, "contract type is required"},
		{"unknown contract", func(r *CreateVendorRequest) { r.ContractType = "INTERN" }, "invalid contract type"},
		{"missing branch", func(r *CreateVendorRequest) { r.BranchID = "" }, "branch id is required"},
		{"missing document", func(r *CreateVendorRequest) { r.Document = "--" }, "document is required"},
		{"cpf length", func(r *CreateVendorRequest) { r.Document = "1234567890" }, "CPF must have 11 digits"},
		{"cnpj length", func(r *CreateVendorRequest) { r.ContractType = "PJ" }, "CNPJ must have 14 digits"},
		{"bad birth date", func(r *CreateVendorRequest) { r.BirthDate = "17/05/1990" }, "YYYY-MM-DD"},
		{"future birth date", func(r *CreateVendorRequest) {
			r.BirthDate = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		}, "future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()

			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Contains(t, dErrors.PublicMessage(err), tt.message)
		})
	}
}

func TestCreateVendorRequest_ChecksumIsNotPartOfShape(t *testing.T) {
	req := validRequest()
	req.Document = "11111111111"
	assert.NoError(t, req.Validate())
}

func TestCreateVendorRequest_OptionalBirthDate(t *testing.T) {
	req := validRequest()
	req.BirthDate = ""
	bd, err := req.ParsedBirthDate()
	require.NoError(t, err)
	assert.Nil(t, bd)
}
