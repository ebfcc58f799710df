package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "roster/pkg/domain-errors"
	"roster/pkg/document"
)

func TestParseContractType(t *testing.T) {
	t.Run("accepts known values case-insensitively", func(t *testing.T) {
		ct, err := ParseContractType(" pj ")
		require.NoError(t, err)
		assert.Equal(t, ContractTypePJ, ct)
	})

	t.Run("rejects empty and unknown values", func(t *testing.T) {
		for _, in := range []string{"", "FREELANCE"} {
			_, err := ParseContractType(in)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		}
	})
}

func TestContractTypeRules(t *testing.T) {
	tests := []struct {
		ct     ContractType
		kind   document.Kind
		suffix string
	}{
		{ContractTypeCLT, document.KindCPF, "CLT"},
		{ContractTypePJ, document.KindCNPJ, "PJ"},
		{ContractTypeOutsourcing, document.KindCPF, "OUT"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ct), func(t *testing.T) {
			assert.True(t, tt.ct.IsValid())
			assert.Equal(t, tt.kind, tt.ct.DocumentKind())
			assert.Equal(t, tt.suffix, tt.ct.Suffix())
		})
	}
}
