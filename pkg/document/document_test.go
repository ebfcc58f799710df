package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid_CPF(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid digits only", "11144477735", true},
		{"valid formatted", "111.444.777-35", true},
		{"another valid", "52998224725", true},
		{"wrong first check digit", "11144477745", false},
		{"wrong second check digit", "11144477736", false},
		{"too short", "1114447773", false},
		{"too long", "111444777350", false},
		{"empty", "", false},
		{"letters only", "abcdefghijk", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input, KindCPF))
		})
	}
}

func TestIsValid_CNPJ(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid digits only", "11222333000181", true},
		{"valid formatted", "11.222.333/0001-81", true},
		{"wrong first check digit", "11222333000191", false},
		{"wrong second check digit", "11222333000182", false},
		{"cpf length", "11144477735", false},
		{"branch directory sample", "11222333000101", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input, KindCNPJ))
		})
	}
}

func TestIsValid_RepeatedDigitsRejectedForEitherKind(t *testing.T) {
	for d := '0'; d <= '9'; d++ {
		cpf := strings.Repeat(string(d), 11)
		cnpj := strings.Repeat(string(d), 14)
		for _, kind := range []Kind{KindCPF, KindCNPJ} {
			assert.False(t, IsValid(cpf, kind), "%s as %s", cpf, kind)
			assert.False(t, IsValid(cnpj, kind), "%s as %s", cnpj, kind)
		}
	}
}

func TestIsValid_KindMismatch(t *testing.T) {
	assert.False(t, IsValid("11144477735", KindCNPJ))
	assert.False(t, IsValid("11222333000181", KindCPF))
	assert.False(t, IsValid("11144477735", Kind("RG")))
}

// TestIsValid_GeneratedDocuments builds check digits from the weighting rules
// and confirms every generated document validates.
func TestIsValid_GeneratedDocuments(t *testing.T) {
	bases := []string{"123456789", "987654321", "000000001", "390533447"}
	for _, base := range bases {
		withFirst := base + string(rune('0'+checkDigit(base, cpfFirstWeights)))
		full := withFirst + string(rune('0'+checkDigit(withFirst, cpfSecondWeights)))
		assert.True(t, IsValid(full, KindCPF), full)
	}

	cnpjBases := []string{"112223330001", "191000000001", "603701880001"}
	for _, base := range cnpjBases {
		withFirst := base + string(rune('0'+checkDigit(base, cnpjFirstWeights)))
		full := withFirst + string(rune('0'+checkDigit(withFirst, cnpjSecondWeights)))
		assert.True(t, IsValid(full, KindCNPJ), full)
	}
}

func TestNormalizeAndKindFor(t *testing.T) {
	assert.Equal(t, "11144477735", Normalize(" 111.444.777-35 "))

	kind, ok := KindFor("11.222.333/0001-81")
	assert.True(t, ok)
	assert.Equal(t, KindCNPJ, kind)

	kind, ok = KindFor("111.444.777-35")
	assert.True(t, ok)
	assert.Equal(t, KindCPF, kind)

	_, ok = KindFor("123")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "111.444.777-35", Format("11144477735", KindCPF))
	assert.Equal(t, "11.222.333/0001-81", Format("11222333000181", KindCNPJ))
	assert.Equal(t, "123", Format("1-2-3", KindCPF))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "*********35", Mask("111.444.777-35"))
	assert.Equal(t, "**", Mask("12"))
}

func FuzzIsValid(f *testing.F) {
	f.Add("11144477735")
	f.Add("11.222.333/0001-81")
	f.Add("")
	f.Fuzz(func(t *testing.T, input string) {
		if IsValid(input, KindCPF) && len(Normalize(input)) != 11 {
			t.Errorf("accepted CPF with %d digits", len(Normalize(input)))
		}
		if IsValid(input, KindCNPJ) && len(Normalize(input)) != 14 {
			t.Errorf("accepted CNPJ with %d digits", len(Normalize(input)))
		}
	})
}
