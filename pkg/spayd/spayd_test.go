package spayd

import (
	"go/parser"
	"go/token"
	"io/fs"
	"strings"
	"testing"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	got, err := Encode(Payment{
		IBAN:           "CZ65 0800 0000 1920 0014 5399",
		BIC:            "GIBACZPX",
		Amount:         decimal.RequireFromString("1500.00"),
		Currency:       "CZK",
		VariableSymbol: "202501",
		Message:        "Faktura 202501",
	})
	require.NoError(t, err)
	assert.Equal(t,
		"SPD*1.0*ACC:CZ6508000000192000145399+GIBACZPX*AM:1500.00*CC:CZK*X-VS:202501*MSG:Faktura 202501",
		got)
}

func TestEncode_AccountField(t *testing.T) {
	tests := []struct {
		name string
		iban string
		bic  string
		want string
	}{
		{"empty bic", "CZ65 0800 0000 1920 0014 5399", "", "ACC:CZ6508000000192000145399*"},
		{"short bic ignored", "CZ6508000000192000145399", "ABC", "ACC:CZ6508000000192000145399*"},
		{"bic upper-cased", "cz6508000000192000145399", "gibaczpx", "ACC:CZ6508000000192000145399+GIBACZPX*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(Payment{IBAN: tt.iban, BIC: tt.bic, Amount: decimal.NewFromInt(1)})
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
			if tt.bic == "" {
				assert.NotContains(t, got, "+")
			}
		})
	}
}

func TestEncode_Amount(t *testing.T) {
	tests := map[string]string{
		"1234.5":    "AM:1234.50*",
		"1234567":   "AM:1234567.00*",
		"0.005":     "AM:0.01*",
		"11257.903": "AM:11257.90*",
	}

	for in, want := range tests {
		got, err := Encode(Payment{IBAN: "CZ6508000000192000145399", Amount: decimal.RequireFromString(in)})
		require.NoError(t, err)
		assert.Contains(t, got, want)
	}
}

func TestEncode_PassesVariableSymbolThrough(t *testing.T) {
	got, err := Encode(Payment{IBAN: "CZ6508000000192000145399", VariableSymbol: "000123"})
	require.NoError(t, err)
	assert.Contains(t, got, "*X-VS:000123*")
	assert.Contains(t, got, "*CC:CZK*")
}

func TestEncode_EmptyIBAN(t *testing.T) {
	_, err := Encode(Payment{IBAN: "  \t "})
	require.Error(t, err)
	assert.True(t, ierr.IsInvalidAccount(err))
	assert.True(t, ierr.IsEncoding(err))
}

func TestEncode_MessageIsNotEscaped(t *testing.T) {
	got, err := Encode(Payment{IBAN: "CZ6508000000192000145399", Message: "a*b"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "*MSG:a*b"))
}

func TestRoundTrip(t *testing.T) {
	in := Payment{
		IBAN:           "cz65 0800 0000 1920 0014 5399",
		BIC:            "gibaczpx",
		Amount:         decimal.RequireFromString("98765.4321"),
		Currency:       "CZK",
		VariableSymbol: "20251019",
		Message:        "Faktura 20251019",
	}

	s, err := Encode(in)
	require.NoError(t, err)

	out, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, "CZ6508000000192000145399", out.IBAN)
	assert.Equal(t, "GIBACZPX", out.BIC)
	assert.Equal(t, "98765.43", out.Amount.StringFixed(2))
	assert.Equal(t, in.Currency, out.Currency)
	assert.Equal(t, in.VariableSymbol, out.VariableSymbol)
	assert.Equal(t, in.Message, out.Message)
}

func TestParse_Rejects(t *testing.T) {
	for _, s := range []string{
		"",
		"SPC*0200*1",
		"SPD*2.0*ACC:CZ65",
		"SPD*1.0*ACC",
		"SPD*1.0*AM:12.00",
		"SPD*1.0*ACC:CZ65*AM:abc",
	} {
		_, err := Parse(s)
		assert.Error(t, err, s)
		assert.True(t, ierr.IsEncoding(err), s)
	}
}

func TestNormalizeIBAN(t *testing.T) {
	assert.Equal(t, "CZ6508000000192000145399", NormalizeIBAN(" cz65 0800\t0000 1920 0014 5399 "))
	assert.Equal(t, "", NormalizeIBAN("   "))
}

func TestEncoderImportsNoDomainModel(t *testing.T) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, ".", func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ImportsOnly)
	require.NoError(t, err)
	require.Contains(t, pkgs, "spayd")

	for name, f := range pkgs["spayd"].Files {
		for _, imp := range f.Imports {
			assert.NotEqual(t, `"github.com/invoicing-microservice/pkg/invoice"`, imp.Path.Value, name)
		}
	}
}
