package issuer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/statement-extractor/internal/domain/statement"
)

func TestDetectByFilename(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		path string
		want statement.Issuer
	}{
		{"/tmp/HSBC-March.PDF", statement.IssuerHSBC},
		{"statements/Chase_2024_01.pdf", statement.IssuerChase},
		{"boa-jan.pdf", statement.IssuerBoA},
		{"my nab statement.pdf", statement.IssuerNAB},
		{"nabstatement.pdf", statement.IssuerUnknown},
		{"booking.pdf", statement.IssuerUnknown},
		{"Capital One - Feb.pdf", statement.IssuerCapitalOne},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.path, ""))
		})
	}
}

func TestDetectByContent(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name string
		text string
		want statement.Issuer
	}{
		{"chase", "JPMorgan Chase Bank, N.A.\nPO Box 659754", statement.IssuerChase},
		{"chase domain", "Customer service: www.Chase.com", statement.IssuerChase},
		{"paypal", "PayPal Account Statement\nYour PayPal balance", statement.IssuerPayPal},
		{"barclays", "Barclays Bank UK PLC. Registered in England.", statement.IssuerBarclays},
		{"rabobank", "Rabobank Rekeningafschrift", statement.IssuerRabobank},
		{"amex", "Membership Rewards points summary", statement.IssuerAmex},
		{"nothing", "Acme Credit Union monthly statement", statement.IssuerUnknown},
		{"empty", "   ", statement.IssuerUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect("statement.pdf", tt.text))
		})
	}
}

func TestPayeeMentionsDoNotWin(t *testing.T) {
	d := NewDetector(nil)

	text := "JPMorgan Chase Bank, N.A.\n01/03 PAYPAL *NETFLIX 15.99\n01/04 AMEX EPAYMENT 200.00"
	assert.Equal(t, statement.IssuerChase, d.Detect("statement.pdf", text))
}

func TestTermsMatchOnWordEdges(t *testing.T) {
	d := NewDetector(nil)

	assert.Equal(t, statement.IssuerUnknown, d.Detect("x.pdf", "Westside Trading Bank"))
	assert.Equal(t, statement.IssuerING, d.Detect("x.pdf", "ING Bank N.V."))
}

func TestFilenameBeatsContent(t *testing.T) {
	d := NewDetector(nil)

	assert.Equal(t, statement.IssuerMonzo, d.Detect("monzo-2024.pdf", "Barclays Bank UK PLC"))
}

func TestBuildCustomRules(t *testing.T) {
	d := NewDetector(nil)
	d.Build(nil, []Rule{
		{Issuer: statement.IssuerWestpac, All: []string{"acme"}, None: []string{"savings"}},
		{Issuer: statement.IssuerANZ, All: []string{"acme", "savings"}},
	})

	assert.Equal(t, statement.IssuerWestpac, d.Detect("hsbc.pdf", "ACME checking"))
	assert.Equal(t, statement.IssuerANZ, d.Detect("x.pdf", "acme SAVINGS account"))
	assert.Equal(t, statement.IssuerUnknown, d.Detect("x.pdf", "Chase Bank"))
}

func TestBuildDropsUnknownIssuers(t *testing.T) {
	d := NewDetector(nil)
	d.Build(
		[]FilenameRule{{Term: "_acme_", Issuer: "acme"}, {Term: "_nab_", Issuer: statement.IssuerNAB}},
		[]Rule{
			{Issuer: "mybank", All: []string{"acme"}},
			{Issuer: statement.IssuerUnknown, All: []string{"acme"}},
			{Issuer: statement.IssuerCiti, All: []string{"citibank"}},
		},
	)

	assert.Equal(t, statement.IssuerUnknown, d.Detect("acme.pdf", "ACME statement"))
	assert.Equal(t, statement.IssuerNAB, d.Detect("nab.pdf", ""))
	assert.Equal(t, statement.IssuerCiti, d.Detect("x.pdf", "Citibank N.A."))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, " CHASE COM ", normalize("chase.com"))
	assert.Equal(t, "", normalize(" -- "))
	assert.Equal(t, "_chase_2024_01_pdf_", filenameKey("Chase 2024-01.pdf"))
}
