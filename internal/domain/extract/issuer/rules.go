package issuer

import "github.com/FACorreiaa/statement-extractor/internal/domain/statement"

// DefaultFilenames is the built-in file name registry. Short tags carry
// "_" edges so they do not match inside longer words.
func DefaultFilenames() []FilenameRule {
	return []FilenameRule{
		{"bankofamerica", statement.IssuerBoA},
		{"bank_of_america", statement.IssuerBoA},
		{"_boa_", statement.IssuerBoA},
		{"_bofa_", statement.IssuerBoA},
		{"chase", statement.IssuerChase},
		{"wellsfargo", statement.IssuerWellsFargo},
		{"wells_fargo", statement.IssuerWellsFargo},
		{"_rbc_", statement.IssuerRBC},
		{"paypal", statement.IssuerPayPal},
		{"barclays", statement.IssuerBarclays},
		{"hsbc", statement.IssuerHSBC},
		{"lloyds", statement.IssuerLloyds},
		{"natwest", statement.IssuerNatWest},
		{"monzo", statement.IssuerMonzo},
		{"commbank", statement.IssuerCommonwealth},
		{"commonwealth", statement.IssuerCommonwealth},
		{"westpac", statement.IssuerWestpac},
		{"_anz_", statement.IssuerANZ},
		{"_nab_", statement.IssuerNAB},
		{"rabobank", statement.IssuerRabobank},
		{"_ing_", statement.IssuerING},
		{"amex", statement.IssuerAmex},
		{"americanexpress", statement.IssuerAmex},
		{"american_express", statement.IssuerAmex},
		{"capitalone", statement.IssuerCapitalOne},
		{"capital_one", statement.IssuerCapitalOne},
		{"discover", statement.IssuerDiscover},
		{"citibank", statement.IssuerCiti},
		{"_citi_", statement.IssuerCiti},
	}
}

// DefaultRules is the ordered content rule table. Card and wallet issuers
// come first because bank statements routinely name them as payees, so
// their rules only accept phrases a payee line would not carry.
func DefaultRules() []Rule {
	return []Rule{
		{Issuer: statement.IssuerPayPal, Any: []string{"PayPal account statement", "PayPal balance"}},
		{Issuer: statement.IssuerAmex, Any: []string{"americanexpress.com", "Membership Rewards", "American Express Card"}},
		{Issuer: statement.IssuerCapitalOne, Any: []string{"capitalone.com", "Capital One Bank"}},
		{Issuer: statement.IssuerDiscover, Any: []string{"discover.com", "Discover it", "Discover Card"}},
		{Issuer: statement.IssuerCiti, Any: []string{"Citibank", "citi.com", "Citi Cards"}},

		{Issuer: statement.IssuerBoA, Any: []string{"Bank of America", "bankofamerica.com"}},
		{Issuer: statement.IssuerChase, Any: []string{"JPMorgan Chase", "chase.com", "Chase Bank"}},
		{Issuer: statement.IssuerWellsFargo, Any: []string{"Wells Fargo Bank", "wellsfargo.com"}},
		{Issuer: statement.IssuerRBC, Any: []string{"Royal Bank of Canada", "RBC Royal Bank"}},

		{Issuer: statement.IssuerBarclays, Any: []string{"Barclays Bank", "barclays.co.uk"}},
		{Issuer: statement.IssuerHSBC, Any: []string{"HSBC UK Bank", "HSBC Bank", "hsbc.co.uk"}},
		{Issuer: statement.IssuerLloyds, Any: []string{"Lloyds Bank", "lloydsbank.com"}},
		{Issuer: statement.IssuerNatWest, Any: []string{"National Westminster Bank", "natwest.com"}},
		{Issuer: statement.IssuerMonzo, Any: []string{"Monzo Bank", "monzo.com"}},

		{Issuer: statement.IssuerCommonwealth, Any: []string{"Commonwealth Bank", "commbank.com.au", "NetBank"}},
		{Issuer: statement.IssuerWestpac, Any: []string{"Westpac Banking Corporation", "westpac.com.au"}},
		{Issuer: statement.IssuerANZ, Any: []string{"Australia and New Zealand Banking", "anz.com"}},
		{Issuer: statement.IssuerNAB, Any: []string{"National Australia Bank", "nab.com.au"}},

		{Issuer: statement.IssuerRabobank, Any: []string{"Rabobank"}},
		{Issuer: statement.IssuerING, Any: []string{"ING Bank", "ing.nl", "ING Direct", "ing.com.au"}},
	}
}
