package statement

// Complexity is the coarse layout class of a PDF
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Profile summarizes the first pages of a PDF. It is computed once per
// extraction and never modified afterwards.
type Profile struct {
	PageCount       int        `json:"page_count"`
	AvgCharsPerPage float64    `json:"avg_chars_per_page"`
	TableCount      int        `json:"table_count"`
	HasTables       bool       `json:"has_tables"`
	HasColumns      bool       `json:"has_columns"`
	HasImages       bool       `json:"has_images"`
	Complexity      Complexity `json:"layout_complexity"`
	IsScanned       bool       `json:"is_scanned"`

	// FirstPageText feeds issuer detection and year inference.
	FirstPageText string `json:"-"`
}

// Classify fills IsScanned and Complexity from the measured fields.
func (p Profile) Classify() Profile {
	p.HasTables = p.TableCount > 0
	p.IsScanned = p.AvgCharsPerPage < 100 && p.HasImages
	switch {
	case p.TableCount > 2 || p.HasColumns:
		p.Complexity = ComplexityComplex
	case p.TableCount > 0 || p.AvgCharsPerPage > 1000:
		p.Complexity = ComplexityModerate
	default:
		p.Complexity = ComplexitySimple
	}
	return p
}

// Issuer is a tag from the closed set of supported statement issuers.
// The empty value means unknown.
type Issuer string

const (
	IssuerUnknown      Issuer = ""
	IssuerBoA          Issuer = "boa"
	IssuerChase        Issuer = "chase"
	IssuerWellsFargo   Issuer = "wellsfargo"
	IssuerRBC          Issuer = "rbc"
	IssuerPayPal       Issuer = "paypal"
	IssuerBarclays     Issuer = "barclays"
	IssuerHSBC         Issuer = "hsbc"
	IssuerLloyds       Issuer = "lloyds"
	IssuerNatWest      Issuer = "natwest"
	IssuerMonzo        Issuer = "monzo"
	IssuerCommonwealth Issuer = "commonwealth"
	IssuerWestpac      Issuer = "westpac"
	IssuerANZ          Issuer = "anz"
	IssuerNAB          Issuer = "nab"
	IssuerRabobank     Issuer = "rabobank"
	IssuerING          Issuer = "ing"
	IssuerAmex         Issuer = "amex"
	IssuerCapitalOne   Issuer = "capitalone"
	IssuerDiscover     Issuer = "discover"
	IssuerCiti         Issuer = "citi"
)

// Issuers lists every known tag in a fixed order.
var Issuers = []Issuer{
	IssuerBoA, IssuerChase, IssuerWellsFargo, IssuerRBC, IssuerPayPal,
	IssuerBarclays, IssuerHSBC, IssuerLloyds, IssuerNatWest, IssuerMonzo,
	IssuerCommonwealth, IssuerWestpac, IssuerANZ, IssuerNAB, IssuerRabobank, IssuerING,
	IssuerAmex, IssuerCapitalOne, IssuerDiscover, IssuerCiti,
}

// Valid reports whether the tag is part of the closed set.
func (i Issuer) Valid() bool {
	for _, known := range Issuers {
		if known == i {
			return true
		}
	}
	return false
}
