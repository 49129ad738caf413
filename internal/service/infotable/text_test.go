package infotable

import (
	"errors"
	"testing"

	"EdgarPull/internal/domain/models"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		doc  string
		want format
	}{
		{`<?xml version="1.0"?><informationTable></informationTable>`, formatXML},
		{`<informationTable xmlns="http://www.sec.gov/edgar/document/thirteenf/informationtable">`, formatXML},
		{`<?xml version="1.0"?><edgarSubmission><coverPage/></edgarSubmission>`, formatXML},
		{"Name of Issuer: Apple Inc.\nCUSIP: 037833100", formatText},
		{"CUSIP: 037833100\nIssuer: Apple Inc.", formatText},
		{"<html><table><tr><th>CUSIP</th></tr></table></html>", formatTable},
		{"<html><body>quarterly report</body></html>", formatUnknown},
	}
	for _, c := range cases {
		if got := detectFormat([]byte(c.doc)); got != c.want {
			t.Fatalf("detectFormat(%q) = %v, want %v", c.doc, got, c.want)
		}
	}
}

func TestParseNoEntriesFails(t *testing.T) {
	// A cover-page XML document carries no infoTable elements. It must
	// fail the parse rather than succeed with zero holdings.
	doc := []byte(`<?xml version="1.0"?>
	<edgarSubmission>
		<headerData><filerInfo><periodOfReport>03-31-2024</periodOfReport></filerInfo></headerData>
		<formData><coverPage><reportType>13F HOLDINGS REPORT</reportType></coverPage></formData>
	</edgarSubmission>`)

	holdings, _, err := NewParser().Parse(doc)
	var perr *models.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for empty document, got %v", err)
	}
	if len(holdings) != 0 {
		t.Fatalf("unexpected holdings %+v", holdings)
	}
}

func TestParseUnknownDocumentFails(t *testing.T) {
	doc := []byte("<html><body><p>Quarterly letter to shareholders.</p></body></html>")
	_, _, err := NewParser().Parse(doc)
	var perr *models.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for unrecognized document, got %v", err)
	}
}

func TestParseTextStructured(t *testing.T) {
	doc := []byte(`
CUSIP: 037833100
Issuer Name: Apple Inc.
Class Title: Common Stock
Value: 1000000
Shares: 1000
Investment Discretion: SOLE
Voting Authority: SOLE

CUSIP: 88160R101
Issuer Name: Tesla Inc.
Class Title: Common Stock
Value: 500000
Shares: 500
Investment Discretion: SOLE
Voting Authority: SHARED
`)

	holdings, warnings, err := NewParser().Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}
	h := holdings[0]
	if h.IssuerName != "Apple Inc." || h.CUSIP != "037833100" || h.ClassTitle != "Common Stock" {
		t.Fatalf("unexpected holding %+v", h)
	}
	if h.Value.String() != "1000000" || h.Shares != 1000 {
		t.Fatalf("unexpected amounts %+v", h)
	}
	if h.Voting.Sole != 1000 {
		t.Fatalf("SOLE designation must assign all shares: %+v", h.Voting)
	}
	if holdings[1].Voting.Shared != 500 {
		t.Fatalf("SHARED designation must assign all shares: %+v", holdings[1].Voting)
	}
}

func TestParseHTMLTable(t *testing.T) {
	doc := []byte(`<html><body>
	<table>
		<tr><th>CUSIP</th><th>Issuer Name</th><th>Class Title</th><th>Value</th><th>Shares Held</th></tr>
		<tr><td>037833100</td><td>Apple Inc.</td><td>Common Stock</td><td>1,000,000</td><td>1000</td></tr>
		<tr><td>88160R101</td><td>Tesla Inc.</td><td>Common Stock</td><td>500000</td><td>500</td></tr>
	</table>
	</body></html>`)

	holdings, warnings, err := NewParser().Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", warnings)
	}
	if len(holdings) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(holdings))
	}
	h := holdings[0]
	if h.CUSIP != "037833100" || h.IssuerName != "Apple Inc." {
		t.Fatalf("unexpected holding %+v", h)
	}
	if h.Value.String() != "1000000" || h.Shares != 1000 {
		t.Fatalf("unexpected amounts %+v", h)
	}
	if h.Voting.Sole != 1000 {
		t.Fatalf("missing voting counts must default to sole: %+v", h.Voting)
	}
}

func TestParseTextBadBlockFailsSmallDocument(t *testing.T) {
	doc := []byte(`
CUSIP: 037833100
Issuer Name: Apple Inc.
Value: 1000000

CUSIP: 88160R101
Issuer Name: Tesla Inc.
Value: not-a-number
`)

	_, warnings, err := NewParser().Parse(doc)
	var perr *models.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", warnings)
	}
}

func TestCanonicalField(t *testing.T) {
	cases := map[string]string{
		"CUSIP":                   "cusip",
		"Name of Issuer":          "issuer",
		"Issuer":                  "issuer",
		"Title of Class":          "class",
		"Market Value":            "value",
		"Value (x$1000)":          "value",
		"Shares Held":             "shares",
		"sshPrnamt":               "shares",
		"sshPrnamtType":           "sharestype",
		"Investment Discretion":   "discretion",
		"Voting Authority":        "voting",
		"Voting Authority Sole":   "sole",
		"Voting Authority Shared": "shared",
		"Voting Authority None":   "none",
		"Other Managers":          "othermanagers",
		"Footnotes":               "",
	}
	for in, want := range cases {
		if got := canonicalField(in); got != want {
			t.Fatalf("canonicalField(%q) = %q, want %q", in, got, want)
		}
	}
}
