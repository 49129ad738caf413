package infotable

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"EdgarPull/internal/domain/models"
)

// Parser extracts holdings from a 13F information-table document.
// Malformed entries are skipped and reported as warnings; the whole parse
// fails only when the skip fraction crosses the configured threshold.
type Parser struct {
	smallDocLimit   int     // documents at or below this size tolerate no skips
	maxSkipFraction float64 // above the limit, skipped/total must not exceed this
}

// ParserOption configures Parser.
type ParserOption func(*Parser)

// WithSkipThreshold overrides the failure threshold.
func WithSkipThreshold(smallDocLimit int, maxSkipFraction float64) ParserOption {
	return func(p *Parser) {
		if smallDocLimit > 0 {
			p.smallDocLimit = smallDocLimit
		}
		if maxSkipFraction > 0 {
			p.maxSkipFraction = maxSkipFraction
		}
	}
}

// NewParser creates an information-table parser.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		smallDocLimit:   10,
		maxSkipFraction: 0.10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// rawEntry mirrors one infoTable element. Numeric fields are kept as
// strings so thousands separators and stray whitespace survive decoding
// and are normalized in one place.
type rawEntry struct {
	NameOfIssuer         string    `xml:"nameOfIssuer"`
	TitleOfClass         string    `xml:"titleOfClass"`
	CUSIP                string    `xml:"cusip"`
	Value                string    `xml:"value"`
	ShrsOrPrnAmt         rawShares `xml:"shrsOrPrnAmt"`
	PutCall              string    `xml:"putCall"`
	InvestmentDiscretion string    `xml:"investmentDiscretion"`
	OtherManager         string    `xml:"otherManager"`
	VotingAuthority      rawVoting `xml:"votingAuthority"`
}

// rawShares handles both the schema form (<sshPrnamt> child) and the flat
// form some filers emit (<shrsOrPrnAmt>1000</shrsOrPrnAmt>).
type rawShares struct {
	SshPrnamt     string `xml:"sshPrnamt"`
	SshPrnamtType string `xml:"sshPrnamtType"`
	Flat          string `xml:",chardata"`
}

func (r rawShares) amount() string {
	if strings.TrimSpace(r.SshPrnamt) != "" {
		return r.SshPrnamt
	}
	return r.Flat
}

type rawVoting struct {
	Sole   string `xml:"Sole"`
	Shared string `xml:"Shared"`
	None   string `xml:"None"`
}

// Parse extracts every information-table entry in doc. The document
// format is detected first: the XML schema filers use today, or one of
// the legacy plain-text layouts found in pre-2013 filings. It returns
// the parsed holdings, one warning per skipped entry, and a ParseError
// when no entries were found or the skip fraction exceeds the
// threshold.
func (p *Parser) Parse(doc []byte) ([]models.Holding, []models.ParseWarning, error) {
	switch detectFormat(doc) {
	case formatXML:
		return p.parseXML(doc)
	case formatTable:
		return p.parseTable(doc)
	case formatText:
		return p.parseText(doc)
	default:
		return nil, nil, &models.ParseError{Reason: "document contains no recognizable information table"}
	}
}

func (p *Parser) parseXML(doc []byte) ([]models.Holding, []models.ParseWarning, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	dec.Strict = false

	var (
		holdings []models.Holding
		warnings []models.ParseWarning
		total    int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warnings, &models.ParseError{Total: total, Skipped: total}
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "infoTable" {
			continue
		}

		total++
		var raw rawEntry
		if err := dec.DecodeElement(&raw, &se); err != nil {
			warnings = append(warnings, models.ParseWarning{Entry: total, Reason: fmt.Sprintf("malformed entry: %v", err)})
			continue
		}
		h, err := buildHolding(&raw)
		if err != nil {
			warnings = append(warnings, models.ParseWarning{Entry: total, Reason: err.Error()})
			continue
		}
		holdings = append(holdings, h)
	}

	return p.finish(holdings, warnings, total)
}

// finish applies the skip threshold. A document with no entries at all
// is a failed parse, never an empty success.
func (p *Parser) finish(holdings []models.Holding, warnings []models.ParseWarning, total int) ([]models.Holding, []models.ParseWarning, error) {
	if total == 0 {
		return nil, warnings, &models.ParseError{Reason: "no information table entries found"}
	}
	skipped := len(warnings)
	if skipped > 0 {
		if total <= p.smallDocLimit || float64(skipped)/float64(total) > p.maxSkipFraction {
			return nil, warnings, &models.ParseError{Total: total, Skipped: skipped}
		}
	}
	return holdings, warnings, nil
}

func buildHolding(raw *rawEntry) (models.Holding, error) {
	var h models.Holding

	h.IssuerName = strings.TrimSpace(raw.NameOfIssuer)
	if h.IssuerName == "" {
		return h, fmt.Errorf("missing issuer name")
	}
	h.CUSIP = strings.TrimSpace(raw.CUSIP)
	if h.CUSIP == "" {
		return h, fmt.Errorf("missing cusip")
	}
	h.ClassTitle = strings.TrimSpace(raw.TitleOfClass)
	h.InvestmentDiscretion = strings.TrimSpace(raw.InvestmentDiscretion)
	if h.InvestmentDiscretion == "" {
		return h, fmt.Errorf("missing investment discretion")
	}

	value, err := parseDecimal(raw.Value)
	if err != nil {
		return h, fmt.Errorf("bad value %q", raw.Value)
	}
	h.Value = value

	shares, err := parseCount(raw.ShrsOrPrnAmt.amount())
	if err != nil {
		return h, fmt.Errorf("bad share count %q", raw.ShrsOrPrnAmt.amount())
	}
	h.Shares = shares
	h.SharesType = strings.TrimSpace(raw.ShrsOrPrnAmt.SshPrnamtType)
	if h.SharesType == "" {
		h.SharesType = "SH"
	}

	sole, err := parseCount(raw.VotingAuthority.Sole)
	if err != nil {
		return h, fmt.Errorf("bad sole voting count %q", raw.VotingAuthority.Sole)
	}
	shared, err := parseCount(raw.VotingAuthority.Shared)
	if err != nil {
		return h, fmt.Errorf("bad shared voting count %q", raw.VotingAuthority.Shared)
	}
	none, err := parseCount(raw.VotingAuthority.None)
	if err != nil {
		return h, fmt.Errorf("bad none voting count %q", raw.VotingAuthority.None)
	}
	if sole < 0 || shared < 0 || none < 0 {
		return h, fmt.Errorf("negative voting authority")
	}
	h.Voting = models.VotingAuthority{Sole: sole, Shared: shared, None: none}
	if h.Voting.Total() != h.Shares {
		return h, fmt.Errorf("voting authority %d does not sum to share count %d", h.Voting.Total(), h.Shares)
	}

	h.PutCall = strings.TrimSpace(raw.PutCall)
	h.OtherManagers = strings.TrimSpace(raw.OtherManager)
	return h, nil
}

// normalizeNumber strips thousands separators and surrounding whitespace.
func normalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, ",", "")
}

func parseCount(s string) (int64, error) {
	n := normalizeNumber(s)
	if n == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseInt(n, 10, 64)
}

func parseDecimal(s string) (decimal.Decimal, error) {
	n := normalizeNumber(s)
	if n == "" {
		return decimal.Decimal{}, fmt.Errorf("empty")
	}
	return decimal.NewFromString(n)
}
