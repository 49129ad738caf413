package infotable

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"EdgarPull/internal/domain/models"
)

// Filings before the 2013 XML mandate embed the information table in the
// filing document itself, either as an HTML table or as structured
// "Key: Value" text blocks. Both layouts carry the same fields under
// loosely standardized labels, so parsing maps labels to canonical field
// names and builds holdings from the resulting records.

type format int

const (
	formatUnknown format = iota
	formatXML
	formatTable
	formatText
)

var cusipLabelRe = regexp.MustCompile(`(?i)cusip\s*:`)

func detectFormat(doc []byte) format {
	s := strings.ToLower(string(doc))
	if strings.Contains(s, "<informationtable") || strings.Contains(s, "<infotable") ||
		strings.HasPrefix(strings.TrimSpace(s), "<?xml") {
		return formatXML
	}
	if strings.Contains(s, "<table") && strings.Contains(s, "cusip") {
		return formatTable
	}
	if cusipLabelRe.MatchString(s) {
		return formatText
	}
	return formatUnknown
}

// parseTable reads an HTML information table. The first row mentioning a
// CUSIP column is the header; every later row is one holding.
func (p *Parser) parseTable(doc []byte) ([]models.Holding, []models.ParseWarning, error) {
	var (
		header   []string
		holdings []models.Holding
		warnings []models.ParseWarning
		total    int
	)
	for _, cells := range tableRows(doc) {
		if header == nil {
			if !rowNames(cells, "cusip") {
				continue
			}
			header = make([]string, len(cells))
			for i, cell := range cells {
				header[i] = canonicalField(cell)
			}
			continue
		}

		total++
		fields := make(map[string]string, len(header))
		for i, cell := range cells {
			if i < len(header) && header[i] != "" {
				fields[header[i]] = strings.TrimSpace(cell)
			}
		}
		h, err := buildLegacyHolding(fields)
		if err != nil {
			warnings = append(warnings, models.ParseWarning{Entry: total, Reason: err.Error()})
			continue
		}
		holdings = append(holdings, h)
	}
	return p.finish(holdings, warnings, total)
}

// parseText reads "Key: Value" blocks separated by blank lines. A block
// without a CUSIP label is boilerplate and is ignored.
func (p *Parser) parseText(doc []byte) ([]models.Holding, []models.ParseWarning, error) {
	var (
		holdings []models.Holding
		warnings []models.ParseWarning
		total    int
	)
	for _, block := range splitBlocks(string(doc)) {
		fields := make(map[string]string)
		for _, line := range strings.Split(block, "\n") {
			label, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			if f := canonicalField(label); f != "" {
				fields[f] = strings.TrimSpace(value)
			}
		}
		if fields["cusip"] == "" {
			continue
		}

		total++
		h, err := buildLegacyHolding(fields)
		if err != nil {
			warnings = append(warnings, models.ParseWarning{Entry: total, Reason: err.Error()})
			continue
		}
		holdings = append(holdings, h)
	}
	return p.finish(holdings, warnings, total)
}

// tableRows tokenizes doc and returns the cell text of every table row.
func tableRows(doc []byte) [][]string {
	tz := html.NewTokenizer(bytes.NewReader(doc))
	var (
		rows   [][]string
		row    []string
		cell   strings.Builder
		inCell bool
	)
	for {
		switch tz.Next() {
		case html.ErrorToken:
			return rows
		case html.StartTagToken:
			name, _ := tz.TagName()
			switch string(name) {
			case "tr":
				row = nil
			case "td", "th":
				inCell = true
				cell.Reset()
			}
		case html.EndTagToken:
			name, _ := tz.TagName()
			switch string(name) {
			case "tr":
				if len(row) > 0 {
					rows = append(rows, row)
				}
				row = nil
			case "td", "th":
				if inCell {
					row = append(row, cell.String())
					inCell = false
				}
			}
		case html.TextToken:
			if inCell {
				cell.Write(tz.Text())
			}
		}
	}
}

func splitBlocks(s string) []string {
	var (
		blocks  []string
		current []string
	)
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func rowNames(cells []string, field string) bool {
	for _, cell := range cells {
		if canonicalField(cell) == field {
			return true
		}
	}
	return false
}

// canonicalField maps a column header or line label to the field it
// carries. Labels vary by filer ("Issuer Name", "Name of Issuer",
// "Shares Held", "Market Value"), so matching is by keyword.
func canonicalField(label string) string {
	k := squashLabel(label)
	switch {
	case k == "cusip":
		return "cusip"
	case strings.Contains(k, "issuer"):
		return "issuer"
	case strings.Contains(k, "class"):
		return "class"
	case strings.Contains(k, "voting") || strings.Contains(k, "authority"):
		switch {
		case strings.Contains(k, "sole"):
			return "sole"
		case strings.Contains(k, "shared"):
			return "shared"
		case strings.Contains(k, "none"):
			return "none"
		}
		return "voting"
	case k == "sole" || k == "shared" || k == "none":
		return k
	case strings.Contains(k, "value"):
		return "value"
	case strings.Contains(k, "prnamttype"):
		return "sharestype"
	case strings.Contains(k, "share") || strings.Contains(k, "prnamt"):
		return "shares"
	case strings.Contains(k, "discretion"):
		return "discretion"
	case strings.Contains(k, "putcall"):
		return "putcall"
	case strings.Contains(k, "manager"):
		return "othermanagers"
	}
	return ""
}

func squashLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// buildLegacyHolding constructs a holding from canonical fields. Legacy
// tables rarely carry per-bucket voting counts; a bare designation like
// "SOLE" assigns the full share count to that bucket.
func buildLegacyHolding(fields map[string]string) (models.Holding, error) {
	var h models.Holding

	h.IssuerName = fields["issuer"]
	if h.IssuerName == "" {
		return h, fmt.Errorf("missing issuer name")
	}
	h.CUSIP = fields["cusip"]
	if h.CUSIP == "" {
		return h, fmt.Errorf("missing cusip")
	}
	h.ClassTitle = fields["class"]

	value, err := parseDecimal(fields["value"])
	if err != nil {
		return h, fmt.Errorf("bad value %q", fields["value"])
	}
	h.Value = value

	if s := fields["shares"]; s != "" {
		shares, err := parseCount(s)
		if err != nil {
			return h, fmt.Errorf("bad share count %q", s)
		}
		h.Shares = shares
	}
	h.SharesType = fields["sharestype"]
	if h.SharesType == "" {
		h.SharesType = "SH"
	}
	h.InvestmentDiscretion = fields["discretion"]
	h.PutCall = fields["putcall"]
	h.OtherManagers = fields["othermanagers"]

	if fields["sole"] != "" || fields["shared"] != "" || fields["none"] != "" {
		sole, err := parseCountDefault(fields["sole"])
		if err != nil {
			return h, fmt.Errorf("bad sole voting count %q", fields["sole"])
		}
		shared, err := parseCountDefault(fields["shared"])
		if err != nil {
			return h, fmt.Errorf("bad shared voting count %q", fields["shared"])
		}
		none, err := parseCountDefault(fields["none"])
		if err != nil {
			return h, fmt.Errorf("bad none voting count %q", fields["none"])
		}
		h.Voting = models.VotingAuthority{Sole: sole, Shared: shared, None: none}
		return h, nil
	}

	switch strings.ToUpper(fields["voting"]) {
	case "SHARED":
		h.Voting.Shared = h.Shares
	case "NONE":
		h.Voting.None = h.Shares
	default:
		h.Voting.Sole = h.Shares
	}
	return h, nil
}

func parseCountDefault(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return parseCount(s)
}
