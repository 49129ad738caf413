package edgar

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	drepo "EdgarPull/internal/domain/repository"
	"EdgarPull/pkg/util"
)

func decodeSubmissions(body []byte, dest *drepo.Submissions) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return err
	}
	r := dest.Filings.Recent
	n := len(r.AccessionNumber)
	if len(r.Form) != n || len(r.FilingDate) != n {
		return fmt.Errorf("submissions index arrays are misaligned")
	}
	return nil
}

// companyInfo mirrors the company records in the browse-edgar response.
// The feed nests them under namespaced elements, so decoding is done by
// walking the token stream and matching on local names.
type companyInfo struct {
	CIK  string
	Name string
}

func parseCompanySearch(body []byte) ([]drepo.CompanyMatch, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Strict = false

	var matches []drepo.CompanyMatch
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse company search: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		local := se.Name.Local
		if local != "company-info" && local != "companyInfo" {
			continue
		}
		ci, err := decodeCompanyInfo(dec, se)
		if err != nil {
			return nil, fmt.Errorf("parse company search: %w", err)
		}
		if ci.CIK == "" || ci.Name == "" {
			continue
		}
		matches = append(matches, drepo.CompanyMatch{
			CIK:  util.NormalizeCIK(ci.CIK),
			Name: strings.TrimSpace(ci.Name),
		})
	}
	return matches, nil
}

func decodeCompanyInfo(dec *xml.Decoder, start xml.StartElement) (companyInfo, error) {
	var ci companyInfo
	depth := 1
	var field string
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return ci, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			field = ""
			// Only direct children carry the company's own identity.
			// Deeper elements such as formerly-names reuse the same
			// tag names and must not be captured.
			if depth != 2 {
				continue
			}
			switch t.Name.Local {
			case "CIK", "cik":
				field = "cik"
			case "conformed-name", "name":
				field = "name"
			}
		case xml.EndElement:
			depth--
			field = ""
		case xml.CharData:
			switch field {
			case "cik":
				ci.CIK += string(t)
			case "name":
				ci.Name += string(t)
			}
		}
	}
	return ci, nil
}
