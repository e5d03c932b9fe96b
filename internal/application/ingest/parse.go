package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Allllisha/AI-Tender-Prediction/internal/domain/tender"
	"github.com/Allllisha/AI-Tender-Prediction/pkg/errors"
)

const dateLayout = "2006-01-02"

// stripBOM drops the UTF-8 byte order mark that spreadsheet exports commonly
// prepend to CSV files.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		br.Discard(3)
	}
	return br
}

// csvHeader maps column names to their positions so row parsing is
// independent of column order.
type csvHeader map[string]int

func (h csvHeader) get(row []string, name string) string {
	idx, ok := h[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseHeader(row []string) csvHeader {
	h := make(csvHeader, len(row))
	for i, name := range row {
		h[strings.TrimSpace(name)] = i
	}
	return h
}

func parseInt64Ptr(s string) *int64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ReadAwardsCSV parses historical award records from CSV.  Expected columns
// are award_id, tender_id, project_name, contractor, contract_amount,
// contract_date, participants_count, prefecture, municipality, use_type,
// floor_area_m2, bid_method, evaluation_score and price_score; missing
// optional columns yield zero values.  Rows without a contractor or a
// parseable contract_amount are rejected.
func ReadAwardsCSV(r io.Reader) ([]tender.Award, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	headerRow, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAwardImportFailed, "reading CSV header")
	}
	header := parseHeader(headerRow)
	if _, ok := header["contractor"]; !ok {
		return nil, errors.New(errors.ErrCodeAwardImportFailed, "CSV is missing the contractor column")
	}

	var awards []tender.Award
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeAwardImportFailed, "reading CSV row")
		}
		line++

		contractor := header.get(row, "contractor")
		if contractor == "" {
			return nil, errors.Newf(errors.ErrCodeAwardImportFailed, "line %d: contractor is empty", line)
		}
		amount, err := strconv.ParseInt(header.get(row, "contract_amount"), 10, 64)
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeAwardImportFailed, "line %d: invalid contract_amount %q", line, header.get(row, "contract_amount"))
		}

		a := tender.Award{
			TenderID:          header.get(row, "tender_id"),
			ProjectName:       header.get(row, "project_name"),
			Prefecture:        header.get(row, "prefecture"),
			Municipality:      header.get(row, "municipality"),
			UseType:           header.get(row, "use_type"),
			Method:            header.get(row, "bid_method"),
			Contractor:        contractor,
			ContractAmount:    amount,
			FloorAreaM2:       parseFloatPtr(header.get(row, "floor_area_m2")),
			ParticipantsCount: parseIntPtr(header.get(row, "participants_count")),
			TechnicalScore:    parseFloatPtr(header.get(row, "evaluation_score")),
			EstimatedPrice:    parseInt64Ptr(header.get(row, "estimated_price")),
		}
		if d := header.get(row, "contract_date"); d != "" {
			parsed, err := time.Parse(dateLayout, d)
			if err != nil {
				return nil, errors.Newf(errors.ErrCodeAwardImportFailed, "line %d: invalid contract_date %q", line, d)
			}
			a.AwardDate = parsed
		}
		if a.EstimatedPrice != nil && *a.EstimatedPrice > 0 {
			rate := float64(a.ContractAmount) / float64(*a.EstimatedPrice)
			a.WinRate = &rate
		}
		awards = append(awards, a)
	}
	return awards, nil
}

// tenderRecord mirrors the upstream scrape export format.
type tenderRecord struct {
	TenderID       string   `json:"tender_id"`
	Source         string   `json:"source"`
	Publisher      string   `json:"publisher"`
	Title          string   `json:"title"`
	Prefecture     string   `json:"prefecture"`
	Municipality   string   `json:"municipality"`
	AddressText    string   `json:"address_text"`
	Use            string   `json:"use"`
	Method         string   `json:"method"`
	JVAllowed      bool     `json:"jv_allowed"`
	FloorAreaM2    *float64 `json:"floor_area_m2"`
	BidDate        string   `json:"bid_date"`
	NoticeDate     string   `json:"notice_date"`
	EstimatedPrice *int64   `json:"estimated_price_jpy"`
	MinimumPrice   *int64   `json:"minimum_price_jpy"`
	OriginURL      string   `json:"origin_url"`
}

func (rec tenderRecord) toTender() (tender.Tender, error) {
	if rec.TenderID == "" {
		return tender.Tender{}, errors.New(errors.ErrCodeTenderImportFailed, "record is missing tender_id")
	}
	t := tender.Tender{
		ID:           rec.TenderID,
		Title:        rec.Title,
		Publisher:    rec.Publisher,
		Prefecture:   rec.Prefecture,
		Municipality: rec.Municipality,
		Address:      rec.AddressText,
		UseType:      rec.Use,
		BidMethod:    rec.Method,
		FloorAreaM2:  rec.FloorAreaM2,
		JVAllowed:    rec.JVAllowed,
		OriginURL:    rec.OriginURL,
	}
	if rec.EstimatedPrice != nil {
		t.EstimatedPrice = *rec.EstimatedPrice
	}
	if rec.MinimumPrice != nil && *rec.MinimumPrice > 0 {
		t.MinimumPrice = rec.MinimumPrice
	}
	if rec.BidDate != "" {
		d, err := time.Parse(dateLayout, rec.BidDate)
		if err != nil {
			return tender.Tender{}, errors.Newf(errors.ErrCodeTenderImportFailed, "tender %s: invalid bid_date %q", rec.TenderID, rec.BidDate)
		}
		t.BidDate = d
	}
	if rec.NoticeDate != "" {
		d, err := time.Parse(dateLayout, rec.NoticeDate)
		if err != nil {
			return tender.Tender{}, errors.Newf(errors.ErrCodeTenderImportFailed, "tender %s: invalid notice_date %q", rec.TenderID, rec.NoticeDate)
		}
		t.NoticeDate = &d
	}
	return t, nil
}

// ReadTendersJSON parses open tenders from the upstream JSON export, a single
// array of objects.
func ReadTendersJSON(r io.Reader) ([]tender.Tender, error) {
	var records []tenderRecord
	if err := json.NewDecoder(stripBOM(r)).Decode(&records); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTenderImportFailed, "decoding tender JSON")
	}
	tenders := make([]tender.Tender, 0, len(records))
	for _, rec := range records {
		t, err := rec.toTender()
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, nil
}

// ReadTendersCSV parses open tenders from CSV with the same column names as
// the JSON export.
func ReadTendersCSV(r io.Reader) ([]tender.Tender, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	headerRow, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTenderImportFailed, "reading CSV header")
	}
	header := parseHeader(headerRow)
	if _, ok := header["tender_id"]; !ok {
		return nil, errors.New(errors.ErrCodeTenderImportFailed, "CSV is missing the tender_id column")
	}

	var tenders []tender.Tender
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTenderImportFailed, "reading CSV row")
		}
		rec := tenderRecord{
			TenderID:       header.get(row, "tender_id"),
			Source:         header.get(row, "source"),
			Publisher:      header.get(row, "publisher"),
			Title:          header.get(row, "title"),
			Prefecture:     header.get(row, "prefecture"),
			Municipality:   header.get(row, "municipality"),
			AddressText:    header.get(row, "address_text"),
			Use:            header.get(row, "use"),
			Method:         header.get(row, "method"),
			JVAllowed:      strings.EqualFold(header.get(row, "jv_allowed"), "true"),
			FloorAreaM2:    parseFloatPtr(header.get(row, "floor_area_m2")),
			BidDate:        header.get(row, "bid_date"),
			NoticeDate:     header.get(row, "notice_date"),
			EstimatedPrice: parseInt64Ptr(header.get(row, "estimated_price_jpy")),
			MinimumPrice:   parseInt64Ptr(header.get(row, "minimum_price_jpy")),
			OriginURL:      header.get(row, "origin_url"),
		}
		t, err := rec.toTender()
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, nil
}
