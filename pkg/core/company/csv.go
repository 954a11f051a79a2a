package company

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"edinet_analyzer/pkg/logger"
)

// Column positions in EdinetcodeDlInfo.csv.
const (
	colEdinetCode = 0
	colName       = 6
	colIndustry   = 10
	colSecCode    = 11
)

// ImportCSV reads the Shift-JIS encoded EDINET code-list CSV. The file
// starts with a metadata line and a header line, both skipped. Rows too
// short to carry a securities code column are skipped, not fatal.
func ImportCSV(r io.Reader) ([]Company, error) {
	decoded := transform.NewReader(r, japanese.ShiftJIS.NewDecoder())
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1 // trailer columns vary between releases

	var companies []Company
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading code-list csv line %d: %w", line+1, err)
		}
		line++
		if line <= 2 {
			continue
		}
		if len(record) <= colSecCode {
			logger.Log.Warnf("[Company] skipping short csv row %d (%d columns)", line, len(record))
			continue
		}

		code := record[colSecCode]
		// The code list pads securities codes to five digits; the
		// market uses four.
		if len(code) == 5 {
			code = code[:4]
		}

		companies = append(companies, Company{
			EdinetCode: record[colEdinetCode],
			Code:       code,
			Name:       record[colName],
			Industry:   record[colIndustry],
		})
	}

	logger.Log.Infof("[Company] imported %d companies from code list", len(companies))
	return companies, nil
}
