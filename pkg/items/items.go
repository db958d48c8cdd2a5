// pkg/items/items.go

package items

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"strings"

	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/invoicing-microservice/pkg/invoice"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Columns every items file must have, in any order
const (
	ColDescription = "description"
	ColQuantity    = "quantity"
	ColUnit        = "unit"
	ColPrice       = "price_per_unit"
)

var requiredColumns = []string{ColDescription, ColQuantity, ColUnit, ColPrice}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Load reads line items from a CSV file
func Load(path string) ([]invoice.LineItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("could not open items file %s", path).
			Mark(ierr.ErrDataLoad)
	}
	defer f.Close()

	return Read(f)
}

// Read parses CSV rows with a header line into line items. Rows keep the
// order of the input.
func Read(r io.Reader) ([]invoice.LineItem, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ierr.NewError("items file is empty").
			WithHint("expected a header row: description,quantity,unit,price_per_unit").
			Mark(ierr.ErrDataLoad)
	}
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDataLoad)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	missing := lo.Filter(requiredColumns, func(col string, _ int) bool {
		_, ok := index[col]
		return !ok
	})
	if len(missing) > 0 {
		return nil, ierr.NewErrorf("items file is missing columns: %s", strings.Join(missing, ", ")).
			WithHint("expected a header row: description,quantity,unit,price_per_unit").
			Mark(ierr.ErrDataLoad)
	}

	var out []invoice.LineItem
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDataLoad)
		}
		line, _ := reader.FieldPos(0)

		item, err := parseRecord(record, index, line)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

func parseRecord(record []string, index map[string]int, line int) (invoice.LineItem, error) {
	field := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	quantity, err := parseNumber(field(ColQuantity))
	if err != nil || !quantity.IsPositive() {
		return invoice.LineItem{}, ierr.NewErrorf("line %d: invalid quantity %q", line, field(ColQuantity)).
			WithHint("quantity must be a positive number").
			Mark(ierr.ErrDataLoad)
	}

	price, err := parseNumber(field(ColPrice))
	if err != nil {
		return invoice.LineItem{}, ierr.NewErrorf("line %d: invalid price_per_unit %q", line, field(ColPrice)).
			Mark(ierr.ErrDataLoad)
	}

	return invoice.LineItem{
		Description: field(ColDescription),
		Quantity:    quantity,
		Unit:        field(ColUnit),
		UnitPrice:   price,
	}, nil
}

// parseNumber accepts both a decimal point and a decimal comma
func parseNumber(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}
