package scraper

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/aluiziolira/go-scrape-banks/models"
	"github.com/aluiziolira/go-scrape-banks/parser"
)

const expectedCells = 3

// TableResult holds what was read from the first table body of a document.
type TableResult struct {
	Records []models.Record
	Skipped []SkippedRow
}

// SkippedRow identifies a row dropped for having the wrong number of cells.
type SkippedRow struct {
	Index int
	Cells int
}

// ParseTable parses an HTML document and extracts bank records from its first table body.
func ParseTable(r io.Reader, logger *slog.Logger) (*TableResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return ExtractTable(doc.Selection, logger)
}

// ExtractTable walks the rows of the first tbody under root. Rows without exactly three
// cells are logged and skipped; a row with three cells that cannot be coerced aborts.
func ExtractTable(root *goquery.Selection, logger *slog.Logger) (*TableResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	body := root.Find("tbody").First()
	if body.Length() == 0 {
		return nil, ErrNoTable
	}

	result := &TableResult{}
	var rowErr error
	body.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td").Length()
		if cells != expectedCells {
			logger.Warn("unexpected number of columns",
				slog.Int("row", i),
				slog.Int("columns", cells),
			)
			result.Skipped = append(result.Skipped, SkippedRow{Index: i, Cells: cells})
			return true
		}

		record, err := recordFromRow(i, row)
		if err != nil {
			rowErr = err
			return false
		}
		result.Records = append(result.Records, record)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return result, nil
}

// BankName returns the text of the first anchor directly inside the row's second cell.
// When the cell has no direct anchor, the first descendant anchor carrying text is used.
func BankName(row *goquery.Selection) string {
	cell := row.Find("td").Eq(1)
	anchor := cell.ChildrenFiltered("a").First()
	if anchor.Length() == 0 {
		anchor = cell.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return strings.TrimSpace(a.Text()) != ""
		}).First()
	}
	return parser.NormalizeName(anchor.Text())
}

// MarketCapText returns the first non-blank text node of the row's third cell.
func MarketCapText(row *goquery.Selection) string {
	cell := row.Find("td").Eq(2)
	for _, node := range cell.Contents().Nodes {
		if node.Type == html.TextNode && strings.TrimSpace(node.Data) != "" {
			return node.Data
		}
	}
	return cell.Text()
}

func recordFromRow(index int, row *goquery.Selection) (models.Record, error) {
	name := BankName(row)
	if name == "" {
		return models.Record{}, &ParseError{
			Row:   index,
			Field: "name",
			Text:  strings.TrimSpace(row.Find("td").Eq(1).Text()),
			Err:   errors.New("no bank name anchor"),
		}
	}

	text := MarketCapText(row)
	value, err := parser.ParseMarketCap(text)
	if err != nil {
		return models.Record{}, &ParseError{Row: index, Field: "market_cap", Text: text, Err: err}
	}

	record := models.Record{Name: name, MarketCapUSD: value}
	if err := parser.ValidateRecord(&record); err != nil {
		return models.Record{}, &ParseError{Row: index, Field: "market_cap", Text: text, Err: err}
	}
	return record, nil
}
