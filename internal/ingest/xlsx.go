package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// xlsxReader reads one worksheet of an .xlsx workbook; the first row is the header.
type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(p string, opt Options) (*Dataset, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	wb := workbook{zr: &zr.Reader}
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	shared, err := wb.sharedStrings()
	if err != nil {
		return nil, err
	}
	rows, err := wb.sheetRows(target, shared)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{Name: filepath.Base(p)}
	if opt.SheetName != "" {
		ds.Name = fmt.Sprintf("%s (sheet: %s)", ds.Name, opt.SheetName)
	}
	if len(rows) == 0 {
		return ds, nil
	}
	ds.Fields = headerFields(rows[0])
	for _, row := range rows[1:] {
		ds.Rows++
		if opt.MaxRows > 0 && len(ds.Records) >= opt.MaxRows {
			continue
		}
		ds.Records = append(ds.Records, rowRecord(ds.Fields, row, opt))
	}
	return ds, nil
}

type workbook struct {
	zr *zip.Reader
}

type wbSheet struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"` // r:id in any relationships namespace
}

func (wb workbook) open(name string) ([]byte, error) {
	for _, f := range wb.zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}

// sheetPath resolves a sheet by name, else by 1-based index, to its ZIP entry.
func (wb workbook) sheetPath(name string, index int) (string, error) {
	wbXML, err := wb.open("xl/workbook.xml")
	if err != nil {
		return "", err
	}
	var doc struct {
		Sheets []wbSheet `xml:"sheets>sheet"`
	}
	if len(wbXML) > 0 {
		if err := xml.Unmarshal(wbXML, &doc); err != nil {
			return "", fmt.Errorf("parse workbook: %w", err)
		}
	}
	relsXML, err := wb.open("xl/_rels/workbook.xml.rels")
	if err != nil {
		return "", err
	}
	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if len(relsXML) > 0 {
		if err := xml.Unmarshal(relsXML, &rels); err != nil {
			return "", fmt.Errorf("parse workbook rels: %w", err)
		}
	}
	targetOf := func(rid string) string {
		for _, r := range rels.Items {
			if r.ID == rid {
				return normalizeRelPath(r.Target)
			}
		}
		return ""
	}

	if name != "" {
		names := make([]string, 0, len(doc.Sheets))
		for _, s := range doc.Sheets {
			if strings.EqualFold(s.Name, name) {
				if t := targetOf(s.RID); t != "" {
					return t, nil
				}
			}
			names = append(names, s.Name)
		}
		return "", fmt.Errorf("sheet '%s' not found (available sheets: %s)", name, strings.Join(names, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range doc.Sheets {
		if s.SheetID == index {
			if t := targetOf(s.RID); t != "" {
				return t, nil
			}
		}
	}
	return path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", index)), nil
}

func (wb workbook) sharedStrings() ([]string, error) {
	data, err := wb.open("xl/sharedStrings.xml")
	if err != nil || len(data) == 0 {
		return nil, err
	}
	var sst struct {
		Items []struct {
			T    string `xml:"t"`
			Runs []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, fmt.Errorf("parse shared strings: %w", err)
	}
	out := make([]string, len(sst.Items))
	for i, si := range sst.Items {
		if len(si.Runs) == 0 {
			out[i] = si.T
			continue
		}
		var b strings.Builder
		for _, r := range si.Runs {
			b.WriteString(r.T)
		}
		out[i] = b.String()
	}
	return out, nil
}

type xlsxCell struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline string `xml:"is>t"`
}

// sheetRows streams <row> elements and places cells by their column reference.
func (wb workbook) sheetRows(target string, shared []string) ([][]string, error) {
	data, err := wb.open(target)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("worksheet %s not found", target)
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var rows [][]string
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse worksheet: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []xlsxCell `xml:"c"`
		}
		if err := dec.DecodeElement(&row, &se); err != nil {
			return nil, fmt.Errorf("parse worksheet row: %w", err)
		}
		var out []string
		for i, c := range row.Cells {
			col := colIndexFromRef(c.Ref)
			if col < 0 {
				col = i
			}
			for len(out) <= col {
				out = append(out, "")
			}
			out[col] = cellText(c, shared)
		}
		rows = append(rows, out)
	}
	return rows, nil
}

func cellText(c xlsxCell, shared []string) string {
	switch c.Type {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(c.Value))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return c.Inline
	case "b":
		if c.Value == "1" {
			return "true"
		}
		return "false"
	default:
		return c.Value
	}
}

// colIndexFromRef maps "C12" to 2; refs without letters give -1.
func colIndexFromRef(ref string) int {
	idx := 0
	n := 0
	for _, r := range strings.ToUpper(ref) {
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

// normalizeRelPath converts relationship targets ("/xl/worksheets/sheet1.xml",
// "worksheets/sheet1.xml") into ZIP entry names.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
