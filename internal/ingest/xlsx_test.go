package ingest

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/xavrousseau/datalyzer/internal/dataset"
)

// buildWorkbook assembles a minimal OOXML workbook with one sheet.
func buildWorkbook(t *testing.T, sheetXML, sharedXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships>
  <Relationship Id="rId1" Type="worksheet" Target="/xl/worksheets/sheet1.xml"/>
</Relationships>`,
		"xl/worksheets/sheet1.xml": sheetXML,
	}
	if sharedXML != "" {
		parts["xl/sharedStrings.xml"] = sharedXML
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestReadXLSX_SharedAndNumericCells(t *testing.T) {
	sheet := `<?xml version="1.0"?>
<worksheet><sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
  <row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>12</v></c></row>
  <row r="3"><c r="A3" t="s"><v>3</v></c><c r="B3"><v>34</v></c></row>
</sheetData></worksheet>`
	shared := `<?xml version="1.0"?>
<sst><si><t>name</t></si><si><t>age</t></si><si><t>alice</t></si><si><t>bob</t></si></sst>`

	data := buildWorkbook(t, sheet, shared)
	tab, err := ReadXLSX("people.xlsx", data)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if tab.NumRows() != 2 || tab.NumCols() != 2 {
		t.Fatalf("shape %dx%d, want 2x2", tab.NumRows(), tab.NumCols())
	}
	name, _ := tab.Column("name")
	if name.Values[0] != "alice" || name.Values[1] != "bob" {
		t.Errorf("shared strings wrong: %v", name.Values)
	}
	age, _ := tab.Column("age")
	if age.Kind != dataset.KindInt {
		t.Errorf("age kind %s, want INT", age.Kind)
	}
	if age.Values[1] != int64(34) {
		t.Errorf("age cell %v", age.Values[1])
	}
}

func TestReadXLSX_SparseRowGaps(t *testing.T) {
	// Row 2 skips column B entirely; the cell must ingest as missing.
	sheet := `<?xml version="1.0"?>
<worksheet><sheetData>
  <row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
  <row r="2"><c r="A2"><v>1</v></c></row>
  <row r="3"><c r="A3"><v>2</v></c><c r="B3"><v>5</v></c></row>
</sheetData></worksheet>`
	shared := `<?xml version="1.0"?><sst><si><t>a</t></si><si><t>b</t></si></sst>`

	tab, err := ReadXLSX("sparse.xlsx", buildWorkbook(t, sheet, shared))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	b, _ := tab.Column("b")
	if b.Values[0] != nil {
		t.Errorf("gap cell should be missing, got %v", b.Values[0])
	}
	if b.Values[1] != int64(5) {
		t.Errorf("b cell %v", b.Values[1])
	}
}

func TestReadXLSX_NotAZip(t *testing.T) {
	if _, err := ReadXLSX("broken.xlsx", []byte("not a zip")); err == nil {
		t.Errorf("garbage bytes must fail")
	}
}

func TestNormalizeRelPath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tc := range cases {
		if got := normalizeRelPath(tc.in); got != tc.want {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestColIndexFromRef(t *testing.T) {
	cases := map[string]int{"A1": 0, "B7": 1, "Z3": 25, "AA10": 26, "": -1}
	for ref, want := range cases {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
