package document

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/green-loan-compliance/internal/core/domain"
)

type storageFake struct {
	objects map[string][]byte
}

func (f *storageFake) Save(context.Context, string, io.Reader) (int64, error) { return 0, nil }

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(string(f.objects[key]))), nil
}

func (f *storageFake) List(context.Context, string) ([]string, error) { return nil, nil }

func TestExtractHTMLSkipsScripts(t *testing.T) {
	raw := []byte(`<html><head><style>p{}</style><script>var x = "hidden";</script></head>
<body><h1>Green Bond</h1><p>Proceeds fund &amp; maintain wind farms.</p></body></html>`)
	got, err := ExtractBytes("report.html", raw)
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if strings.Contains(got, "hidden") || strings.Contains(got, "p{}") {
		t.Fatalf("script or style leaked: %q", got)
	}
	if !strings.Contains(got, "Proceeds fund & maintain wind farms.") || !strings.Contains(got, "Green Bond\n") {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractMarkdown(t *testing.T) {
	got, err := ExtractBytes("notes.md", []byte("# Targets\n\n- Reduce **Scope 1** by 40%\n"))
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if strings.Contains(got, "#") || strings.Contains(got, "**") {
		t.Fatalf("markdown syntax leaked: %q", got)
	}
	if !strings.Contains(got, "Reduce Scope 1 by 40%") {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractXLSX(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetCellValue("Sheet1", "A1", "Scope 1"); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	if err := f.SetCellValue("Sheet1", "B1", 1500); err != nil {
		t.Fatalf("SetCellValue() error = %v", err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	got, err := ExtractBytes("emissions.xlsx", buf.Bytes())
	if err != nil {
		t.Fatalf("ExtractBytes() error = %v", err)
	}
	if !strings.Contains(got, "Sheet: Sheet1") || !strings.Contains(got, "Scope 1\t1500") {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractRejectsBinary(t *testing.T) {
	_, err := ExtractBytes("scan.bin", []byte{0xff, 0xfe, 0x00, 0x81})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestExtractorReadsFromStorage(t *testing.T) {
	storage := &storageFake{objects: map[string][]byte{"k": []byte("  plain text  \n")}}
	got, err := NewExtractor(storage).Extract(context.Background(), domain.LoanDocument{Filename: "a.txt", StorageKey: "k"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got != "plain text" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestSupported(t *testing.T) {
	if !Supported("A.PDF") || !Supported("x.docx") || Supported("image.png") {
		t.Fatalf("unexpected Supported() results")
	}
}
