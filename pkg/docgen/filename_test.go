package docgen

import "testing"

func TestDocumentFileName(t *testing.T) {
	tests := []struct {
		project, docType, date string
		expected               string
	}{
		{"P-12", "Invoice", "2024-05-01", "P-12_Invoice_2024-05-01.docx"},
		{"", "", "", "NO_DOC_DATE.docx"},
		{"P-12", " ", "2024-05-01", "P-12_DOC_2024-05-01.docx"},
	}
	for _, tt := range tests {
		if got := DocumentFileName(tt.project, tt.docType, tt.date); got != tt.expected {
			t.Errorf("DocumentFileName(%q, %q, %q) = %q, want %q", tt.project, tt.docType, tt.date, got, tt.expected)
		}
	}
}

func TestEnsurePDFExtension(t *testing.T) {
	tests := map[string]string{
		"":          "sealed.pdf",
		"  ":        "sealed.pdf",
		"contract":  "contract.pdf",
		"scan.PDF":  "scan.PDF",
		"a.pdf.bak": "a.pdf.bak.pdf",
	}
	for input, want := range tests {
		if got := EnsurePDFExtension(input); got != want {
			t.Errorf("EnsurePDFExtension(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(`a/b\c:d*e?f"g<h>i|j`); got != "a_b_c_d_e_f_g_h_i_j" {
		t.Errorf("SanitizeFileName = %q", got)
	}
}

func TestASCIIFallback(t *testing.T) {
	tests := map[string]string{
		"P-1_确认单_2024.docx": "P-1_2024.docx",
		"a  b\tc.docx":      "a_b_c.docx",
		"plain.docx":        "plain.docx",
	}
	for input, want := range tests {
		if got := ASCIIFallback(input); got != want {
			t.Errorf("ASCIIFallback(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	got := ContentDisposition("报告 1.docx")
	want := `attachment; filename="_1.docx"; filename*=UTF-8''%E6%8A%A5%E5%91%8A%201.docx`
	if got != want {
		t.Errorf("ContentDisposition = %q, want %q", got, want)
	}
}
