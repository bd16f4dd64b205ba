package chunker

import "strings"

// DocumentType categorizes a document for retrieval metadata.
type DocumentType string

const (
	// DocTypeManual is an administrative manual or procedure guide.
	DocTypeManual DocumentType = "manual"
	// DocTypeFinancialReport is a financial report.
	DocTypeFinancialReport DocumentType = "financial_report"
	// DocTypeFormula is a formula or calculation reference.
	DocTypeFormula DocumentType = "formula"
	// DocTypeRegulation is a regulation or legal text.
	DocTypeRegulation DocumentType = "regulation"
	// DocTypeGeneral is the default category.
	DocTypeGeneral DocumentType = "general"
)

// Filename classification rules, checked in order; first match wins.
// Keywords cover both Indonesian and English document naming.
var filenameRules = []struct {
	docType  DocumentType
	keywords []string
}{
	{DocTypeManual, []string{"panduan", "manual"}},
	{DocTypeFinancialReport, []string{"laporan", "keuangan", "financial"}},
	{DocTypeFormula, []string{"rumus", "formula"}},
	{DocTypeRegulation, []string{"regulasi", "peraturan", "regulation"}},
}

// Content classification rules, applied only when no filename rule matched.
var contentRules = []struct {
	docType  DocumentType
	keywords []string
}{
	{DocTypeFormula, []string{"rumus", "formula", "perhitungan"}},
	{DocTypeFinancialReport, []string{"laporan keuangan", "neraca", "laba rugi"}},
	{DocTypeManual, []string{"panduan", "prosedur", "langkah"}},
}

// ClassifyDocumentType derives the document category from filename
// substrings first, then a content keyword scan. Filename rules take
// precedence over content rules; the default is DocTypeGeneral.
func ClassifyDocumentType(filename, content string) DocumentType {
	filenameLower := strings.ToLower(filename)
	for _, rule := range filenameRules {
		for _, kw := range rule.keywords {
			if strings.Contains(filenameLower, kw) {
				return rule.docType
			}
		}
	}

	contentLower := strings.ToLower(content)
	for _, rule := range contentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(contentLower, kw) {
				return rule.docType
			}
		}
	}

	return DocTypeGeneral
}
