package record

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Status constants.
const (
	StatusOpen      = "open"
	StatusFiled     = "filed"
	StatusPreFiling = "pre-filing"
	StatusClosed    = "closed"
	StatusArchived  = "archived"
)

// Attention constants.
const (
	AttentionWaiting = "waiting"
	AttentionNeeds   = "needs_attention"
)

// DefaultCaseType is assigned when a case is created without a type.
const DefaultCaseType = "Personal Injury"

// MaxFocusLength caps the current_task field; longer focus text is truncated
// before it reaches the dataset or the focus log.
const MaxFocusLength = 280

// validStatuses is the closed status set.
var validStatuses = []string{
	StatusOpen, StatusFiled, StatusPreFiling, StatusClosed, StatusArchived,
}

// validAttentions is the closed attention set.
var validAttentions = []string{AttentionWaiting, AttentionNeeds}

// CaseTypes is the canonical set of case types, in display order.
var CaseTypes = []string{
	"Personal Injury",
	"MVA",
	"Wrongful Death",
	"Catastrophic Injury",
	"Medical Malpractice",
	"Divorce",
	"Environmental",
	"Other",
}

// caseTypeAliases maps legacy case type labels, still present in old data
// files, to their canonical replacements.
var caseTypeAliases = map[string]string{
	"Family Law":       "Divorce",
	"Probate":          "Other",
	"Estate Planning":  "Other",
	"Business Law":     "Other",
	"Real Estate":      "Other",
	"Workers Comp":     "Personal Injury",
	"Intentional Tort": "Other",
	"Criminal":         "Other",
}

// IsValidStatus reports whether status is in the closed status set.
func IsValidStatus(status string) bool {
	return slices.Contains(validStatuses, status)
}

// IsValidAttention reports whether attention is in the closed attention set.
func IsValidAttention(attention string) bool {
	return slices.Contains(validAttentions, attention)
}

// IsValidCaseType reports whether caseType is canonical.
func IsValidCaseType(caseType string) bool {
	return slices.Contains(CaseTypes, caseType)
}

// NormalizeCaseType returns the canonical case type label for a stored
// value, resolving legacy aliases. Unknown values pass through unchanged so
// validation can name them.
func NormalizeCaseType(caseType string) string {
	if canonical, ok := caseTypeAliases[caseType]; ok {
		return canonical
	}

	return caseType
}

// CleanText collapses internal whitespace and trims the ends. A maxLength
// of 0 means unlimited; otherwise the cleaned text is truncated to that many
// runes. Truncation never splits a multi-byte rune: the result must survive
// a JSON encode/decode cycle byte-identical.
func CleanText(text string, maxLength int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if maxLength <= 0 || utf8.RuneCountInString(cleaned) <= maxLength {
		return cleaned
	}

	runes := []rune(cleaned)

	return string(runes[:maxLength])
}
