// Package models contains data types and constants for the TOB chatbot.
package models

// Application identity
const (
	ChatbotName    = "TOB Chatbot"
	ChatbotVersion = "1.0.0"
)

// HTTP boundary between the widget and the chat API
const (
	ChatPath   = "/api/chat"
	HealthPath = "/health"

	// SessionHeader carries the widget session id for log correlation
	SessionHeader = "X-Session-ID"

	DefaultServerURL = "http://localhost:8080"
)

// SSE framing
const (
	EventPrefix  = "data:"
	DoneSentinel = "[DONE]"
)

// Model defaults
const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Input limits
const (
	// MaxQueryLength is the longest query accepted by IsValidQuery
	MaxQueryLength = 1000
	// MaxInputLength caps what the widget input box accepts
	MaxInputLength = 500
	// InputWarnThreshold is where the widget starts showing remaining characters
	InputWarnThreshold = 450
)

// RAG tuning for the company-info workflow
const (
	RAGChunkSize   = 1000
	RAGOverlapSize = 200
	RAGTopK        = 5
)

// CompanyInfoType is one category of the company knowledge base
type CompanyInfoType string

const (
	InfoCompanyProfile   CompanyInfoType = "company-profile"
	InfoCompanyStructure CompanyInfoType = "company-structure"
	InfoPartnerWorkshops CompanyInfoType = "partner-workshops"
	InfoServices         CompanyInfoType = "services"
	InfoContactInfo      CompanyInfoType = "contact-info"
	InfoPolicies         CompanyInfoType = "policies"
)

// CompanyInfoTypes lists every known category in display order
var CompanyInfoTypes = []CompanyInfoType{
	InfoCompanyProfile,
	InfoCompanyStructure,
	InfoPartnerWorkshops,
	InfoServices,
	InfoContactInfo,
	InfoPolicies,
}

// IsCompanyInfoType reports whether s names a known category
func IsCompanyInfoType(s string) bool {
	for _, t := range CompanyInfoTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// User-facing error messages
const (
	ErrMsgInvalidQuery = "Unable to process your query. Please try rephrasing."
	ErrMsgNoContext    = "No relevant information found for your query."
	ErrMsgGeneral      = "An error occurred while processing your request."
)
