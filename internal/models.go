package internal

import (
	"time"
)

// Role identifies the author of a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultMaxTokens is shown when the service omits tokenUsage.maxTokens
const DefaultMaxTokens = 6000

// Message is one turn of a conversation, ready for display.
// Messages are values: once appended to a session they are never edited.
type Message struct {
	ID             string    `json:"id" yaml:"id"`
	Role           Role      `json:"role" yaml:"role"`
	Content        string    `json:"content" yaml:"content"`
	Timestamp      time.Time `json:"timestamp" yaml:"timestamp"`
	ConversationID string    `json:"conversationId,omitempty" yaml:"conversation_id,omitempty"`

	Confidence           Confidence           `json:"confidence" yaml:"confidence"`
	Sources              []Source             `json:"sources" yaml:"sources"`
	TokenUsage           TokenUsage           `json:"tokenUsage" yaml:"token_usage"`
	Truncated            bool                 `json:"truncated,omitempty" yaml:"truncated,omitempty"`
	MCPTools             MCPTools             `json:"mcpTools" yaml:"mcp_tools"`
	IsClarifyingQuestion bool                 `json:"isClarifyingQuestion,omitempty" yaml:"is_clarifying_question,omitempty"`
	SuggestedAPIs        []string             `json:"suggestedApis" yaml:"suggested_apis"`
	OriginalQuery        string               `json:"originalQuery,omitempty" yaml:"original_query,omitempty"`
	ClarificationData    map[string]any       `json:"clarificationData" yaml:"clarification_data"`
	NeedsClarification   bool                 `json:"needsClarification,omitempty" yaml:"needs_clarification,omitempty"`
	MultiTurnContext     MultiTurnContext     `json:"multiTurnContext" yaml:"multi_turn_context"`
	IntentClassification IntentClassification `json:"intentClassification" yaml:"intent_classification"`
	ProactiveSuggestions ProactiveSuggestions `json:"proactiveSuggestions" yaml:"proactive_suggestions"`
	SelectedAPI          string               `json:"selectedApi,omitempty" yaml:"selected_api,omitempty"`
	IsError              bool                 `json:"isError,omitempty" yaml:"is_error,omitempty"`
}

// IsUser reports whether the message was written by the merchant
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Confidence is the assistant's self-assessment of an answer
type Confidence struct {
	Level   string   `json:"level,omitempty" yaml:"level,omitempty"` // "High", "Medium", "Low"
	Score   float64  `json:"score,omitempty" yaml:"score,omitempty"` // 0..100
	Factors []string `json:"factors" yaml:"factors"`
}

// IsEmpty reports whether no confidence was attached
func (c Confidence) IsEmpty() bool {
	return c.Level == "" && c.Score == 0 && len(c.Factors) == 0
}

// Source is a document the answer was grounded on
type Source struct {
	ID         string  `json:"id,omitempty" yaml:"id,omitempty"`
	Title      string  `json:"title" yaml:"title"`
	Score      float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Category   string  `json:"category,omitempty" yaml:"category,omitempty"`
	SearchType string  `json:"searchType,omitempty" yaml:"search_type,omitempty"`
	URL        string  `json:"url,omitempty" yaml:"url,omitempty"`
}

// TokenUsage reports model token consumption for one answer
type TokenUsage struct {
	TotalTokens int `json:"totalTokens" yaml:"total_tokens"`
	MaxTokens   int `json:"maxTokens" yaml:"max_tokens"`
}

// IsEmpty reports whether the service sent no usage numbers
func (u TokenUsage) IsEmpty() bool {
	return u.TotalTokens == 0
}

// MCPTools lists the side tools the assistant invoked and their results
type MCPTools struct {
	ToolsUsed   []string              `json:"toolsUsed" yaml:"tools_used"`
	ToolResults map[string]ToolResult `json:"toolResults" yaml:"tool_results"`
}

// IsEmpty reports whether no tool was used
func (t MCPTools) IsEmpty() bool {
	return len(t.ToolsUsed) == 0 && len(t.ToolResults) == 0
}

// ToolResult is the union of every tool's output. Only the fields relevant
// to a given tool are populated.
type ToolResult struct {
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Summary      string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	Calculations []Calculation `json:"calculations" yaml:"calculations"`
	Status       StoreStatus   `json:"status" yaml:"status"`
	Operations   []Operation   `json:"operations" yaml:"operations"`
	Validations  []Validation  `json:"validations" yaml:"validations"`
	Results      []WebResult   `json:"results" yaml:"results"`
}

// Calculation is one calculator or date/time evaluation
type Calculation struct {
	Original  string `json:"original,omitempty" yaml:"original,omitempty"`
	Formatted string `json:"formatted,omitempty" yaml:"formatted,omitempty"`
	Date1     string `json:"date1,omitempty" yaml:"date1,omitempty"`
	Date2     string `json:"date2,omitempty" yaml:"date2,omitempty"`
}

// StoreStatus is the platform status report
type StoreStatus struct {
	OverallStatus      string            `json:"overallStatus,omitempty" yaml:"overall_status,omitempty"`
	OverallDescription string            `json:"overallDescription,omitempty" yaml:"overall_description,omitempty"`
	LastUpdated        string            `json:"lastUpdated,omitempty" yaml:"last_updated,omitempty"`
	Incidents          []StatusEntry     `json:"incidents" yaml:"incidents"`
	Maintenance        []StatusEntry     `json:"maintenance" yaml:"maintenance"`
	Components         []StatusComponent `json:"components" yaml:"components"`
}

// IsEmpty reports whether no status report was attached
func (s StoreStatus) IsEmpty() bool {
	return s.OverallStatus == "" && len(s.Incidents) == 0 && len(s.Maintenance) == 0 && len(s.Components) == 0
}

// StatusEntry is an incident or a scheduled maintenance window
type StatusEntry struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Impact string `json:"impact,omitempty" yaml:"impact,omitempty"`
}

// StatusComponent is the health of one platform component
type StatusComponent struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
}

// Operation is a date/time operation result
type Operation struct {
	Type      string `json:"type" yaml:"type"`
	Formatted string `json:"formatted" yaml:"formatted"`
}

// Validation is one code validator finding set
type Validation struct {
	Type       string           `json:"type" yaml:"type"`
	Value      string           `json:"value,omitempty" yaml:"value,omitempty"`
	Validation ValidationReport `json:"validation" yaml:"validation"`
}

// ValidationReport groups validator messages by severity
type ValidationReport struct {
	Errors      []string `json:"errors" yaml:"errors"`
	Warnings    []string `json:"warnings" yaml:"warnings"`
	Suggestions []string `json:"suggestions" yaml:"suggestions"`
}

// WebResult is one web search hit
type WebResult struct {
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Source  string `json:"source,omitempty" yaml:"source,omitempty"`
}

// MultiTurnContext describes where a turn sits in an ongoing dialogue
type MultiTurnContext struct {
	IsFollowUp      bool            `json:"isFollowUp,omitempty" yaml:"is_follow_up,omitempty"`
	TurnCount       int             `json:"turnCount,omitempty" yaml:"turn_count,omitempty"`
	UserPreferences UserPreferences `json:"userPreferences" yaml:"user_preferences"`
}

// UserPreferences is the merchant profile inferred by the service
type UserPreferences struct {
	MerchantPlanTier string `json:"merchantPlanTier,omitempty" yaml:"merchant_plan_tier,omitempty"`
	StoreType        string `json:"storeType,omitempty" yaml:"store_type,omitempty"`
	Industry         string `json:"industry,omitempty" yaml:"industry,omitempty"`
	ExperienceLevel  string `json:"experienceLevel,omitempty" yaml:"experience_level,omitempty"`
}

// IsEmpty reports whether no profile field is known
func (p UserPreferences) IsEmpty() bool {
	return p == UserPreferences{}
}

// IntentClassification is the service's guess at what the merchant wants
type IntentClassification struct {
	Intent     string  `json:"intent,omitempty" yaml:"intent,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"` // 0..1
}

// ProactiveSuggestions wraps the suggestion list as the service sends it
type ProactiveSuggestions struct {
	Suggestions []Suggestion `json:"suggestions" yaml:"suggestions"`
}

// Suggestion is a tip the assistant offers without being asked
type Suggestion struct {
	Suggestion string `json:"suggestion" yaml:"suggestion"`
	Reasoning  string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
	Link       string `json:"link,omitempty" yaml:"link,omitempty"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	Priority   string `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// ChatResponse is the raw payload returned by the chat and clarify endpoints.
// Every field is optional; NormalizeResponse fills in the gaps.
type ChatResponse struct {
	Answer               string                `json:"answer"`
	Confidence           *Confidence           `json:"confidence,omitempty"`
	Sources              []Source              `json:"sources,omitempty"`
	TokenUsage           *TokenUsage           `json:"tokenUsage,omitempty"`
	Truncated            bool                  `json:"truncated,omitempty"`
	MCPTools             *MCPTools             `json:"mcpTools,omitempty"`
	IsClarifyingQuestion bool                  `json:"isClarifyingQuestion,omitempty"`
	SuggestedAPIs        []string              `json:"suggestedApis,omitempty"`
	OriginalQuery        *string               `json:"originalQuery,omitempty"`
	ClarificationData    map[string]any        `json:"clarificationData,omitempty"`
	NeedsClarification   bool                  `json:"needsClarification,omitempty"`
	MultiTurnContext     *MultiTurnContext     `json:"multiTurnContext,omitempty"`
	IntentClassification *IntentClassification `json:"intentClassification,omitempty"`
	ProactiveSuggestions *ProactiveSuggestions `json:"proactiveSuggestions,omitempty"`
}

// ChatRequest is the body of POST chat
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	Shop      string `json:"shop,omitempty"`
}

// ClarifyRequest is the body of POST clarify
type ClarifyRequest struct {
	ClarificationResponse string `json:"clarificationResponse"`
	OriginalQuestion      string `json:"originalQuestion"`
	SessionID             string `json:"sessionId"`
	Shop                  string `json:"shop,omitempty"`
}

// FeedbackRequest is the body of POST feedback/store
type FeedbackRequest struct {
	MessageID      string `json:"messageId"`
	SessionID      string `json:"sessionId"`
	ConversationID string `json:"conversationId,omitempty"`
	Feedback       bool   `json:"feedback"`
	Rating         *int   `json:"rating,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

// toolDisplayNames maps tool identifiers to the labels shown to merchants
var toolDisplayNames = map[string]string{
	"calculator":     "Calculator",
	"web_search":     "Web Search",
	"shopify_status": "Shopify Status",
	"date_time":      "Date/Time",
	"code_validator": "Code Validator",
}

// ToolDisplayName returns the human label for a tool identifier
func ToolDisplayName(tool string) string {
	if name, ok := toolDisplayNames[tool]; ok {
		return name
	}
	return tool
}
