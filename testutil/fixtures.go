package testutil

// Canned assistant service payloads shared by the api, cmd and ui tests.

// AnswerJSON is a chat reply carrying every annotation the client displays
const AnswerJSON = `{
  "answer": "Use the **Admin API** to create products:\n` + "```graphql\\nmutation { productCreate(input: {title: \\\"Hat\\\"}) { product { id } } }\\n```" + `\nSee [the docs](https://shopify.dev/docs/api).",
  "confidence": {"level": "High", "score": 92, "factors": ["Exact documentation match", "Recent source"]},
  "sources": [
    {"id": "s1", "title": "productCreate mutation", "score": 0.93, "category": "api", "searchType": "hybrid", "url": "https://shopify.dev/docs/api/admin-graphql/latest/mutations/productCreate"},
    {"id": "s2", "title": "Products overview", "score": 0.71, "category": "guide", "searchType": "keyword"}
  ],
  "tokenUsage": {"totalTokens": 1834},
  "mcpTools": {
    "toolsUsed": ["calculator", "shopify_status"],
    "toolResults": {
      "calculator": {"calculations": [{"original": "19.99 * 3", "formatted": "59.97"}]},
      "shopify_status": {"status": {"overallStatus": "operational", "overallDescription": "All systems operational", "components": [{"name": "Admin", "status": "operational"}]}}
    }
  },
  "multiTurnContext": {"isFollowUp": true, "turnCount": 2, "userPreferences": {"merchantPlanTier": "plus", "storeType": "apparel"}},
  "intentClassification": {"intent": "setup", "confidence": 0.87},
  "proactiveSuggestions": {"suggestions": [{"suggestion": "Enable inventory tracking", "reasoning": "New products default to untracked", "category": "inventory", "priority": "high", "link": "https://help.shopify.com/inventory"}]}
}`

// MinimalAnswerJSON is a chat reply with nothing but the answer
const MinimalAnswerJSON = `{"answer": "Hello! How can I help your store today?"}`

// APIChoiceJSON is a reply asking which API the merchant meant
const APIChoiceJSON = `{
  "answer": "Which API are you working with?",
  "isClarifyingQuestion": true,
  "suggestedApis": ["Admin API", "Storefront API"],
  "originalQuery": "How do I fetch products?",
  "clarificationData": {"reason": "ambiguous_api"}
}`

// FreeTextClarificationJSON is a reply asking an open follow-up question
const FreeTextClarificationJSON = `{
  "answer": "Could you tell me which sales channel you mean?",
  "needsClarification": true
}`

// HistoryJSON is the history of one session
const HistoryJSON = `{
  "messages": [
    {"id": "user_1709287200000", "role": "user", "content": "How do I add a product?", "timestamp": "2024-03-01T10:00:00Z"},
    {"id": "assistant_1709287201000", "role": "assistant", "content": "Go to **Products** and click *Add product*.", "timestamp": "2024-03-01T10:00:01Z", "conversationId": "conv-42", "sources": [{"title": "Adding products"}]}
  ]
}`

// ConversationsJSON lists past conversations
const ConversationsJSON = `{
  "conversations": [
    {"sessionId": "session_1709287200000_abc123def", "title": "Adding products", "updatedAt": "2024-03-01T10:00:01Z", "messageCount": 2, "lastMessage": {"content": "Go to Products and click Add product.", "role": "assistant"}},
    {"sessionId": "session_1709200000000_zzz999yyy", "title": "Billing question", "updatedAt": "2024-02-29T09:00:00Z", "messageCount": 0}
  ]
}`

// AnalyticsJSON is a successful dashboard response
const AnalyticsJSON = `{
  "success": true,
  "data": {
    "totalQuestions": 128,
    "topQuestions": [{"question": "How do I add a product?", "count": 14}, {"question": "Why was my payout delayed?", "count": 9}],
    "intentDistribution": {"setup": 50, "billing": 20, "troubleshooting": 58},
    "confidenceTrends": {"averageConfidence": 78.5, "confidenceDistribution": {"high": 80, "medium": 38, "low": 10}},
    "merchantSegmentInsights": {
      "byPlanTier": {"plus": {"count": 40, "intents": {"setup": 10, "billing": 30}}},
      "byStoreType": {"apparel": {"count": 22, "intents": {"setup": 22}}}
    },
    "sourceEffectiveness": [{"title": "Products overview", "category": "guide", "usageCount": 31, "averageScore": 0.82}]
  }
}`

// AnalyticsFailureJSON is a dashboard response reporting an error
const AnalyticsFailureJSON = `{"success": false, "error": "analytics store unavailable"}`

// FeedbackOKJSON acknowledges a stored vote
const FeedbackOKJSON = `{"success": true}`
