package intent

import (
	"WhatsGrapp/entity"
	"slices"
	"strings"
	"unicode"
)

const maxSuggestions = 3

var allowedActions = []string{
	entity.ActionShowProducts,
	entity.ActionRegisterMerchant,
	entity.ActionAddProduct,
	entity.ActionCheckout,
	entity.ActionContinueChat,
}

var knownIntents = []string{
	entity.IntentGreeting,
	entity.IntentProductInquiry,
	entity.IntentMerchantRegistration,
	entity.IntentAddProduct,
	entity.IntentCheckout,
	entity.IntentGeneral,
	entity.IntentHelp,
}

// keywordRule maps single words and phrases to an intent. Rules are checked in order.
type keywordRule struct {
	intent  string
	words   []string
	phrases []string
}

var classifyRules = []keywordRule{
	{intent: entity.IntentGreeting, words: []string{"hello", "hi", "hey"}},
	{intent: entity.IntentMerchantRegistration, words: []string{"register", "merchant", "business"}},
	{intent: entity.IntentAddProduct, words: []string{"sell"}, phrases: []string{"add product", "new product"}},
	{intent: entity.IntentCheckout, words: []string{"buy", "purchase", "checkout", "pay"}},
	{intent: entity.IntentProductInquiry, words: []string{"product", "products", "show", "list", "browse"}},
	{intent: entity.IntentHelp, words: []string{"help", "support", "how"}},
}

// ClassifyIntent maps free text, or an intent name, to one of the known intents.
func ClassifyIntent(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if slices.Contains(knownIntents, normalized) {
		return normalized
	}
	words := tokenize(normalized)
	for _, rule := range classifyRules {
		if hasAnyWord(words, rule.words...) || hasAnyPhrase(normalized, rule.phrases...) {
			return rule.intent
		}
	}
	return entity.IntentGeneral
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func hasAnyWord(words []string, candidates ...string) bool {
	for _, c := range candidates {
		if slices.Contains(words, c) {
			return true
		}
	}
	return false
}

func hasAnyPhrase(text string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

var defaultSuggestions = map[string][]string{
	entity.IntentGreeting:             {"Browse Products 🛍️", "Register as Merchant 🏪", "Get Help 💡"},
	entity.IntentProductInquiry:       {"Show All Products 📱", "Search iPhone 📱", "Browse Categories 🗂️"},
	entity.IntentMerchantRegistration: {"Start Registration 📝", "Learn More 📖", "View Requirements 📋"},
	entity.IntentAddProduct:           {"Add New Product ➕", "Manage Products 📦", "View My Store 🏪"},
	entity.IntentCheckout:             {"Proceed to Payment 💳", "View Cart 🛒", "Continue Shopping 🛍️"},
	entity.IntentHelp:                 {"Browse Products 🛍️", "Contact Support 📞", "View Tutorial 📺"},
	entity.IntentGeneral:              {"Browse Products 🛍️", "Register Merchant 🏪", "Get Help 💡"},
}

// DefaultSuggestions returns the quick replies offered for an intent.
func DefaultSuggestions(intent string) []string {
	if s, ok := defaultSuggestions[intent]; ok {
		return slices.Clone(s)
	}
	return slices.Clone(defaultSuggestions[entity.IntentGeneral])
}

// Normalize repairs an answer produced by a language model.
func Normalize(answer *entity.AiAnswer, userMessage string) {
	if strings.TrimSpace(answer.Text) == "" {
		answer.Text = "I understand. How can I help you further?"
	}

	if slices.Contains(knownIntents, answer.Intent) {
		// keep
	} else if answer.Intent != "" {
		answer.Intent = ClassifyIntent(answer.Intent)
	} else {
		answer.Intent = ClassifyIntent(userMessage)
	}

	if len(answer.Suggestions) == 0 {
		answer.Suggestions = DefaultSuggestions(answer.Intent)
	}
	if len(answer.Suggestions) > maxSuggestions {
		answer.Suggestions = answer.Suggestions[:maxSuggestions]
	}
	if answer.ProductRecommendations == nil {
		answer.ProductRecommendations = []string{}
	}

	if answer.NextAction != nil && !slices.Contains(allowedActions, answer.NextAction.Type) {
		answer.NextAction = nil
	}
}
