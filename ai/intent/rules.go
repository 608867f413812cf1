package intent

import (
	"WhatsGrapp/entity"
	"fmt"
	"strconv"
	"strings"
)

const SourceRules = "rules"

// RuleBased answers without a language model, by keyword cascade.
func RuleBased(c ChatContext) entity.AiAnswer {
	message := strings.ToLower(strings.TrimSpace(c.Message))
	words := tokenize(message)

	// Structured "a, b, c" inputs first, so their keywords don't trigger the menus below
	if answer, ok := structuredInput(c.Message, words); ok {
		return answer
	}

	switch {
	case hasAnyWord(words, "hello", "hi", "hey", "start"):
		return entity.AiAnswer{
			Text: `🎉 Welcome to WhatsGrapp! I'm your AI business assistant.

I can help you with:
🏪 Setting up your business profile
📦 Adding and managing products
💳 Creating payment links
📊 Analytics and insights
🛒 Processing orders

What would you like to do first?`,
			Intent:      entity.IntentGreeting,
			Suggestions: []string{"Setup Business 🏪", "Add Product 📦", "Browse Products 🛍️"},
		}

	case hasAnyWord(words, "business", "setup", "merchant", "register"):
		return entity.AiAnswer{
			Text: `🏪 Let's set up your business profile!

Please provide your business details in this format:
"Business Name, Phone Number, Description"

📝 Example:
"Tech Store, +65 9123 4567, We sell latest electronics and gadgets"

This will register your business on WhatsGrapp!`,
			Intent:      entity.IntentMerchantRegistration,
			Suggestions: []string{"Tech Store Example", "Fashion Boutique Setup", "Food Business Setup"},
		}

	case hasAnyWord(words, "product", "add", "item", "sell"):
		return entity.AiAnswer{
			Text: `📦 Ready to add a new product!

Use this format:
"Product Name, Price, Description"

📱 Examples:
• iPhone 15, 1200, Latest smartphone with advanced camera
• MacBook Pro, 2500, Professional laptop for creators
• AirPods Pro, 300, Wireless earbuds with noise cancellation

I'll create a checkout link for you instantly!`,
			Intent:      entity.IntentAddProduct,
			Suggestions: []string{"iPhone 15, 1200, Latest smartphone", "MacBook Pro, 2500, Professional laptop", "Samsung Galaxy, 800, Android phone"},
		}

	case hasAnyWord(words, "buy", "purchase", "checkout", "payment"):
		names := productNames(c.Products, 3)
		var sb strings.Builder
		sb.WriteString("🛒 Ready to help you with checkout!\n\n")
		if len(names) > 0 {
			sb.WriteString("Here are some popular products:\n")
			for i, name := range names {
				sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, name))
			}
			sb.WriteString("\nJust tell me which one you'd like to buy!")
		} else {
			sb.WriteString("Tell me which product you'd like to purchase, or browse our products first.")
		}
		sb.WriteString("\n\nI can generate instant payment links for any product!")

		suggestions := names
		if len(suggestions) == 0 {
			suggestions = []string{"Browse Products 🛍️", "View All Items 👀", "Get Help 💡"}
		}
		return entity.AiAnswer{
			Text:                   sb.String(),
			Intent:                 entity.IntentCheckout,
			Suggestions:            suggestions,
			ProductRecommendations: names,
		}

	case hasAnyWord(words, "show", "list", "browse", "products"):
		var sb strings.Builder
		sb.WriteString("🛍️ Here's what's available:\n\n")
		suggestions := []string{"Add First Product 📦", "Setup Business 🏪", "Get Help 💡"}
		if len(c.Products) == 0 {
			sb.WriteString("No products available yet. Add some products first!\n\nWould you like to add your first product?")
		} else {
			for i, p := range c.Products {
				if i == 5 {
					break
				}
				sb.WriteString(fmt.Sprintf("• %s - %.2f\n", p.Name, p.Price))
			}
			sb.WriteString("\nTell me which one interests you, or I can help you add more products!")
			suggestions = []string{"Add More Products 📦", "Create Payment Link 💳", "View All Details 👀"}
		}
		return entity.AiAnswer{
			Text:                   sb.String(),
			Intent:                 entity.IntentProductInquiry,
			Suggestions:            suggestions,
			ProductRecommendations: productNames(c.Products, 3),
		}

	case hasAnyWord(words, "help", "support", "how") || strings.Contains(message, "?"):
		return entity.AiAnswer{
			Text: `💡 I'm here to help! Here's what I can do:

🏪 *Business Setup*: Register your merchant profile
📦 *Product Management*: Add, edit, and organize products
💳 *Payment Links*: Generate instant checkout links
📊 *Analytics*: Track sales and customer data
🛒 *Order Processing*: Handle customer purchases

What would you like to learn more about?`,
			Intent:      entity.IntentHelp,
			Suggestions: []string{"Business Setup Guide 🏪", "Add Product Tutorial 📦", "Payment Links 💳"},
		}
	}

	return entity.AiAnswer{
		Text: fmt.Sprintf(`I understand you're asking about "%s".

I'm your WhatsGrapp AI assistant and I can help you with:

🏪 *Business Setup* - Register your merchant profile
📦 *Product Management* - Add and organize your inventory
💳 *Payment Processing* - Generate instant checkout links
📊 *Analytics* - Track your business performance
🛒 *Customer Support* - Handle orders and inquiries

What specific area would you like help with?`, strings.TrimSpace(c.Message)),
		Intent:      entity.IntentGeneral,
		Suggestions: []string{"Setup Business 🏪", "Add Product 📦", "Browse Products 🛍️"},
	}
}

// structuredInput recognizes "Name, Phone, Description" registrations and
// "Name, Price, Description" products.
func structuredInput(raw string, words []string) (entity.AiAnswer, bool) {
	parts := strings.Split(raw, ",")
	if len(parts) < 3 {
		return entity.AiAnswer{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	name, second := parts[0], parts[1]
	description := strings.Join(parts[2:], ", ")
	if name == "" || second == "" || description == "" {
		return entity.AiAnswer{}, false
	}

	if hasAnyWord(words, "store", "shop", "business", "company") && looksLikePhone(second) {
		return entity.AiAnswer{
			Text: fmt.Sprintf(`✅ Perfect! I'll register "%s" for you.

📋 Business Details:
• Name: %s
• Phone: %s
• Description: %s

Your business will be live on WhatsGrapp in moments! 🚀`, name, name, second, description),
			Intent:      entity.IntentMerchantRegistration,
			Suggestions: []string{"Add First Product 📦", "Create Payment Link 💳", "View Dashboard 📊"},
			NextAction: &entity.NextAction{
				Type: entity.ActionRegisterMerchant,
				Data: map[string]any{"name": name, "phone": second, "description": description},
			},
		}, true
	}

	if price, ok := parseAmount(second); ok {
		return entity.AiAnswer{
			Text: fmt.Sprintf(`✅ "%s" is ready to be added!

💰 Price: %.2f
📝 Description: %s

I'll create a checkout link for it right away. 🚀`, name, price, description),
			Intent:      entity.IntentAddProduct,
			Suggestions: []string{"Add Another Product 📦", "View All Products 👀", "Create Payment Link 💳"},
			NextAction: &entity.NextAction{
				Type: entity.ActionAddProduct,
				Data: map[string]any{"name": name, "price": price, "description": description},
			},
		}, true
	}

	return entity.AiAnswer{}, false
}

func looksLikePhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7
}

func parseAmount(s string) (float64, bool) {
	cleaned := strings.TrimLeft(strings.TrimSpace(s), "$")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func productNames(products []entity.Product, limit int) []string {
	names := make([]string, 0, limit)
	for _, p := range products {
		if len(names) == limit {
			break
		}
		names = append(names, p.Name)
	}
	return names
}
