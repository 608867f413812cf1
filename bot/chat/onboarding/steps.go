package onboarding

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/entity"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxPrice = 999999
	maxStock = 999999
)

type flow struct {
	merchants MerchantService
	products  ProductService
	notifier  Notifier
	links     Links
	log       *slog.Logger
}

var startMenu = chat.Choice{
	{Keywords: []string{"1", "start", "create"}, Target: StepStoreName},
	{Keywords: []string{"2", "status", "check"}, Target: StepStatusCheck},
	{Keywords: []string{"3", "help", "assistance"}, Target: StepHelp},
}

// start is the welcome menu.
func (f *flow) start() *chat.Step {
	return &chat.Step{
		ID: StepStart,
		Prompt: chat.FormatNumberedMenu(
			"🎉 Welcome to WhatsGrapp!\n\nLet's set up your online store in minutes:",
			[]string{"START - Create a new store", "STATUS - Check your store status", "HELP - Get assistance"},
			"Reply with a number or keyword to continue.",
		),
		Next: startMenu,
	}
}

func (f *flow) help() *chat.Step {
	return &chat.Step{
		ID: StepHelp,
		Prompt: `ℹ️ *How WhatsGrapp works*

1. Tell us your store name and what you sell
2. Pick the currency you charge in
3. Add products with a price and stock
4. Share the checkout links with your customers

Payments land in your dashboard and you can add more products any time.

Reply with anything to go back to the menu.`,
		Next: chat.Goto(StepStart),
	}
}

// statusCheck looks up the store registered for the sender's phone.
func (f *flow) statusCheck() *chat.Step {
	return &chat.Step{
		ID: StepStatusCheck,
		Enter: func(ctx context.Context, s *chat.Session) error {
			s.Data.Status = ""
			merchant, err := f.merchants.MerchantByPhone(ctx, s.Phone)
			if err != nil {
				return fmt.Errorf("looking up merchant: %w", err)
			}
			if merchant == nil {
				return nil
			}
			products, err := f.products.MerchantProducts(ctx, merchant.ID)
			if err != nil {
				return fmt.Errorf("listing products: %w", err)
			}
			sales, err := f.merchants.SalesStats(ctx, merchant.ID)
			if err != nil {
				return fmt.Errorf("loading sales: %w", err)
			}
			s.Data.Status = f.storeStatus(merchant, products, sales)
			return nil
		},
		Render: func(s *chat.Session) string {
			if s.Data.Status == "" {
				return "📭 We couldn't find a store for this number yet.\n\nReply with anything to go back to the menu."
			}
			return fmt.Sprintf("📊 Your store status:\n\n%s\n\nReply with anything to go back to the menu.", s.Data.Status)
		},
		Next: chat.Goto(StepStart),
	}
}

const statusProductLimit = 5

// storeStatus lists the catalog and the paid orders of a store.
func (f *flow) storeStatus(merchant *entity.Merchant, products []*entity.Product, sales entity.SalesStats) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏪 *%s*\n💰 Currency: %s\n📦 Products: %d\n", merchant.StoreName, merchant.Currency, len(products)))
	for i, p := range products {
		if i == statusProductLimit {
			sb.WriteString(fmt.Sprintf("  … and %d more\n", len(products)-statusProductLimit))
			break
		}
		sb.WriteString(fmt.Sprintf("  • %s - %s (%d in stock)\n",
			p.Name, FormatPrice(p.Price, merchant.Currency, merchant.Locale), p.Stock))
	}
	sb.WriteString(fmt.Sprintf("🧾 Orders: %d\n💵 Sales: %s\n📱 Store: %s",
		sales.Orders, FormatPrice(sales.Revenue, merchant.Currency, merchant.Locale), f.links.Store(merchant.ID)))
	return sb.String()
}

func (f *flow) storeName() *chat.Step {
	return &chat.Step{
		ID: StepStoreName,
		Prompt: `🏪 What's your store name?

Examples:
• "Sarah's Bakery"
• "Tech Gadgets Store"
• "Fashion Boutique"

Enter your store name:`,
		Validate: lengthBetween(2, 50,
			"Store name must be at least 2 characters",
			"Store name must be less than 50 characters"),
		Handle: func(_ context.Context, s *chat.Session, input string) error {
			s.Data.Store.Name = strings.TrimSpace(input)
			return nil
		},
		Next: chat.Goto(StepBusinessDetails),
	}
}

func (f *flow) businessDetails() *chat.Step {
	return &chat.Step{
		ID: StepBusinessDetails,
		Prompt: `📝 Tell me about your business:

What do you sell? Who are your customers?

Examples:
• "Fresh baked goods and custom cakes for local customers"
• "Electronics and accessories for tech enthusiasts"
• "Trendy clothing for young professionals"

Describe your business:`,
		Validate: lengthBetween(10, 200,
			"Please provide more details (at least 10 characters)",
			"Please keep it under 200 characters"),
		Handle: func(_ context.Context, s *chat.Session, input string) error {
			s.Data.Store.Details = strings.TrimSpace(input)
			return nil
		},
		Next: chat.Goto(StepCurrencySelection),
	}
}

func (f *flow) currencySelection() *chat.Step {
	options := make([]string, 0, len(entity.CurrencyMenu))
	for _, opt := range entity.CurrencyMenu {
		options = append(options, fmt.Sprintf("%s - %s", opt.Currency, opt.Name))
	}
	return &chat.Step{
		ID:     StepCurrencySelection,
		Prompt: chat.FormatNumberedMenu("💰 Choose your currency:", options, "Reply with the number:"),
		Validate: func(input string) error {
			if _, ok := currencyOption(input); !ok {
				return fmt.Errorf("Please select a number from 1-%d", len(entity.CurrencyMenu))
			}
			return nil
		},
		Handle: func(_ context.Context, s *chat.Session, input string) error {
			opt, _ := currencyOption(input)
			s.Data.Store.Currency = opt.Currency
			s.Data.Store.Locale = opt.Locale
			return nil
		},
		Next: chat.Goto(StepStoreCreation),
	}
}

func currencyOption(input string) (entity.CurrencyOption, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(entity.CurrencyMenu) {
		return entity.CurrencyOption{}, false
	}
	return entity.CurrencyMenu[n-1], true
}

func (f *flow) storeCreation() *chat.Step {
	return &chat.Step{
		ID:     StepStoreCreation,
		Prompt: "✅ Creating your store...",
		Auto:   true,
		Enter: func(ctx context.Context, s *chat.Session) error {
			store := s.Data.Store
			id, err := f.merchants.CreateMerchant(ctx, s.Phone, store.Name, store.Details, store.Currency, store.Locale)
			if err != nil {
				return fmt.Errorf("creating merchant: %w", err)
			}
			s.Data.Store.MerchantID = id
			f.log.Info("merchant created",
				slog.String("merchant_id", id),
				slog.String("store", store.Name),
			)
			return nil
		},
		Next: chat.Goto(StepAddProductPrompt),
	}
}

func (f *flow) addProductPrompt() *chat.Step {
	return &chat.Step{
		ID: StepAddProductPrompt,
		Prompt: chat.FormatNumberedMenu(
			"🎉 Store created successfully!\n\nWould you like to add your first product?",
			[]string{"YES - Add a product", "NO - Get my store links", "HELP - Learn about products"},
			"Reply with a number:",
		),
		Next: chat.Choice{
			{Keywords: []string{"1", "yes", "add"}, Target: StepProductName},
			{Keywords: []string{"2", "no", "links"}, Target: StepStoreComplete},
			{Keywords: []string{"3", "help", "learn"}, Target: StepProductHelp},
		},
	}
}

func (f *flow) productHelp() *chat.Step {
	return &chat.Step{
		ID: StepProductHelp,
		Prompt: `📦 *About products*

Each product needs a name, a price and how many you have in stock.
Every product gets its own checkout link and an embed code for your website.
Stock goes down automatically when a customer pays.

Reply with anything to continue.`,
		Next: chat.Goto(StepAddProductPrompt),
	}
}

func (f *flow) productName() *chat.Step {
	return &chat.Step{
		ID: StepProductName,
		Prompt: `📦 What's your product name?

Examples:
• "Chocolate Chip Cookies"
• "Wireless Bluetooth Headphones"
• "Cotton T-Shirt - Blue"

Enter product name:`,
		Validate: lengthBetween(2, 100,
			"Product name must be at least 2 characters",
			"Product name must be less than 100 characters"),
		Handle: func(_ context.Context, s *chat.Session, input string) error {
			s.Data.Draft = chat.ProductDraft{Name: strings.TrimSpace(input)}
			return nil
		},
		Next: chat.Goto(StepProductPrice),
	}
}

func (f *flow) productPrice() *chat.Step {
	return &chat.Step{
		ID:     StepProductPrice,
		Prompt: "💲 What's the price?\n\nEnter just the number (e.g., 29.99 or 150):",
		Validate: func(input string) error {
			_, err := ParsePrice(input)
			return err
		},
		Handle: func(_ context.Context, s *chat.Session, input string) error {
			price, err := ParsePrice(input)
			if err != nil {
				return err
			}
			s.Data.Draft.Price = price
			return nil
		},
		Next: chat.Goto(StepProductStock),
	}
}

func (f *flow) productStock() *chat.Step {
	return &chat.Step{
		ID:     StepProductStock,
		Prompt: "📊 How many do you have in stock?\n\nEnter quantity (e.g., 50):",
		Validate: func(input string) error {
			_, err := ParseStock(input)
			return err
		},
		Handle: func(_ context.Context, s *chat.Session, input string) error {
			stock, err := ParseStock(input)
			if err != nil {
				return err
			}
			s.Data.Draft.Stock = stock
			return nil
		},
		Next: chat.Goto(StepProductCreation),
	}
}

// productCreation moves the draft into the product list. The product is
// listed even when the catalog write fails; its Reference keeps the link unique.
func (f *flow) productCreation() *chat.Step {
	return &chat.Step{
		ID:     StepProductCreation,
		Prompt: "✅ Creating your product...",
		Auto:   true,
		Enter: func(ctx context.Context, s *chat.Session) error {
			product := s.Data.Draft
			product.Reference = uuid.NewString()
			s.Data.Draft = chat.ProductDraft{}

			var err error
			if merchantID := s.Data.Store.MerchantID; merchantID == "" {
				err = errors.New("store has no merchant id")
			} else {
				product.ID, err = f.products.CreateProduct(ctx, merchantID, product.Name, product.Price, product.Stock)
			}
			s.Data.Products = append(s.Data.Products, product)

			if err != nil {
				return fmt.Errorf("creating product: %w", err)
			}
			return nil
		},
		Next: chat.Goto(StepProductComplete),
	}
}

var productMenu = chat.Choice{
	{Keywords: []string{"1", "another", "add"}, Target: StepProductName},
	{Keywords: []string{"2", "link", "checkout"}, Target: StepCheckoutLink},
	{Keywords: []string{"3", "embed", "code"}, Target: StepEmbedCode},
	{Keywords: []string{"4", "finish", "done"}, Target: StepStoreComplete},
}

func productMenuText(title string) string {
	return chat.FormatNumberedMenu(
		title+"\n\nWould you like to:",
		[]string{"Add another product", "Get checkout link for this product", "Get embed code", "Finish setup"},
		"Reply with a number:",
	)
}

func (f *flow) productComplete() *chat.Step {
	return &chat.Step{
		ID: StepProductComplete,
		Render: func(s *chat.Session) string {
			title := "🎉 Product added successfully!"
			if p, ok := s.Data.LastProduct(); ok {
				title = fmt.Sprintf("%s\n\n📦 %s - %s (%d in stock)", title,
					p.Name, FormatPrice(p.Price, s.Data.Store.Currency, s.Data.Store.Locale), p.Stock)
			}
			return productMenuText(title)
		},
		Next: productMenu,
	}
}

func (f *flow) checkoutLink() *chat.Step {
	return &chat.Step{
		ID: StepCheckoutLink,
		Render: func(s *chat.Session) string {
			p, ok := s.Data.LastProduct()
			if !ok {
				return productMenuText("⚠️ No product yet.")
			}
			url := f.links.Checkout(s.Data.Store.MerchantID, p.CheckoutKey())
			return productMenuText(fmt.Sprintf("💳 Checkout link for %s:\n%s\n\nShare it with your customers!", p.Name, url))
		},
		Next: productMenu,
	}
}

func (f *flow) embedCode() *chat.Step {
	return &chat.Step{
		ID: StepEmbedCode,
		Render: func(s *chat.Session) string {
			p, ok := s.Data.LastProduct()
			if !ok {
				return productMenuText("⚠️ No product yet.")
			}
			code := f.links.EmbedCode(s.Data.Store.MerchantID, p.CheckoutKey())
			return productMenuText(fmt.Sprintf("🧩 Paste this on your website to sell %s:\n\n%s", p.Name, code))
		},
		Next: productMenu,
	}
}

// storeComplete renders the final summary, pushes the same summary through
// the notifier, then ends the conversation.
func (f *flow) storeComplete() *chat.Step {
	return &chat.Step{
		ID:     StepStoreComplete,
		Auto:   true,
		Render: f.summary,
		Enter: func(ctx context.Context, s *chat.Session) error {
			if f.notifier == nil {
				return nil
			}
			if err := f.notifier.SendMessage(ctx, s.Phone, f.summary(s)); err != nil {
				return fmt.Errorf("sending store summary: %w", err)
			}
			return nil
		},
		Next: chat.Goto(chat.StepEnd),
	}
}

func (f *flow) summary(s *chat.Session) string {
	store := s.Data.Store

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎉 Congratulations! Your store \"%s\" is ready!\n\n", store.Name))
	sb.WriteString(fmt.Sprintf("🌐 *Store Dashboard*: %s\n", f.links.Dashboard()))
	sb.WriteString(fmt.Sprintf("📱 *Public Store*: %s\n", f.links.Store(store.MerchantID)))

	if len(s.Data.Products) > 0 {
		sb.WriteString("\n📦 *Your Products:*\n")
		for _, p := range s.Data.Products {
			sb.WriteString(fmt.Sprintf("• %s - %s\n  💳 Checkout: %s\n",
				p.Name,
				FormatPrice(p.Price, store.Currency, store.Locale),
				f.links.Checkout(store.MerchantID, p.CheckoutKey()),
			))
		}
	}

	sb.WriteString("\n💡 *Next Steps:*\n")
	sb.WriteString("• Share your checkout links with customers\n")
	sb.WriteString("• Add more products through WhatsApp or dashboard\n")
	sb.WriteString("• Track orders and sales\n\n")
	sb.WriteString("Type \"START\" anytime to create another store!")
	return sb.String()
}

func lengthBetween(lo, hi int, tooShort, tooLong string) func(string) error {
	return func(input string) error {
		n := utf8.RuneCountInString(strings.TrimSpace(input))
		if n < lo {
			return errors.New(tooShort)
		}
		if n > hi {
			return errors.New(tooLong)
		}
		return nil
	}
}

// ParsePrice keeps digits and dots, e.g. "$29.99" is 29.99.
func ParsePrice(input string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, input)
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price <= 0 {
		return 0, errors.New("Please enter a valid price")
	}
	if price > maxPrice {
		return 0, errors.New("Price is too high")
	}
	return price, nil
}

// ParseStock keeps digits only, e.g. "50 pcs" is 50.
func ParseStock(input string) (int, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, input)
	if cleaned == "" {
		return 0, errors.New("Please enter a valid quantity")
	}
	stock, err := strconv.Atoi(cleaned)
	if err != nil || stock > maxStock {
		return 0, errors.New("Quantity is too high")
	}
	return stock, nil
}
