package onboarding

import (
	"WhatsGrapp/bot/chat"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"log/slog"
	"strings"
)

// Step IDs
const (
	StepStart             chat.StepID = "start"
	StepHelp              chat.StepID = "help"
	StepStatusCheck       chat.StepID = "status_check"
	StepStoreName         chat.StepID = "store_name"
	StepBusinessDetails   chat.StepID = "business_details"
	StepCurrencySelection chat.StepID = "currency_selection"
	StepStoreCreation     chat.StepID = "store_creation"
	StepAddProductPrompt  chat.StepID = "add_product_prompt"
	StepProductHelp       chat.StepID = "product_help"
	StepProductName       chat.StepID = "product_name"
	StepProductPrice      chat.StepID = "product_price"
	StepProductStock      chat.StepID = "product_stock"
	StepProductCreation   chat.StepID = "product_creation"
	StepProductComplete   chat.StepID = "product_complete"
	StepCheckoutLink      chat.StepID = "checkout_link"
	StepEmbedCode         chat.StepID = "embed_code"
	StepStoreComplete     chat.StepID = "store_complete"
)

// MerchantService creates and looks up merchants.
type MerchantService interface {
	CreateMerchant(ctx context.Context, phone, storeName, businessDetails string, currency entity.Currency, locale string) (string, error)
	// MerchantByPhone returns nil when the phone has no store.
	MerchantByPhone(ctx context.Context, phone string) (*entity.Merchant, error)
	SalesStats(ctx context.Context, merchantID string) (entity.SalesStats, error)
}

// ProductService creates and lists catalog products.
type ProductService interface {
	CreateProduct(ctx context.Context, merchantID, name string, price float64, stock int) (string, error)
	MerchantProducts(ctx context.Context, merchantID string) ([]*entity.Product, error)
}

// Notifier pushes a message to the merchant outside the reply.
type Notifier interface {
	SendMessage(ctx context.Context, phone, text string) error
}

// OnboardingWorkflow is the merchant onboarding conversation.
type OnboardingWorkflow struct {
	steps map[chat.StepID]*chat.Step
	order []chat.StepID
}

func NewOnboardingWorkflow(merchants MerchantService, products ProductService, notifier Notifier, appURL string, log *slog.Logger) *OnboardingWorkflow {
	f := &flow{
		merchants: merchants,
		products:  products,
		notifier:  notifier,
		links:     Links{AppURL: strings.TrimRight(appURL, "/")},
		log:       log.With(sl.Module("onboarding")),
	}

	w := &OnboardingWorkflow{steps: make(map[chat.StepID]*chat.Step)}
	for _, step := range []*chat.Step{
		f.start(),
		f.help(),
		f.statusCheck(),
		f.storeName(),
		f.businessDetails(),
		f.currencySelection(),
		f.storeCreation(),
		f.addProductPrompt(),
		f.productHelp(),
		f.productName(),
		f.productPrice(),
		f.productStock(),
		f.productCreation(),
		f.productComplete(),
		f.checkoutLink(),
		f.embedCode(),
		f.storeComplete(),
	} {
		w.steps[step.ID] = step
		w.order = append(w.order, step.ID)
	}
	return w
}

func (w *OnboardingWorkflow) InitialStep() chat.StepID { return StepStart }

func (w *OnboardingWorkflow) GetStep(id chat.StepID) (*chat.Step, bool) {
	step, ok := w.steps[id]
	return step, ok
}

func (w *OnboardingWorkflow) Steps() []chat.StepID {
	return append([]chat.StepID(nil), w.order...)
}
