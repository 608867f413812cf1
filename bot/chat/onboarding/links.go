package onboarding

import (
	"WhatsGrapp/entity"
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const draftMerchant = "draft"

// Links builds the public URLs handed out to merchants.
type Links struct {
	AppURL string
}

func (l Links) Dashboard() string {
	return l.AppURL + "/dashboard"
}

func (l Links) Store(merchantID string) string {
	return fmt.Sprintf("%s/store/%s", l.AppURL, orDraft(merchantID))
}

func (l Links) Checkout(merchantID, productKey string) string {
	return fmt.Sprintf("%s/checkout/%s/%s", l.AppURL, orDraft(merchantID), productKey)
}

// EmbedCode returns the JavaScript widget snippet for a product.
func (l Links) EmbedCode(merchantID, productKey string) string {
	return fmt.Sprintf(`<script src="%s/embed/whatsgrapp.js"></script>
<script>
  WhatsGrapp.init({
    merchantId: "%s",
    productId: "%s",
    theme: "light"
  });
</script>`, l.AppURL, orDraft(merchantID), productKey)
}

func orDraft(merchantID string) string {
	if merchantID == "" {
		return draftMerchant
	}
	return merchantID
}

// FormatPrice renders an amount with the currency code and the locale's
// digit grouping, e.g. "SGD 1,200.00".
func FormatPrice(amount float64, cur entity.Currency, locale string) string {
	unit, err := currency.ParseISO(string(cur))
	if err != nil {
		return fmt.Sprintf("%s %.2f", cur, amount)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(entity.LocaleFor(cur))
	}
	scale, _ := currency.Standard.Rounding(unit)

	p := message.NewPrinter(tag)
	return fmt.Sprintf("%s %s", unit, p.Sprint(number.Decimal(amount, number.Scale(scale))))
}
