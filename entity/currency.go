package entity

// Currency is an ISO 4217 code accepted by the storefront.
type Currency string

const (
	SGD Currency = "SGD"
	THB Currency = "THB"
	IDR Currency = "IDR"
	MYR Currency = "MYR"
	PHP Currency = "PHP"
	VND Currency = "VND"
	KHR Currency = "KHR"
	MMK Currency = "MMK"
)

// CurrencyOption pairs a currency with the locale used to format its amounts.
type CurrencyOption struct {
	Currency Currency
	Locale   string
	Name     string
}

// CurrencyMenu is the fixed order of the onboarding currency menu, 1-based in the chat.
var CurrencyMenu = []CurrencyOption{
	{Currency: SGD, Locale: "en-SG", Name: "Singapore Dollar"},
	{Currency: THB, Locale: "th-TH", Name: "Thai Baht"},
	{Currency: IDR, Locale: "id-ID", Name: "Indonesian Rupiah"},
	{Currency: MYR, Locale: "ms-MY", Name: "Malaysian Ringgit"},
	{Currency: PHP, Locale: "fil-PH", Name: "Philippine Peso"},
	{Currency: VND, Locale: "vi-VN", Name: "Vietnamese Dong"},
	{Currency: KHR, Locale: "km-KH", Name: "Cambodian Riel"},
	{Currency: MMK, Locale: "my-MM", Name: "Myanmar Kyat"},
}

// LocaleFor returns the default locale of a supported currency, or en-SG.
func LocaleFor(c Currency) string {
	for _, opt := range CurrencyMenu {
		if opt.Currency == c {
			return opt.Locale
		}
	}
	return "en-SG"
}

func (c Currency) Supported() bool {
	for _, opt := range CurrencyMenu {
		if opt.Currency == c {
			return true
		}
	}
	return false
}
