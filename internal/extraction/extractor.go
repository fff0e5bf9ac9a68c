package extraction

// RawFields is the untyped field mapping returned by a vision model. Values
// are whatever the model's JSON carried: string, float64, bool or nil. The
// shape is untrusted and must be normalized before leaving this boundary.
type RawFields map[string]any

// Canonical keys the extraction prompt asks the model to return.
const (
	KeyMerchantName    = "merchant_name"
	KeyTransactionDate = "transaction_date"
	KeyTransactionTime = "transaction_time"
	KeyTotalAmount     = "total_amount"
	KeyCurrencyCode    = "currency_code"
	KeyPaymentMethod   = "payment_method"
	KeyCategory        = "category"
)

// extractPrompt is the shared prompt used by all vision providers.
const extractPrompt = `You are an elite receipt parser. Extract key fields with high precision. If a field is missing or unclear, set it to null. Dates should be ISO (YYYY-MM-DD). Time should be 24h HH:MM if present. Currency is a 3-letter code like USD or MXN. Payment method: Cash, Credit Card, Debit Card, Digital Wallet, Bank Transfer, Other. Category should be one of: Food & Meals, Gas Station, Toll, Lodging, Transportation, Parking, Other. Return STRICT JSON only, with these keys: merchant_name, transaction_date, transaction_time, total_amount, currency_code, payment_method, category. Do not include any text before or after the JSON and do not use markdown code blocks.`

// Extractor defines the interface for receipt field extraction.
type Extractor interface {
	// Extract analyzes a receipt image (PNG) and returns the raw field mapping.
	Extract(imagePNG []byte, fileName string) (RawFields, error)
	// Close closes the extractor and releases resources.
	Close() error
}
