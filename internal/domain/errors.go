package domain

import "errors"

var (
	// ErrEmptyInput is returned when a barcode is empty after trimming
	ErrEmptyInput = errors.New("empty barcode")

	// ErrProductNotFound is returned when the product catalog has no entry for a barcode
	ErrProductNotFound = errors.New("product not found")

	// ErrProductFetchFailed is returned when the product catalog cannot be reached
	ErrProductFetchFailed = errors.New("product fetch failed")

	// ErrSummaryUnavailable is returned when the summary relay fails or rejects a request
	ErrSummaryUnavailable = errors.New("summary unavailable")

	// ErrCameraUnavailable is returned when the frame source cannot be acquired
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrHistoryCorrupt is returned when persisted history cannot be decoded
	ErrHistoryCorrupt = errors.New("history data corrupt")

	// ErrLookupInProgress is returned when a lookup is triggered while another is in flight
	ErrLookupInProgress = errors.New("lookup already in progress")

	// ErrLookupSuperseded is returned when a lookup was reset while it ran
	ErrLookupSuperseded = errors.New("lookup superseded")

	// ErrAlreadyShown is returned when the requested barcode is already displayed
	ErrAlreadyShown = errors.New("barcode already shown")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNotFound is returned by key/value storage for absent keys
	ErrNotFound = errors.New("key not found")
)

// UserMessage maps an error to the short message shown in the interface.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyInput):
		return "Skriv in en streckkod först."
	case errors.Is(err, ErrProductNotFound):
		return "Hittade ingen produkt för den här koden."
	case errors.Is(err, ErrSummaryUnavailable):
		return "Kunde inte hämta AI-sammanfattning."
	case errors.Is(err, ErrCameraUnavailable):
		return "Kameran är inte tillgänglig. Skriv in koden manuellt."
	default:
		return "Något gick fel när vi hämtade data."
	}
}
