package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "common.loading", "Loading...")
	message.SetString(lang, "common.error", "Error")
	message.SetString(lang, "common.retry", "Retry")

	message.SetString(lang, "landing.title", "NFC Experience")
	message.SetString(lang, "landing.subtitle", "Scan an NFC tag on your product to begin your journey.")

	message.SetString(lang, "errors.invalidUnit", "This product could not be found. Please check your NFC tag.")
	message.SetString(lang, "errors.invalidProductOrCampaign", "This product or campaign is not available.")
	message.SetString(lang, "errors.networkError", "A network error occurred. Please try again.")
	message.SetString(lang, "errors.invalidSession", "Invalid or expired session")
}
