package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.French

	message.SetString(lang, "common.loading", "Chargement...")
	message.SetString(lang, "common.error", "Erreur")
	message.SetString(lang, "common.retry", "Réessayer")

	message.SetString(lang, "landing.title", "Expérience NFC")
	message.SetString(lang, "landing.subtitle", "Scannez le tag NFC de votre produit pour commencer.")

	message.SetString(lang, "errors.invalidUnit", "Ce produit est introuvable. Veuillez vérifier votre tag NFC.")
	message.SetString(lang, "errors.invalidProductOrCampaign", "Ce produit ou cette campagne n'est pas disponible.")
	message.SetString(lang, "errors.networkError", "Une erreur réseau est survenue. Veuillez réessayer.")
	message.SetString(lang, "errors.invalidSession", "Session invalide ou expirée")
}
