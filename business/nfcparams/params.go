// Package nfcparams validates the identifiers an NFC tag encodes in its URL:
// /:lang/product/:brand?type=&cc=&prd=&uid=
package nfcparams

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	LangEN = "en"
	LangFR = "fr"

	DefaultLang = LangEN
)

var (
	Brands = []string{"IQOS", "VEEV", "ZYN"}
	Types  = []string{"d", "f", "a"}
)

var validate = validator.New()

// Params is the normalised parameter set read from a tag URL. Numeric
// fields and Type are nil when absent or unparseable.
type Params struct {
	Lang   string
	Brand  string
	Type   *string
	CC     *int64
	Prd    *int64
	UID    *int64
	Errors []string
}

// Parse never fails; every problem is recorded in Params.Errors.
func Parse(lang, brand string, query url.Values) Params {
	p := Params{
		Lang:  DefaultLang,
		Brand: brand,
	}

	if lang == LangFR {
		p.Lang = LangFR
	}
	if lang != "" && lang != LangEN && lang != LangFR {
		p.Errors = append(p.Errors, fmt.Sprintf("Invalid language: %s. Defaulting to English.", lang))
	}

	if !inSet(brand, Brands) {
		p.Errors = append(p.Errors, fmt.Sprintf("Invalid or missing brand: %s", brand))
	}

	if query.Has("type") {
		t := query.Get("type")
		p.Type = &t
	}
	if p.Type == nil || !inSet(*p.Type, Types) {
		p.Errors = append(p.Errors, fmt.Sprintf("Invalid or missing type: %s", query.Get("type")))
	}

	p.CC = parseCode(query.Get("cc"))
	if p.CC == nil {
		p.Errors = append(p.Errors, "Invalid or missing campaign code (cc)")
	}

	p.Prd = parseCode(query.Get("prd"))
	if p.Prd == nil {
		p.Errors = append(p.Errors, "Invalid or missing product code (prd)")
	}

	p.UID = parseCode(query.Get("uid"))
	if p.UID == nil {
		p.Errors = append(p.Errors, "Invalid or missing unit ID (uid)")
	}

	return p
}

// Valid reports whether the parameters may be used for data access.
func (p Params) Valid() bool {
	return len(p.Errors) == 0 &&
		p.CC != nil &&
		p.Prd != nil &&
		p.UID != nil &&
		p.Type != nil
}

func (p Params) ErrorMessage() string {
	return strings.Join(p.Errors, ", ")
}

// Key identifies one resolution within a session. Missing codes render as 0.
func (p Params) Key() string {
	return fmt.Sprintf("%d:%d:%d", deref(p.UID), deref(p.Prd), deref(p.CC))
}

// BuildURL renders the path and query a tag is programmed with.
func BuildURL(lang, brand, typ string, cc, prd, uid int64) string {
	return fmt.Sprintf("/%s/product/%s?type=%s&cc=%d&prd=%d&uid=%d", lang, brand, typ, cc, prd, uid)
}

func inSet(value string, set []string) bool {
	return validate.Var(value, "required,oneof="+strings.Join(set, " ")) == nil
}

// parseCode accepts a leading run of digits ("12abc" is 12) and rejects
// empty, non-numeric and non-positive input.
func parseCode(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}

	n, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
