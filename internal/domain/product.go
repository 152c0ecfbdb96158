package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

var (
	// ErrNoTranslations is returned when a product input carries no translations.
	ErrNoTranslations = errors.New("no translations")
	// ErrDuplicateLanguage is returned when two translations share a language.
	ErrDuplicateLanguage = errors.New("duplicate translation language")
	// ErrInvalidLanguage is returned when a translation language is not a valid BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid translation language")
	// ErrNoProductID is returned when a product operation is attempted without an id.
	ErrNoProductID = errors.New("no product id")
)

// DefaultLanguage is the language used for descriptions entered through the edit buffer.
const DefaultLanguage = "en"

// Translation is a localized product description.
type Translation struct {
	Language    string `json:"language"    yaml:"language"`
	Description string `json:"description" yaml:"description"`
}

// Translations is the ordered list of product descriptions.
type Translations []Translation

// Validate checks that the list is non-empty and every language is a valid,
// unique tag. Tags are compared in canonical form, so "EN" and "en" collide.
func (ts Translations) Validate() error {
	if len(ts) == 0 {
		return ErrNoTranslations
	}

	seen := make(map[string]struct{}, len(ts))

	for _, t := range ts {
		tag, err := language.Parse(t.Language)
		if err != nil {
			return errors.Join(ErrInvalidLanguage, fmt.Errorf("parse %q: %w", t.Language, err))
		}

		key := tag.String()
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLanguage, key)
		}

		seen[key] = struct{}{}
	}

	return nil
}

// Description returns the first translation's description, or "" when there is none.
func (ts Translations) Description() string {
	if len(ts) == 0 {
		return ""
	}

	return ts[0].Description
}

// Product is a catalog entry as returned by the API.
type Product struct {
	ID           string          `json:"id"           yaml:"id"`
	Price        decimal.Decimal `json:"price"        yaml:"price"`
	IsActive     bool            `json:"isActive"     yaml:"isActive"`
	Translations Translations    `json:"translations" yaml:"translations"`
}

// ProductInput carries the mutable fields of a product for create and update.
type ProductInput struct {
	Price        decimal.Decimal
	Translations Translations
}

// Validate checks the translations of the input.
func (in ProductInput) Validate() error {
	if err := in.Translations.Validate(); err != nil {
		return fmt.Errorf("translations: %w", err)
	}

	return nil
}
