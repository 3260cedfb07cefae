package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mirrors the shape of the product create request used by the catalog
// handler.
type productForm struct {
	Name     string  `json:"name" validate:"required"`
	Price    string  `json:"price" validate:"required"`
	Stock    *int    `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Category string  `json:"category,omitempty"`
	Discount float64 `json:"discount,omitempty" validate:"gte=0,lte=100"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includePrice bool) bool {
			reqMap := make(map[string]interface{})

			if includeName {
				reqMap["name"] = "Espresso"
			}
			if includePrice {
				reqMap["price"] = "3.50"
			}

			allFieldsPresent := includeName && includePrice

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form productForm
			err := DecodeAndValidate(req, &form)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func(stock int) bool {
			if stock >= 0 {
				stock = -1 - stock
			}

			reqMap := map[string]interface{}{
				"name":  "Espresso",
				"price": "3.50",
				"stock": stock, // negative stock must be rejected
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form productForm
			err := DecodeAndValidate(req, &form)
			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_DiscountRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("discount outside 0-100 is rejected", prop.ForAll(
		func(discount int) bool {
			reqMap := map[string]interface{}{
				"name":     "Espresso",
				"price":    "3.50",
				"discount": discount,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/api/products", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var form productForm
			err := DecodeAndValidate(req, &form)

			if discount >= 0 && discount <= 100 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-50, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/products", bytes.NewReader([]byte(`{"name": `)))
	req.Header.Set("Content-Type", "application/json")

	var form productForm
	if err := DecodeAndValidate(req, &form); err == nil {
		t.Error("expected decode error for malformed JSON")
	}
}
