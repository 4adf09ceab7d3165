package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	priceMaxDigits = 5
	priceDecimals  = 2
)

// PriceError reports a price that is not a valid decimal(5,2)
type PriceError struct {
	Value   string
	Message string
}

func (e *PriceError) Error() string {
	return fmt.Sprintf("invalid price %q: %s", e.Value, e.Message)
}

// Price is a fixed-point amount with two decimal places, stored in cents.
// It renders as a JSON string ("5.25") and accepts strings or numbers.
type Price int64

// ParsePrice parses a decimal string such as "5.25" or "12"
func ParsePrice(s string) (Price, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, &PriceError{Value: s, Message: "A valid number is required."}
	}
	if strings.HasPrefix(raw, "-") {
		return 0, &PriceError{Value: s, Message: "Ensure this value is greater than or equal to 0."}
	}
	raw = strings.TrimPrefix(raw, "+")

	whole, frac, hasFrac := strings.Cut(raw, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (hasFrac && !isDigits(frac)) || (hasFrac && frac == "") {
		return 0, &PriceError{Value: s, Message: "A valid number is required."}
	}
	whole = strings.TrimLeft(whole, "0")
	if len(frac) > priceDecimals {
		return 0, &PriceError{Value: s, Message: fmt.Sprintf("Ensure that there are no more than %d decimal places.", priceDecimals)}
	}
	if len(whole) > priceMaxDigits-priceDecimals {
		return 0, &PriceError{Value: s, Message: fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", priceMaxDigits-priceDecimals)}
	}

	for len(frac) < priceDecimals {
		frac += "0"
	}
	cents, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, &PriceError{Value: s, Message: "A valid number is required."}
	}
	return Price(cents), nil
}

// MustParsePrice is ParsePrice for constants; it panics on error
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String renders the price with exactly two decimals
func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/100, int64(p)%100)
}

// MarshalJSON implements json.Marshaler
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Price) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements the driver.Valuer interface
func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements the sql.Scanner interface
func (p *Price) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = 0
		return nil
	case int64:
		*p = Price(v * 100)
		return nil
	case float64:
		*p = Price(math.Round(v * 100))
		return nil
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Price", value)
	}
}

func (p *Price) scanString(s string) error {
	// Databases may render numeric columns with more scale than we store
	if whole, frac, ok := strings.Cut(s, "."); ok && len(frac) > priceDecimals {
		s = whole + "." + frac[:priceDecimals]
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
