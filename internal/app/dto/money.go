package dto

import "bookingengine/internal/domain/shared/money"

type MoneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MapMoney renders a settled amount with two decimals.
func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.StringFixed(), Currency: value.Currency}
}

// MapExactMoney renders an intermediate amount without rounding it.
func MapExactMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount.String(), Currency: value.Currency}
}
