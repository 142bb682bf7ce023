package gateway

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
)

// Currencies Stripe treats as having no minor unit.
var zeroDecimalCurrencies = map[string]bool{
	"JPY": true, "KRW": true, "VND": true, "CLP": true,
}

// StripeGateway charges cards through Stripe PaymentIntents. A fresh API
// client is built per call so the decrypted secret key never outlives it.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Charge(ctx context.Context, creds Credentials, req ChargeRequest) (ChargeResult, error) {
	api := &client.API{}
	api.Init(creds.SecretKey, nil)

	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(MinorUnits(req.Amount, req.Currency)),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod:      stripe.String(req.ExternalSourceID),
		Confirm:            stripe.Bool(true),
		ConfirmationMethod: stripe.String(string(stripe.PaymentIntentConfirmationMethodAutomatic)),
	}
	params.SetIdempotencyKey(req.Reference)
	params.AddMetadata("wallet_id", strconv.FormatUint(uint64(req.WalletID), 10))
	params.AddMetadata("amount", req.Amount.String())
	params.AddMetadata("reference", req.Reference)

	intent, err := api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			// Card declines are a provider decision, not a transport
			// failure; the reason travels back verbatim.
			result := ChargeResult{Success: false, ErrorMessage: stripeErr.Msg}
			if stripeErr.PaymentIntent != nil {
				result.ProviderRef = stripeErr.PaymentIntent.ID
			}
			return result, nil
		}
		return ChargeResult{}, err
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return ChargeResult{Success: true, ProviderRef: intent.ID}, nil
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation:
		// Needs-action surfaces as failure; the ref lets the client
		// finish authentication out of band.
		return ChargeResult{
			Success:      false,
			ErrorMessage: "charge requires additional customer action",
			ProviderRef:  intent.ID,
		}, nil
	default:
		return ChargeResult{
			Success:      false,
			ErrorMessage: "charge not completed: " + string(intent.Status),
			ProviderRef:  intent.ID,
		}, nil
	}
}

func (g *StripeGateway) BalanceQuery(ctx context.Context, creds Credentials) (decimal.Decimal, error) {
	api := &client.API{}
	api.Init(creds.SecretKey, nil)

	bal, err := api.Balance.Get(&stripe.BalanceParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return decimal.Zero, err
	}
	if len(bal.Available) == 0 {
		return decimal.Zero, nil
	}
	first := bal.Available[0]
	return FromMinorUnits(first.Value, strings.ToUpper(string(first.Currency))), nil
}

// MinorUnits converts a fixed-point amount into the provider's smallest
// currency unit representation.
func MinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits is the inverse of MinorUnits.
func FromMinorUnits(minor int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(minor)
	if zeroDecimalCurrencies[strings.ToUpper(currency)] {
		return d
	}
	return d.Div(decimal.NewFromInt(100))
}
