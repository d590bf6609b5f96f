package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/tamkeenorg/tamkeenpay/config"
	"github.com/tamkeenorg/tamkeenpay/internal/domain"
	"github.com/tamkeenorg/tamkeenpay/pkg/common"
	"go.uber.org/zap"
)

const (
	pathCheckoutInitialize = "/payment/iyzipos/checkoutform/initialize/auth/ecom"
	pathCheckoutRetrieve   = "/payment/iyzipos/checkoutform/auth/ecom/detail"

	statusSuccess = "success"
)

// Buyer fields the domain model does not collect are filled with fixed
// placeholders, matching what the provider requires but we never use.
const (
	placeholderIdentity = "11111111111"
	placeholderAddress  = "Unknown address"
	placeholderCity     = "Istanbul"
	placeholderZip      = "34000"
	placeholderIP       = "85.34.78.112"
)

type buyerBlock struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Surname             string `json:"surname"`
	GsmNumber           string `json:"gsmNumber"`
	Email               string `json:"email"`
	IdentityNumber      string `json:"identityNumber"`
	RegistrationAddress string `json:"registrationAddress"`
	City                string `json:"city"`
	Country             string `json:"country"`
	ZipCode             string `json:"zipCode"`
	IP                  string `json:"ip"`
}

type addressBlock struct {
	ContactName string `json:"contactName"`
	City        string `json:"city"`
	Country     string `json:"country"`
	Address     string `json:"address"`
	ZipCode     string `json:"zipCode"`
}

type basketItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category1 string `json:"category1"`
	ItemType  string `json:"itemType"`
	Price     string `json:"price"`
}

type initializeRequest struct {
	Locale              string       `json:"locale"`
	ConversationID      string       `json:"conversationId"`
	Price               string       `json:"price"`
	PaidPrice           string       `json:"paidPrice"`
	Currency            string       `json:"currency"`
	BasketID            string       `json:"basketId"`
	PaymentGroup        string       `json:"paymentGroup"`
	CallbackURL         string       `json:"callbackUrl"`
	EnabledInstallments []int        `json:"enabledInstallments"`
	Buyer               buyerBlock   `json:"buyer"`
	ShippingAddress     addressBlock `json:"shippingAddress"`
	BillingAddress      addressBlock `json:"billingAddress"`
	BasketItems         []basketItem `json:"basketItems"`
}

type initializeResponse struct {
	Status         string `json:"status"`
	PaymentPageURL string `json:"paymentPageUrl"`
	ConversationID string `json:"conversationId"`
	ErrorMessage   string `json:"errorMessage"`
}

type retrieveRequest struct {
	Locale         string `json:"locale"`
	ConversationID string `json:"conversationId"`
	Token          string `json:"token"`
}

type retrieveResponse struct {
	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`
	ConversationID string `json:"conversationId"`
	ErrorMessage   string `json:"errorMessage"`
}

// IyzicoGateway talks to the iyzico hosted-checkout REST API with IYZWSv2
// request signing.
type IyzicoGateway struct {
	cfg config.IyzicoConfig
}

var _ CheckoutGateway = (*IyzicoGateway)(nil)

func NewIyzicoGateway(cfg config.IyzicoConfig) *IyzicoGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &IyzicoGateway{cfg: cfg}
}

func (g *IyzicoGateway) InitCheckout(ctx context.Context, payment *domain.Payment, lines []Line, sessionID string) (InitResult, bool) {
	total := decimal.Zero
	items := make([]basketItem, 0, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		linePrice := line.Product.Price.Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(linePrice)
		items = append(items, basketItem{
			ID:        fmt.Sprintf("%d", line.Product.ID),
			Name:      line.Product.Title,
			Category1: line.Product.Category,
			ItemType:  "PHYSICAL",
			Price:     linePrice.StringFixed(2),
		})
	}

	req := initializeRequest{
		Locale:              "en",
		ConversationID:      sessionID,
		Price:               total.StringFixed(2),
		PaidPrice:           total.StringFixed(2),
		Currency:            payment.Currency,
		BasketID:            sessionID,
		PaymentGroup:        "PRODUCT",
		CallbackURL:         g.cfg.CallbackURL,
		EnabledInstallments: []int{2, 3, 6, 9},
		Buyer: buyerBlock{
			ID:                  payment.ClientPhone,
			Name:                payment.ClientName,
			Surname:             "-",
			GsmNumber:           payment.ClientPhone,
			Email:               payment.ClientEmail,
			IdentityNumber:      placeholderIdentity,
			RegistrationAddress: placeholderAddress,
			City:                placeholderCity,
			Country:             payment.Country,
			ZipCode:             placeholderZip,
			IP:                  placeholderIP,
		},
		ShippingAddress: addressBlock{
			ContactName: payment.ClientName,
			City:        placeholderCity,
			Country:     payment.Country,
			Address:     placeholderAddress,
			ZipCode:     placeholderZip,
		},
		BillingAddress: addressBlock{
			ContactName: payment.ClientName,
			City:        placeholderCity,
			Country:     payment.Country,
			Address:     placeholderAddress,
			ZipCode:     placeholderZip,
		},
		BasketItems: items,
	}

	var rsp initializeResponse
	if err := g.post(ctx, pathCheckoutInitialize, req, &rsp); err != nil {
		zap.L().Error("iyzico checkout initialize failed",
			zap.String("conversation_id", sessionID), zap.Error(err))
		return InitResult{}, false
	}
	if rsp.Status != statusSuccess || rsp.PaymentPageURL == "" || rsp.ConversationID == "" {
		zap.L().Warn("iyzico checkout initialize rejected",
			zap.String("conversation_id", sessionID),
			zap.String("status", rsp.Status),
			zap.String("error_message", rsp.ErrorMessage))
		return InitResult{}, false
	}

	return InitResult{
		PaymentPageURL: rsp.PaymentPageURL,
		ConversationID: rsp.ConversationID,
	}, true
}

func (g *IyzicoGateway) VerifyCheckout(ctx context.Context, token, conversationID string) VerifyResult {
	req := retrieveRequest{
		Locale:         "en",
		ConversationID: conversationID,
		Token:          token,
	}

	var rsp retrieveResponse
	if err := g.post(ctx, pathCheckoutRetrieve, req, &rsp); err != nil {
		zap.L().Error("iyzico checkout retrieve failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return VerifyResult{OK: false}
	}
	if rsp.Status != statusSuccess {
		zap.L().Warn("iyzico checkout verification rejected",
			zap.String("conversation_id", conversationID),
			zap.String("status", rsp.Status),
			zap.String("error_message", rsp.ErrorMessage))
		return VerifyResult{OK: false}
	}

	return VerifyResult{OK: true, PaymentStatus: rsp.PaymentStatus}
}

// post signs and sends one provider call. The raw body is marshaled first
// because the signature must cover the exact bytes on the wire.
func (g *IyzicoGateway) post(ctx context.Context, path string, req interface{}, out interface{}) error {
	body, err := jsoniter.Marshal(req)
	if err != nil {
		return err
	}

	randomKey := fmt.Sprintf("%d%s", time.Now().UnixMilli(), common.RandomHex(8))
	auth := authorizationV2(g.cfg.APIKey, g.cfg.SecretKey, randomKey, path, body)

	var code int
	err = gout.POST(g.cfg.BaseURL+path).
		WithContext(ctx).
		SetTimeout(g.cfg.Timeout).
		SetHeader(gout.H{
			"Authorization": auth,
			"x-iyzi-rnd":    randomKey,
			"Content-Type":  "application/json",
		}).
		SetBody(body).
		BindJSON(out).
		Code(&code).
		Do()
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("provider returned http %d", code)
	}
	return nil
}
