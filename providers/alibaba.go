package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/TomMcAvoy/e-commerce-platform-sub000/models"
)

// AlibabaName is the registry name of the 1688/Alibaba dropship adapter.
const AlibabaName = "alibaba"

const defaultAlibabaBaseURL = "https://gw.api.alibaba.com/dropship/v1"

// Defaults used by CalculateShipping when the logistics endpoint is down.
const (
	fallbackShippingCost = 12.50
	fallbackDeliveryDays = 12
)

// AlibabaConfig holds credentials and tuning for the Alibaba adapter.
type AlibabaConfig struct {
	APIKey      string
	AppSecret   string
	AccessToken string
	BaseURL     string
	Timeout     time.Duration
}

// Configured reports whether the adapter has enough credentials to register.
func (c AlibabaConfig) Configured() bool {
	return c.APIKey != "" && c.AppSecret != ""
}

// AlibabaProvider translates the Provider contract to the Alibaba dropship
// HTTP API: signed requests, paged product search and order delegation.
type AlibabaProvider struct {
	cfg    AlibabaConfig
	client *resty.Client
	signer Signer
	logger *zap.Logger
}

// NewAlibabaProvider creates the adapter. Retry policy lives on the shared
// resty client so every operation gets the same backoff behavior.
func NewAlibabaProvider(cfg AlibabaConfig, logger *zap.Logger) *AlibabaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAlibabaBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &AlibabaProvider{
		cfg:    cfg,
		client: client,
		signer: NewHMACSigner(cfg.AppSecret),
		logger: logger,
	}
}

func (p *AlibabaProvider) Name() string { return AlibabaName }

// ---- wire format ----

type alibabaEnvelope struct {
	Success   bool            `json:"success"`
	ErrorCode string          `json:"error_code,omitempty"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	Data      json.RawMessage `json:"data"`
}

type alibabaCategory struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	ParentID   string `json:"parent_id,omitempty"`
	Level      int    `json:"level"`
}

type alibabaCategoryList struct {
	Categories []alibabaCategory `json:"categories"`
}

type alibabaItem struct {
	ItemID      string   `json:"item_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	PicURL      string   `json:"pic_url,omitempty"`
	Images      []string `json:"images,omitempty"`
	SKU         string   `json:"sku,omitempty"`
	Stock       int      `json:"stock"`
	Supplier    string   `json:"supplier,omitempty"`
	Location    string   `json:"location,omitempty"`
	Skus        []struct {
		SkuID      string `json:"sku_id"`
		Price      string `json:"price"`
		Quantity   int    `json:"quantity"`
		Properties string `json:"properties,omitempty"`
		Name       string `json:"name,omitempty"`
	} `json:"skus,omitempty"`
}

type alibabaItemList struct {
	Items []alibabaItem `json:"items"`
	Total int           `json:"total"`
}

type alibabaOrderResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type alibabaFreight struct {
	Cost          float64 `json:"cost"`
	Currency      string  `json:"currency"`
	EstimatedDays int     `json:"estimated_days"`
}

// ---- Provider implementation ----

// CheckHealth pings the provider. It always returns a status, never an error.
func (p *AlibabaProvider) CheckHealth(ctx context.Context) Health {
	resp, err := p.client.R().SetContext(ctx).Get("/system/ping")
	if err != nil {
		return Health{Status: StatusUnreachable, Details: err.Error()}
	}
	switch {
	case resp.StatusCode() == http.StatusOK:
		return Health{Status: StatusHealthy}
	case resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500:
		return Health{Status: StatusDegraded, Details: fmt.Sprintf("HTTP %d", resp.StatusCode())}
	default:
		return Health{Status: StatusDegraded, Details: fmt.Sprintf("unexpected HTTP %d", resp.StatusCode())}
	}
}

// GetCategories fetches the provider taxonomy. Failures surface as typed
// errors; inventing fallback data here would hide outages from the importer.
func (p *AlibabaProvider) GetCategories(ctx context.Context) ([]ProviderCategory, error) {
	data, err := p.do(ctx, http.MethodGet, "/category/list", nil, nil)
	if err != nil {
		return nil, err
	}

	var list alibabaCategoryList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, NewError(AlibabaName, KindData, "malformed category payload", err)
	}

	cats := make([]ProviderCategory, 0, len(list.Categories))
	for _, c := range list.Categories {
		cats = append(cats, ProviderCategory{
			ID:       c.CategoryID,
			Name:     c.Name,
			Slug:     models.Slugify(c.Name),
			ParentID: c.ParentID,
			Level:    c.Level,
		})
	}
	return cats, nil
}

// FetchProducts returns one page of the provider catalog. Records that fail
// to parse are skipped individually so one bad item cannot poison a page.
func (p *AlibabaProvider) FetchProducts(ctx context.Context, params FetchParams) ([]ProviderProduct, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}

	query := map[string]string{
		"page":      strconv.Itoa(params.Page),
		"page_size": strconv.Itoa(params.PageSize),
	}
	if params.Keyword != "" {
		query["keyword"] = params.Keyword
	}
	if params.CategoryID != "" {
		query["category_id"] = params.CategoryID
	}

	data, err := p.do(ctx, http.MethodGet, "/product/search", query, nil)
	if err != nil {
		return nil, err
	}

	var list alibabaItemList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, NewError(AlibabaName, KindData, "malformed product payload", err)
	}

	products := make([]ProviderProduct, 0, len(list.Items))
	for _, item := range list.Items {
		price, err := strconv.ParseFloat(strings.TrimSpace(item.Price), 64)
		if err != nil {
			p.logger.Warn("skipping product with unparseable price",
				zap.String("item_id", item.ItemID),
				zap.String("price", item.Price),
			)
			continue
		}

		images := item.Images
		if len(images) == 0 && item.PicURL != "" {
			images = []string{item.PicURL}
		}

		variants := make([]models.Variant, 0, len(item.Skus))
		for _, sku := range item.Skus {
			vp, err := strconv.ParseFloat(strings.TrimSpace(sku.Price), 64)
			if err != nil {
				vp = price
			}
			variants = append(variants, models.Variant{
				VariantID:  sku.SkuID,
				Name:       sku.Name,
				Price:      vp,
				Quantity:   sku.Quantity,
				Attributes: sku.Properties,
			})
		}

		products = append(products, ProviderProduct{
			ID:          item.ItemID,
			Name:        item.Title,
			Description: item.Description,
			Price:       price,
			ImageURL:    item.PicURL,
			Images:      images,
			SKU:         item.SKU,
			Stock:       item.Stock,
			Variants:    variants,
			Supplier:    item.Supplier,
			Location:    item.Location,
		})
	}
	return products, nil
}

// CreateOrder creates a provider-side order for the given dropship items.
func (p *AlibabaProvider) CreateOrder(ctx context.Context, order models.DropshipOrderData) (*models.OrderCreationResult, error) {
	type orderItem struct {
		ItemID    string  `json:"item_id"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
	}
	body := struct {
		OutOrderID string      `json:"out_order_id"`
		Receiver   string      `json:"receiver"`
		Phone      string      `json:"phone,omitempty"`
		Address    string      `json:"address"`
		City       string      `json:"city"`
		Province   string      `json:"province"`
		PostCode   string      `json:"post_code"`
		Country    string      `json:"country"`
		Currency   string      `json:"currency,omitempty"`
		Items      []orderItem `json:"items"`
	}{
		OutOrderID: order.InternalOrderID,
		Receiver:   order.Customer.Name,
		Phone:      order.Customer.Phone,
		Address:    strings.TrimSpace(order.ShippingAddress.Street1 + " " + order.ShippingAddress.Street2),
		City:       order.ShippingAddress.City,
		Province:   order.ShippingAddress.State,
		PostCode:   order.ShippingAddress.PostalCode,
		Country:    order.ShippingAddress.Country,
		Currency:   order.Currency,
	}
	for _, it := range order.Items {
		body.Items = append(body.Items, orderItem{
			ItemID:    it.ProviderProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}

	data, err := p.do(ctx, http.MethodPost, "/order/create", nil, body)
	if err != nil {
		// Order creation failures are their own kind unless the transport
		// itself was at fault.
		if IsRetryable(err) || KindOf(err) == KindAuth {
			return nil, err
		}
		var pe *Error
		if errors.As(err, &pe) {
			return nil, NewError(AlibabaName, KindOrder, pe.Message, pe.Err)
		}
		return nil, NewError(AlibabaName, KindOrder, "order creation failed", err)
	}

	var result alibabaOrderResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, NewError(AlibabaName, KindData, "malformed order payload", err)
	}
	if result.OrderID == "" {
		return nil, NewError(AlibabaName, KindOrder, "provider returned empty order id", nil)
	}

	return &models.OrderCreationResult{
		ExternalOrderID: result.OrderID,
		Status:          result.Status,
		ProviderPayload: string(data),
	}, nil
}

// CalculateShipping quotes freight for the order. When the logistics endpoint
// is unavailable it returns a flagged default estimate instead of an error so
// checkout keeps working.
func (p *AlibabaProvider) CalculateShipping(ctx context.Context, order models.DropshipOrderData) (models.ShippingInfo, error) {
	type freightItem struct {
		ItemID   string `json:"item_id"`
		Quantity int    `json:"quantity"`
	}
	body := struct {
		Country  string        `json:"country"`
		PostCode string        `json:"post_code"`
		Items    []freightItem `json:"items"`
	}{
		Country:  order.ShippingAddress.Country,
		PostCode: order.ShippingAddress.PostalCode,
	}
	for _, it := range order.Items {
		body.Items = append(body.Items, freightItem{ItemID: it.ProviderProductID, Quantity: it.Quantity})
	}

	data, err := p.do(ctx, http.MethodPost, "/logistics/freight", nil, body)
	if err != nil {
		p.logger.Warn("freight quote unavailable, using default estimate",
			zap.String("order", order.InternalOrderID),
			zap.Error(err),
		)
		return p.defaultShippingEstimate(order), nil
	}

	var freight alibabaFreight
	if err := json.Unmarshal(data, &freight); err != nil {
		p.logger.Warn("malformed freight payload, using default estimate", zap.Error(err))
		return p.defaultShippingEstimate(order), nil
	}

	currency := freight.Currency
	if currency == "" {
		currency = "USD"
	}
	return models.ShippingInfo{
		Cost:                  freight.Cost,
		Currency:              currency,
		EstimatedDeliveryDate: time.Now().AddDate(0, 0, freight.EstimatedDays),
	}, nil
}

func (p *AlibabaProvider) defaultShippingEstimate(order models.DropshipOrderData) models.ShippingInfo {
	currency := order.Currency
	if currency == "" {
		currency = "USD"
	}
	return models.ShippingInfo{
		Cost:                  fallbackShippingCost,
		Currency:              currency,
		EstimatedDeliveryDate: time.Now().AddDate(0, 0, fallbackDeliveryDays),
		Estimated:             true,
	}
}

// UpdateInventory is unsupported: the Alibaba dropship catalog is read-only,
// stock flows only from provider to marketplace.
func (p *AlibabaProvider) UpdateInventory(ctx context.Context, updates []models.InventoryUpdate) error {
	return ErrUnsupported
}

// ---- HTTP helper ----

// do issues a signed request and unwraps the response envelope, mapping
// transport and API failures to typed error kinds.
func (p *AlibabaProvider) do(ctx context.Context, method, path string, query map[string]string, body interface{}) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("app_key", p.cfg.APIKey)
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	if p.cfg.AccessToken != "" {
		params.Set("access_token", p.cfg.AccessToken)
	}
	for k, v := range query {
		params.Set(k, v)
	}
	params.Set("sign", p.signer.Sign(params))

	req := p.client.R().SetContext(ctx)
	for k := range params {
		req.SetQueryParam(k, params.Get(k))
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, NewError(AlibabaName, KindUnreachable, "request failed", err)
	}

	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return nil, NewError(AlibabaName, KindAuth, fmt.Sprintf("HTTP %d", resp.StatusCode()), nil)
	case resp.StatusCode() == http.StatusTooManyRequests:
		return nil, NewError(AlibabaName, KindRateLimited, "rate limit exceeded", nil)
	case resp.StatusCode() >= 500:
		return nil, NewError(AlibabaName, KindUnreachable, fmt.Sprintf("HTTP %d", resp.StatusCode()), nil)
	case resp.StatusCode() >= 400:
		return nil, NewError(AlibabaName, KindData, fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), resp.String()), nil)
	}

	var env alibabaEnvelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, NewError(AlibabaName, KindData, "malformed response envelope", err)
	}
	if !env.Success {
		switch {
		case strings.HasPrefix(env.ErrorCode, "AUTH"):
			return nil, NewError(AlibabaName, KindAuth, env.ErrorMsg, nil)
		case env.ErrorCode == "RATE_LIMIT":
			return nil, NewError(AlibabaName, KindRateLimited, env.ErrorMsg, nil)
		default:
			return nil, NewError(AlibabaName, KindData, fmt.Sprintf("%s: %s", env.ErrorCode, env.ErrorMsg), nil)
		}
	}
	return env.Data, nil
}
