package service

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"connect-client/internal/core/domain"
	"connect-client/pkg/apperror"
)

var serviceSlugPattern = regexp.MustCompile(`^[a-zA-Z_]+$`)

// GetServiceSchemas requests the services available to this store.
func (c *Client) GetServiceSchemas(ctx context.Context) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "/services", nil)
}

// ValidateServiceSettings asks the server to validate one service's settings.
func (c *Client) ValidateServiceSettings(ctx context.Context, slug string, settings any) (*domain.Outcome, error) {
	if !serviceSlugPattern.MatchString(slug) {
		return nil, apperror.ErrInvalidServiceSlug()
	}
	body := map[string]any{"service_settings": settings}
	return c.Request(ctx, http.MethodPost, "/services/"+slug+"/settings", body)
}

// GetShippingRates requests checkout rates and stores the attempt time as the
// last rate request, which later envelopes report. Items with no quantity are
// dropped; a remaining item without a weight fails the whole request.
func (c *Client) GetShippingRates(ctx context.Context, req domain.ShippingRatesRequest) (*domain.Outcome, error) {
	if item, ok := req.Unweighted(); ok {
		return nil, apperror.ErrMissingWeight(item.ProductID)
	}
	req.Contents = req.Shippable()
	if len(req.Contents) == 0 {
		return nil, apperror.ErrNothingToShip()
	}

	outcome, err := c.Request(ctx, http.MethodPost, "/shipping/rates", req)
	stamp := strconv.FormatInt(c.now().Unix(), 10)
	if setErr := c.options.Set(ctx, domain.OptionLastRateRequest, stamp); setErr != nil {
		c.log.Warn().Err(setErr).Msg("failed to record last rate request")
	}
	return outcome, err
}

// SendShippingLabelRequest purchases labels.
func (c *Client) SendShippingLabelRequest(ctx context.Context, body any) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "/shipping/label", body)
}

// SendAddressNormalizationRequest asks the server to validate and normalize an address.
func (c *Client) SendAddressNormalizationRequest(ctx context.Context, body any) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "/shipping/address/normalize", body)
}

// GetPaymentMethods lists the payment methods on file for label purchases.
func (c *Client) GetPaymentMethods(ctx context.Context) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "/payment/methods", nil)
}

// GetLabelRates requests label purchase rates for a set of packages.
func (c *Client) GetLabelRates(ctx context.Context, body any) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "/shipping/label/rates", body)
}

// GetLabelsPreviewPDF returns a PDF of sample labels as a raw outcome.
func (c *Client) GetLabelsPreviewPDF(ctx context.Context, body any) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "shipping/labels/preview", body)
}

// GetLabelsPrintPDF returns a PDF of purchased labels as a raw outcome.
func (c *Client) GetLabelsPrintPDF(ctx context.Context, body any) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "shipping/labels/print", body)
}

// GetLabelStatus fetches the current state of a purchased label.
func (c *Client) GetLabelStatus(ctx context.Context, labelID int64) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodGet, "/shipping/label/"+strconv.FormatInt(labelID, 10), nil)
}

// SendShippingLabelRefundRequest requests a refund for a purchased label.
func (c *Client) SendShippingLabelRefundRequest(ctx context.Context, labelID int64) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodPost, "/shipping/label/"+strconv.FormatInt(labelID, 10)+"/refund", nil)
}

// AuthTest checks that the server accepts this store's credentials.
func (c *Client) AuthTest(ctx context.Context) (*domain.Outcome, error) {
	return c.Request(ctx, http.MethodGet, "/connection/test", nil)
}
