package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ironbank/core"
	"ironbank/pkg/number"
	"ironbank/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/uuid"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Remote prices served by a price feed at endpoint,
// GET {endpoint}/{asset} answers {"price": "1500.25"} in usd per smallest unit
type Remote struct {
	endpoint string
}

var _ core.IPriceOracle = (*Remote)(nil)

// NewRemote new remote oracle
func NewRemote(endpoint string) *Remote {
	return &Remote{endpoint: strings.TrimSuffix(endpoint, "/")}
}

type priceResponse struct {
	Price decimal.Decimal `json:"price"`
}

// GetPrice unknown assets are unpriced
func (r *Remote) GetPrice(ctx context.Context, asset string) (*uint256.Int, error) {
	var resp priceResponse
	req := resthttp.WithRequestID(ctx, uuid.New())
	err := resthttp.Execute(req, http.MethodGet, r.endpoint+"/"+url.PathEscape(asset), nil, &resp)

	var statusErr *resthttp.StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotFound {
		logger.FromContext(ctx).Debugln("asset not priced by feed", asset)
		return uint256.NewInt(0), nil
	}

	if err != nil {
		return nil, fmt.Errorf("fetch price of %s: %w", asset, err)
	}

	if resp.Price.IsNegative() {
		return nil, fmt.Errorf("negative price of %s", asset)
	}

	return number.Wad(resp.Price)
}
