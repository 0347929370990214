package handler

import (
	"strings"

	"github.com/hms/backend/internal/domain/billing"
	"github.com/hms/backend/internal/domain/shared"
	"github.com/hms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// FlexibleAmount is a money amount that accepts either a JSON number or a
// numeric string. Upstream ledger exports send both forms; an unparsable
// string coerces to zero and is then rejected by the positive-amount check
// in the application layer.
type FlexibleAmount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler
func (a *FlexibleAmount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	raw = strings.Trim(raw, `"`)
	a.Decimal = billing.CoerceAmount(raw)
	return nil
}

// toDecimalPtr converts a float64 to a *decimal.Decimal
func toDecimalPtr(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

// toDecimal converts a float64 to a decimal.Decimal
func toDecimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// bindListRequest parses common pagination query parameters into a shared
// filter with defaults applied.
func (h *BaseHandler) bindListRequest(c *gin.Context) (shared.Filter, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return shared.Filter{}, false
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}, true
}
