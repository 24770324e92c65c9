package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
)

const (
	southboundColumns = "TRADE_DATE,NET_DEAL_AMT,BUY_AMT,SELL_AMT,ACCUM_DEAL_AMT,HOLD_MARKET_CAP"
	valuationColumns  = "TRADE_DATE,PE_TTM,PB_MRQ,DIVIDEND_YIELD"

	// Upper bound on pages read from one report
	maxPages = 200
)

// Client reads daily history from Eastmoney's kline and datacenter
// endpoints. Every request waits on a shared rate limiter.
type Client struct {
	cfg        config.ProviderConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.ProviderConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultHTTPTimeout
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With(slog.String("component", "eastmoney")),
	}
}

type klineResponse struct {
	RC   int `json:"rc"`
	Data *struct {
		Code   string   `json:"code"`
		Name   string   `json:"name"`
		Klines []string `json:"klines"`
	} `json:"data"`
}

// IndexDaily returns the full daily history of the index identified by
// secID, e.g. "100.HSI".
func (c *Client) IndexDaily(ctx context.Context, series, secID string) ([]Bar, error) {
	params := url.Values{}
	params.Set("secid", secID)
	params.Set("fields1", "f1,f2,f3,f4,f5,f6,f7")
	params.Set("fields2", "f51,f52,f53,f54,f55")
	params.Set("klt", "101")
	params.Set("fqt", "1")
	params.Set("beg", "0")
	params.Set("end", "20500101")

	var resp klineResponse
	if err := c.getJSON(ctx, series, c.cfg.KlineURL, params, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, apperrors.NewNotFoundError(apperrors.StageAcquisition, "kline data for "+secID).WithSeries(series)
	}

	bars := make([]Bar, 0, len(resp.Data.Klines))
	for i, line := range resp.Data.Klines {
		bar, err := parseKline(line)
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageAcquisition, series,
				fmt.Sprintf("kline %d", i), err)
		}
		bars = append(bars, bar)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	c.logger.Debug("Fetched klines",
		slog.String("series", series),
		slog.String("name", resp.Data.Name),
		slog.Int("rows", len(bars)))
	return bars, nil
}

// parseKline reads "date,open,close,high,low"
func parseKline(line string) (Bar, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 5 {
		return Bar{}, fmt.Errorf("expected 5 fields, got %d in %q", len(parts), line)
	}
	date, err := time.Parse(config.DateLayout, parts[0])
	if err != nil {
		return Bar{}, err
	}
	values := make([]float64, 4)
	for i, s := range parts[1:5] {
		v, err := parseNumber(s)
		if err != nil {
			return Bar{}, err
		}
		values[i] = v
	}
	return Bar{Date: date, Open: values[0], Latest: values[1], High: values[2], Low: values[3]}, nil
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

type southboundRecord struct {
	TradeDate     string   `json:"TRADE_DATE"`
	NetDealAmt    *float64 `json:"NET_DEAL_AMT"`
	BuyAmt        *float64 `json:"BUY_AMT"`
	SellAmt       *float64 `json:"SELL_AMT"`
	AccumDealAmt  *float64 `json:"ACCUM_DEAL_AMT"`
	HoldMarketCap *float64 `json:"HOLD_MARKET_CAP"`
}

// SouthboundHistory returns the daily southbound flow history
func (c *Client) SouthboundHistory(ctx context.Context) ([]SouthboundDay, error) {
	records, err := fetchReport[southboundRecord](ctx, c, SeriesSouthbound,
		c.cfg.SouthboundReport, southboundColumns, c.cfg.SouthboundFilter)
	if err != nil {
		return nil, err
	}

	days := make([]SouthboundDay, 0, len(records))
	for _, r := range records {
		date, err := parseTradeDate(r.TradeDate)
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageAcquisition, SeriesSouthbound, "trade date", err)
		}
		days = append(days, SouthboundDay{
			Date:               date,
			NetBuyAmount:       valueOrNaN(r.NetDealAmt),
			BuyAmount:          valueOrNaN(r.BuyAmt),
			SellAmount:         valueOrNaN(r.SellAmt),
			CumulativeNetBuy:   valueOrNaN(r.AccumDealAmt),
			HoldingMarketValue: valueOrNaN(r.HoldMarketCap),
		})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

type valuationRecord struct {
	TradeDate     string   `json:"TRADE_DATE"`
	PE            *float64 `json:"PE_TTM"`
	PB            *float64 `json:"PB_MRQ"`
	DividendYield *float64 `json:"DIVIDEND_YIELD"`
}

// Valuation returns the daily valuation history of the index
func (c *Client) Valuation(ctx context.Context) ([]ValuationDay, error) {
	records, err := fetchReport[valuationRecord](ctx, c, SeriesValuation,
		c.cfg.ValuationReport, valuationColumns, c.cfg.ValuationFilter)
	if err != nil {
		return nil, err
	}

	days := make([]ValuationDay, 0, len(records))
	for _, r := range records {
		date, err := parseTradeDate(r.TradeDate)
		if err != nil {
			return nil, apperrors.NewParsingError(apperrors.StageAcquisition, SeriesValuation, "trade date", err)
		}
		days = append(days, ValuationDay{
			Date:          date,
			PE:            valueOrNaN(r.PE),
			PB:            valueOrNaN(r.PB),
			DividendYield: valueOrNaN(r.DividendYield),
		})
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

type reportResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  *struct {
		Pages int `json:"pages"`
		Count int `json:"count"`
		Data  []T `json:"data"`
	} `json:"result"`
}

// fetchReport reads every page of a datacenter report
func fetchReport[T any](ctx context.Context, c *Client, series, report, columns, filter string) ([]T, error) {
	pageSize := c.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}

	var all []T
	for page := 1; page <= maxPages; page++ {
		params := url.Values{}
		params.Set("reportName", report)
		params.Set("columns", columns)
		if filter != "" {
			params.Set("filter", filter)
		}
		params.Set("pageNumber", strconv.Itoa(page))
		params.Set("pageSize", strconv.Itoa(pageSize))
		params.Set("sortColumns", "TRADE_DATE")
		params.Set("sortTypes", "1")
		params.Set("source", "WEB")
		params.Set("client", "WEB")

		var resp reportResponse[T]
		if err := c.getJSON(ctx, series, c.cfg.DatacenterURL, params, &resp); err != nil {
			return nil, err
		}
		if resp.Result == nil {
			if page == 1 {
				return nil, apperrors.NewNotFoundError(apperrors.StageAcquisition,
					fmt.Sprintf("report %s (%s)", report, resp.Message)).WithSeries(series)
			}
			break
		}

		all = append(all, resp.Result.Data...)
		if page >= resp.Result.Pages || len(resp.Result.Data) == 0 {
			break
		}
	}

	c.logger.Debug("Fetched report",
		slog.String("series", series),
		slog.String("report", report),
		slog.Int("rows", len(all)))
	return all, nil
}

func (c *Client) getJSON(ctx context.Context, series, endpoint string, params url.Values, target interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.NewNetworkError(apperrors.StageAcquisition, series, "rate limiter", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return apperrors.NewNetworkError(apperrors.StageAcquisition, series, "failed to create request", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewNetworkError(apperrors.StageAcquisition, series, "failed to execute request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return apperrors.NewNetworkError(apperrors.StageAcquisition, series,
			fmt.Sprintf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.NewParsingError(apperrors.StageAcquisition, series, "failed to decode response", err)
	}
	return nil
}

// parseTradeDate accepts "2006-01-02" and "2006-01-02 15:04:05"
func parseTradeDate(s string) (time.Time, error) {
	if len(s) >= len(config.DateLayout) {
		s = s[:len(config.DateLayout)]
	}
	return time.Parse(config.DateLayout, s)
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
