package marketdata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hkpulse/internal/config"
	apperrors "hkpulse/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default().Provider
	cfg.KlineURL = server.URL + "/kline"
	cfg.DatacenterURL = server.URL + "/datacenter"
	cfg.RequestsPerSecond = 1000
	cfg.Burst = 10
	cfg.PageSize = 2
	return NewClient(cfg, testLogger())
}

func TestClient_IndexDaily(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kline", r.URL.Path)
		assert.Equal(t, "100.HSI", r.URL.Query().Get("secid"))
		assert.Equal(t, "101", r.URL.Query().Get("klt"))
		assert.Equal(t, "f51,f52,f53,f54,f55", r.URL.Query().Get("fields2"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `{"rc":0,"data":{"code":"HSI","name":"恒生指数","klines":[
			"2024-01-03,16700.5,16645.98,16750,16600",
			"2024-01-02,17000.1,16788.55,17100,16700.2"]}}`)
	})

	bars, err := client.IndexDaily(context.Background(), SeriesHSI, "100.HSI")
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Date, "sorted oldest first")
	assert.Equal(t, 17000.1, bars[0].Open)
	assert.Equal(t, 16788.55, bars[0].Latest)
	assert.Equal(t, 17100.0, bars[0].High)
	assert.Equal(t, 16700.2, bars[0].Low)
}

func TestClient_IndexDailyErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType apperrors.ErrorType
	}{
		{name: "unknown secid", status: http.StatusOK, body: `{"rc":0,"data":null}`, wantType: apperrors.ErrTypeNotFound},
		{name: "server error", status: http.StatusBadGateway, body: "bad gateway", wantType: apperrors.ErrTypeNetwork},
		{name: "malformed json", status: http.StatusOK, body: `{"rc":`, wantType: apperrors.ErrTypeParsing},
		{name: "malformed kline", status: http.StatusOK, body: `{"data":{"klines":["2024-01-02,1,2"]}}`, wantType: apperrors.ErrTypeParsing},
		{name: "bad date", status: http.StatusOK, body: `{"data":{"klines":["02/01/2024,1,2,3,4"]}}`, wantType: apperrors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := client.IndexDaily(context.Background(), SeriesVHSI, "124.VHSI")
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			assert.Equal(t, apperrors.StageAcquisition, apperrors.StageOf(err))
			assert.Equal(t, SeriesVHSI, apperrors.SeriesOf(err))
		})
	}
}

func TestClient_SouthboundHistoryPaging(t *testing.T) {
	pages := map[int]string{
		1: `{"success":true,"result":{"pages":2,"count":3,"data":[
			{"TRADE_DATE":"2024-01-02 00:00:00","NET_DEAL_AMT":12.5,"BUY_AMT":100,"SELL_AMT":87.5,"ACCUM_DEAL_AMT":3000,"HOLD_MARKET_CAP":null},
			{"TRADE_DATE":"2024-01-03 00:00:00","NET_DEAL_AMT":-4,"BUY_AMT":90,"SELL_AMT":94,"ACCUM_DEAL_AMT":2996,"HOLD_MARKET_CAP":2.1e12}]}}`,
		2: `{"success":true,"result":{"pages":2,"count":3,"data":[
			{"TRADE_DATE":"2024-01-04 00:00:00","NET_DEAL_AMT":7,"BUY_AMT":80,"SELL_AMT":73,"ACCUM_DEAL_AMT":3003,"HOLD_MARKET_CAP":2.2e12}]}}`,
	}
	var requested []int

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "RPT_MUTUAL_DEAL_HISTORY", q.Get("reportName"))
		assert.Equal(t, "2", q.Get("pageSize"))
		assert.Contains(t, q.Get("filter"), "MUTUAL_TYPE")

		page, _ := strconv.Atoi(q.Get("pageNumber"))
		requested = append(requested, page)
		fmt.Fprint(w, pages[page])
	})

	days, err := client.SouthboundHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, requested)
	require.Len(t, days, 3)

	assert.Equal(t, 12.5, days[0].NetBuyAmount)
	assert.True(t, math.IsNaN(days[0].HoldingMarketValue), "null becomes NaN")
	assert.Equal(t, -4.0, days[1].NetBuyAmount)
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), days[2].Date)
}

func TestClient_ValuationMissingReport(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":false,"message":"返回数据为空","result":null}`)
	})

	_, err := client.Valuation(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	assert.Equal(t, SeriesValuation, apperrors.SeriesOf(err))
}

func TestClient_Valuation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"result":{"pages":1,"data":[
			{"TRADE_DATE":"2024-01-02","PE_TTM":9.1,"PB_MRQ":0.95,"DIVIDEND_YIELD":4.2}]}}`)
	})

	days, err := client.Valuation(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, ValuationDay{
		Date:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		PE:            9.1,
		PB:            0.95,
		DividendYield: 4.2,
	}, days[0])
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"klines":[]}}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.IndexDaily(ctx, SeriesHSI, "100.HSI")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
