package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/MLEngineer1/smc-cash-cow/internal/report"
	"github.com/MLEngineer1/smc-cash-cow/internal/testhelper"
	"github.com/MLEngineer1/smc-cash-cow/internal/types"
	"github.com/MLEngineer1/smc-cash-cow/pkg/marketdata"
)

var start = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func bars() []types.Bar {
	prices := [][2]float64{{10, 12}, {12, 9}, {9, 10}, {10, 13}, {13, 11.5}, {11.5, 11.8}}

	out := make([]types.Bar, len(prices))
	for i, p := range prices {
		out[i] = types.Bar{
			Time:   start.Add(time.Duration(i) * time.Hour),
			Open:   p[0],
			High:   max(p[0], p[1]) + 0.5,
			Low:    min(p[0], p[1]) - 0.5,
			Close:  p[1],
			Volume: 100,
		}
	}

	return out
}

type CLITestSuite struct {
	suite.Suite
	upstream   *testhelper.MockMarketServer
	configPath string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (suite *CLITestSuite) SetupTest() {
	suite.upstream = testhelper.NewMockMarketServer()
	suite.upstream.SetKlines("BTCUSDT", bars())
	suite.upstream.SetChart("SPY", testhelper.ChartJSON(bars()))

	config := fmt.Sprintf(`log_level: error
binance:
  base_url: %[1]s
yahoo:
  base_url: %[1]s
cache:
  backend: memory
watch:
  schedule: "0 * * * *"
  selections:
    - market: BTCUSD
      timeframe: 1h
    - market: SPY
      timeframe: 1h
`, suite.upstream.URL())

	suite.configPath = filepath.Join(suite.T().TempDir(), "smc.yaml")
	suite.Require().NoError(os.WriteFile(suite.configPath, []byte(config), 0o600))
}

func (suite *CLITestSuite) TearDownTest() {
	suite.upstream.Close()
}

func (suite *CLITestSuite) run(args ...string) (string, error) {
	out := new(bytes.Buffer)

	cmd := newCommand()
	cmd.Writer = out

	err := cmd.Run(context.Background(), append([]string{"smc", "--config", suite.configPath}, args...))

	return out.String(), err
}

func (suite *CLITestSuite) TestScanJSON() {
	out, err := suite.run("scan", "--market", "BTCUSD", "--timeframe", "1h", "--json")
	suite.Require().NoError(err)

	var decoded report.Report
	suite.Require().NoError(json.Unmarshal([]byte(out), &decoded))

	suite.Equal(types.MarketBitcoin, decoded.Market)
	suite.Len(decoded.Rows, 6)
	suite.Len(decoded.Signals(), 2)
	suite.Equal(8.5, decoded.Rows[2].StopLoss.Unwrap())
}

func (suite *CLITestSuite) TestScanText() {
	out, err := suite.run("scan", "-m", "SPY", "-t", "1h")
	suite.Require().NoError(err)

	suite.Contains(out, "SPY (Stocks) · 1h")
	suite.Contains(out, "Last signal")
}

func (suite *CLITestSuite) TestScanUnsupportedTimeframeReportsNoData() {
	out, err := suite.run("scan", "-m", "SPY", "-t", "15m")
	suite.Require().NoError(err)

	suite.Contains(out, report.NoDataMessage)
	suite.Contains(out, "configuration error")
}

func (suite *CLITestSuite) TestScanRejectsUnknownMarket() {
	_, err := suite.run("scan", "-m", "DOGE")
	suite.Error(err)
}

func (suite *CLITestSuite) TestMarkets() {
	out, err := suite.run("markets", "--json")
	suite.Require().NoError(err)

	var markets []marketdata.MarketInfo
	suite.Require().NoError(json.Unmarshal([]byte(out), &markets))
	suite.Len(markets, 4)

	out, err = suite.run("markets")
	suite.Require().NoError(err)
	suite.Contains(out, "XAU/USD (Gold)")
	suite.Contains(out, "binance")
}

func (suite *CLITestSuite) TestWatchOnce() {
	out, err := suite.run("watch", "--once")
	suite.Require().NoError(err)

	suite.Contains(out, "BTC/USD · 1h")
	suite.Contains(out, "SPY (Stocks) · 1h")
}

func (suite *CLITestSuite) TestConfigSchema() {
	out, err := suite.run("config", "schema")
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(out), &schema))
	suite.Equal("smc-config", schema["title"])
}

func (suite *CLITestSuite) TestConfigCheck() {
	out, err := suite.run("config", "check")
	suite.Require().NoError(err)
	suite.Contains(out, "config ok: vendor=yahoo cache=memory watch=2 selections")

	suite.Require().NoError(os.WriteFile(suite.configPath, []byte("vendor: bloomberg\n"), 0o600))

	_, err = suite.run("config", "check")
	suite.Error(err)
}

func (suite *CLITestSuite) TestServeStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		cmd := newCommand()
		cmd.Writer = new(bytes.Buffer)
		done <- cmd.Run(ctx, []string{"smc", "--config", suite.configPath, "serve", "--addr", "127.0.0.1:0"})
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		suite.NoError(err)
	case <-time.After(5 * time.Second):
		suite.Fail("serve did not stop")
	}
}
