package config

import "time"

// Application constants
const (
	AppName    = "hkpulse"
	AppVersion = "1.0.0"

	// DateLayout is the ISO date format used in every file and setting
	DateLayout = "2006-01-02"

	// BackupTimestampLayout suffixes backups of overwritten data files
	BackupTimestampLayout = "20060102_1504"
)

// Default locations, relative to the working directory
const (
	DefaultDataDir   = "data"
	DefaultOutputDir = "output"
	DefaultLogsDir   = "logs"
)

// Provider defaults
const (
	DefaultKlineURL      = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	DefaultDatacenterURL = "https://datacenter-web.eastmoney.com/api/data/v1/get"
	DefaultHTTPTimeout   = 30 * time.Second
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Acquisition output files, one per series
const (
	HSIFileName        = "hsi_daily.csv"
	VHSIFileName       = "vhsi_daily.csv"
	SouthboundFileName = "south_money_daily.csv"
	AHPremiumFileName  = "ah_premium_daily.csv"
	ValuationFileName  = "hsi_valuation_daily.csv"
)

// Scoring and visualization output files
const (
	IndexFileName      = "hk_fear_greed_index.csv"
	ComponentsFileName = "hk_fear_greed_components.csv"
	WorkbookFileName   = "hk_fear_greed_index.xlsx"
	ChartFileName      = "hk_fear_greed_index.pdf"
)
