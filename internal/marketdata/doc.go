// Package marketdata acquires the raw daily series behind the index.
//
// Client talks to Eastmoney: the kline endpoint for the HSI, VHSI and
// HSAHP index levels and the paged datacenter endpoint for southbound
// flow and HSI valuation. Fetcher runs one Job per series concurrently,
// writes each result to CSV after backing up the previous file, and
// keeps going when a single series fails.
package marketdata
