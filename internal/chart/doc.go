// Package chart renders the fear & greed index against the Hang Seng
// Index as a single-page PDF.
package chart
