// Package report renders trial plots and device agreement charts.
package report
